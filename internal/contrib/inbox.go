package contrib

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/store"
	"github.com/nooksapp/nooks/internal/syncer"
)

// SubmitParams carries the fields of a task proposal.
type SubmitParams struct {
	Title       string
	Details     string
	IsUrgent    bool
	IsImportant bool
	DueDate     *time.Time
}

// SubmitToInbox files a proposal into the linked owner's inbox. The
// contributor device must have redeemed an invite first; without a
// linked owner this fails with ErrNotLinked.
func (s *Service) SubmitToInbox(ctx context.Context, contributor syncer.Session, params SubmitParams) (*domain.InboxItem, error) {
	if !contributor.Active() {
		return nil, fmt.Errorf("submitting to an inbox requires a signed-in account")
	}
	if err := domain.ValidateTaskTitle(params.Title); err != nil {
		return nil, err
	}

	ownerUID, _, err := s.LinkedOwner()
	if err != nil {
		return nil, err
	}

	item := domain.InboxItem{
		ID:               uuid.NewString(),
		Title:            params.Title,
		Details:          params.Details,
		IsUrgent:         params.IsUrgent,
		IsImportant:      params.IsImportant,
		DueDate:          params.DueDate,
		ContributorUID:   contributor.AccountID,
		ContributorEmail: contributor.Email,
		Status:           domain.InboxStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.client.PutInboxItem(ctx, ownerUID, item); err != nil {
		return nil, fmt.Errorf("failed to submit inbox item: %w", err)
	}
	return &item, nil
}

// PendingInbox lists the owner's inbox items still awaiting review,
// oldest first.
func (s *Service) PendingInbox(ctx context.Context, owner syncer.Session) ([]domain.InboxItem, error) {
	items, err := s.client.ListInbox(ctx, owner.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	var pending []domain.InboxItem
	for _, item := range items {
		if item.Status == domain.InboxStatusPending {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

// AcceptInboxItem materializes a pending proposal as a local task,
// tagged with the contributor's identity, then marks the remote item
// accepted with a back-reference to the new task. The local write comes
// first; if the remote update then fails the task stays and the item
// shows pending until retried.
func (s *Service) AcceptInboxItem(ctx context.Context, owner syncer.Session, item domain.InboxItem) (int64, error) {
	if item.Status != domain.InboxStatusPending {
		return 0, fmt.Errorf("inbox item %s is not pending", item.ID)
	}

	taskID, err := s.store.Tasks.Add(store.AddParams{
		Title:          item.Title,
		Details:        item.Details,
		IsUrgent:       item.IsUrgent,
		IsImportant:    item.IsImportant,
		DueDate:        item.DueDate,
		ContributorUID: &item.ContributorUID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create task from inbox item: %w", err)
	}

	item.Status = domain.InboxStatusAccepted
	item.TaskID = &taskID
	if err := s.client.PutInboxItem(ctx, owner.AccountID, item); err != nil {
		return taskID, fmt.Errorf("failed to mark inbox item accepted: %w", err)
	}
	return taskID, nil
}

// DeclineInboxItem marks a pending proposal declined. No local task is
// created and the item stays visible to the contributor as declined.
func (s *Service) DeclineInboxItem(ctx context.Context, owner syncer.Session, item domain.InboxItem) error {
	if item.Status != domain.InboxStatusPending {
		return fmt.Errorf("inbox item %s is not pending", item.ID)
	}
	item.Status = domain.InboxStatusDeclined
	if err := s.client.PutInboxItem(ctx, owner.AccountID, item); err != nil {
		return fmt.Errorf("failed to mark inbox item declined: %w", err)
	}
	return nil
}

// ContributorInbox returns the contributor's own submissions to the
// linked owner, minus any locally dismissed ones.
func (s *Service) ContributorInbox(ctx context.Context, contributor syncer.Session) ([]domain.InboxItem, error) {
	ownerUID, _, err := s.LinkedOwner()
	if err != nil {
		return nil, err
	}
	items, err := s.client.ListInbox(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	dismissed, err := s.store.Prefs.DismissedInboxIDs()
	if err != nil {
		return nil, err
	}

	var mine []domain.InboxItem
	for _, item := range items {
		if item.ContributorUID != contributor.AccountID {
			continue
		}
		if dismissed[item.ID] {
			continue
		}
		mine = append(mine, item)
	}
	return mine, nil
}

// Dismiss hides a reviewed item from the contributor's view on this
// device only. Pending items cannot be dismissed; they are still
// awaiting the owner's decision.
func (s *Service) Dismiss(item domain.InboxItem) error {
	if item.Status == domain.InboxStatusPending {
		return fmt.Errorf("inbox item %s is still pending and cannot be dismissed", item.ID)
	}
	return s.store.Prefs.DismissInboxItem(item.ID)
}

// Undismiss restores a dismissed item to the contributor's view.
func (s *Service) Undismiss(id string) error {
	return s.store.Prefs.UndismissInboxItem(id)
}
