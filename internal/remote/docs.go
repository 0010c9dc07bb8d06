package remote

import (
	"fmt"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

// Wire document shapes. Date fields carry RFC3339 strings; absent
// optional dates serialize to an explicit null (no omitempty), so a
// reader never has to guess whether a field was dropped or cleared.
// Decoding goes through a schema check per entity: required fields must
// be present with the right type before a document is trusted.

type bucketDoc struct {
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Emoji     *string `json:"emoji"`
	CreatedAt *string `json:"createdAt"`
}

type taskDoc struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Details     *string `json:"details"`
	BucketID    *int64  `json:"bucketId"`
	Status      *string `json:"status"`
	IsUrgent    *bool   `json:"isUrgent"`
	IsImportant *bool   `json:"isImportant"`
	DueDate     *string `json:"dueDate"`
	CreatedAt   *string `json:"createdAt"`
	CompletedAt *string `json:"completedAt"`

	ContributorUID *string `json:"contributorUid"`
}

type inviteDoc struct {
	Code       *string `json:"code"`
	OwnerUID   *string `json:"ownerUid"`
	OwnerEmail *string `json:"ownerEmail"`
	CreatedAt  *string `json:"createdAt"`
	ExpiresAt  *string `json:"expiresAt"`
	RedeemedBy *string `json:"redeemedBy"`
	RedeemedAt *string `json:"redeemedAt"`
}

type permissionDoc struct {
	OwnerUID   *string `json:"ownerUid"`
	OwnerEmail *string `json:"ownerEmail"`
	LinkedAt   *string `json:"linkedAt"`
}

type inboxItemDoc struct {
	ID               *string `json:"id"`
	Title            *string `json:"title"`
	Details          *string `json:"details"`
	IsUrgent         *bool   `json:"isUrgent"`
	IsImportant      *bool   `json:"isImportant"`
	DueDate          *string `json:"dueDate"`
	ContributorUID   *string `json:"contributorUid"`
	ContributorEmail *string `json:"contributorEmail"`
	Status           *string `json:"status"`
	TaskID           *int64  `json:"taskId"`
	CreatedAt        *string `json:"createdAt"`
}

func wireTime(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func wireTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return wireTime(*t)
}

func parseWireTime(s *string, field string) (time.Time, error) {
	if s == nil {
		return time.Time{}, fmt.Errorf("document missing required field %q", field)
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, fmt.Errorf("document field %q: %w", field, err)
	}
	return t, nil
}

func parseWireTimePtr(s *string, field string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("document field %q: %w", field, err)
	}
	return &t, nil
}

func requireString(s *string, field string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("document missing required field %q", field)
	}
	return *s, nil
}

func requireBool(b *bool, field string) (bool, error) {
	if b == nil {
		return false, fmt.Errorf("document missing required field %q", field)
	}
	return *b, nil
}

func requireInt64(i *int64, field string) (int64, error) {
	if i == nil {
		return 0, fmt.Errorf("document missing required field %q", field)
	}
	return *i, nil
}

func bucketToDoc(b domain.Bucket) bucketDoc {
	return bucketDoc{
		ID:        &b.ID,
		Name:      &b.Name,
		Emoji:     &b.Emoji,
		CreatedAt: wireTime(b.CreatedAt),
	}
}

func bucketFromDoc(doc bucketDoc) (domain.Bucket, error) {
	var b domain.Bucket
	var err error
	if b.ID, err = requireInt64(doc.ID, "id"); err != nil {
		return b, err
	}
	if b.Name, err = requireString(doc.Name, "name"); err != nil {
		return b, err
	}
	if doc.Emoji != nil {
		b.Emoji = *doc.Emoji
	}
	if b.CreatedAt, err = parseWireTime(doc.CreatedAt, "createdAt"); err != nil {
		return b, err
	}
	return b, nil
}

func taskToDoc(t domain.Task) taskDoc {
	status := string(t.Status)
	return taskDoc{
		ID:          &t.ID,
		Title:       &t.Title,
		Details:     &t.Details,
		BucketID:    t.BucketID,
		Status:      &status,
		IsUrgent:    &t.IsUrgent,
		IsImportant: &t.IsImportant,
		DueDate:     wireTimePtr(t.DueDate),
		CreatedAt:   wireTime(t.CreatedAt),
		CompletedAt: wireTimePtr(t.CompletedAt),

		ContributorUID: t.ContributorUID,
	}
}

func taskFromDoc(doc taskDoc) (domain.Task, error) {
	var t domain.Task
	var err error
	if t.ID, err = requireInt64(doc.ID, "id"); err != nil {
		return t, err
	}
	if t.Title, err = requireString(doc.Title, "title"); err != nil {
		return t, err
	}
	if doc.Details != nil {
		t.Details = *doc.Details
	}
	t.BucketID = doc.BucketID
	status, err := requireString(doc.Status, "status")
	if err != nil {
		return t, err
	}
	if err := domain.ValidateTaskStatus(status); err != nil {
		return t, fmt.Errorf("document field %q: %w", "status", err)
	}
	t.Status = domain.TaskStatus(status)
	if t.IsUrgent, err = requireBool(doc.IsUrgent, "isUrgent"); err != nil {
		return t, err
	}
	if t.IsImportant, err = requireBool(doc.IsImportant, "isImportant"); err != nil {
		return t, err
	}
	if t.DueDate, err = parseWireTimePtr(doc.DueDate, "dueDate"); err != nil {
		return t, err
	}
	if t.CreatedAt, err = parseWireTime(doc.CreatedAt, "createdAt"); err != nil {
		return t, err
	}
	if t.CompletedAt, err = parseWireTimePtr(doc.CompletedAt, "completedAt"); err != nil {
		return t, err
	}
	t.ContributorUID = doc.ContributorUID
	return t, nil
}

func inviteToDoc(inv domain.Invite) inviteDoc {
	return inviteDoc{
		Code:       &inv.Code,
		OwnerUID:   &inv.OwnerUID,
		OwnerEmail: &inv.OwnerEmail,
		CreatedAt:  wireTime(inv.CreatedAt),
		ExpiresAt:  wireTime(inv.ExpiresAt),
		RedeemedBy: inv.RedeemedBy,
		RedeemedAt: wireTimePtr(inv.RedeemedAt),
	}
}

func inviteFromDoc(doc inviteDoc) (domain.Invite, error) {
	var inv domain.Invite
	var err error
	if inv.Code, err = requireString(doc.Code, "code"); err != nil {
		return inv, err
	}
	if inv.OwnerUID, err = requireString(doc.OwnerUID, "ownerUid"); err != nil {
		return inv, err
	}
	if inv.OwnerEmail, err = requireString(doc.OwnerEmail, "ownerEmail"); err != nil {
		return inv, err
	}
	if inv.CreatedAt, err = parseWireTime(doc.CreatedAt, "createdAt"); err != nil {
		return inv, err
	}
	if inv.ExpiresAt, err = parseWireTime(doc.ExpiresAt, "expiresAt"); err != nil {
		return inv, err
	}
	inv.RedeemedBy = doc.RedeemedBy
	if inv.RedeemedAt, err = parseWireTimePtr(doc.RedeemedAt, "redeemedAt"); err != nil {
		return inv, err
	}
	return inv, nil
}

func permissionToDoc(p domain.Permission) permissionDoc {
	return permissionDoc{
		OwnerUID:   &p.OwnerUID,
		OwnerEmail: &p.OwnerEmail,
		LinkedAt:   wireTime(p.LinkedAt),
	}
}

func permissionFromDoc(doc permissionDoc) (domain.Permission, error) {
	var p domain.Permission
	var err error
	if p.OwnerUID, err = requireString(doc.OwnerUID, "ownerUid"); err != nil {
		return p, err
	}
	if p.OwnerEmail, err = requireString(doc.OwnerEmail, "ownerEmail"); err != nil {
		return p, err
	}
	if p.LinkedAt, err = parseWireTime(doc.LinkedAt, "linkedAt"); err != nil {
		return p, err
	}
	return p, nil
}

func inboxItemToDoc(item domain.InboxItem) inboxItemDoc {
	status := string(item.Status)
	return inboxItemDoc{
		ID:               &item.ID,
		Title:            &item.Title,
		Details:          &item.Details,
		IsUrgent:         &item.IsUrgent,
		IsImportant:      &item.IsImportant,
		DueDate:          wireTimePtr(item.DueDate),
		ContributorUID:   &item.ContributorUID,
		ContributorEmail: &item.ContributorEmail,
		Status:           &status,
		TaskID:           item.TaskID,
		CreatedAt:        wireTime(item.CreatedAt),
	}
}

func inboxItemFromDoc(doc inboxItemDoc) (domain.InboxItem, error) {
	var item domain.InboxItem
	var err error
	if item.ID, err = requireString(doc.ID, "id"); err != nil {
		return item, err
	}
	if item.Title, err = requireString(doc.Title, "title"); err != nil {
		return item, err
	}
	if doc.Details != nil {
		item.Details = *doc.Details
	}
	if item.IsUrgent, err = requireBool(doc.IsUrgent, "isUrgent"); err != nil {
		return item, err
	}
	if item.IsImportant, err = requireBool(doc.IsImportant, "isImportant"); err != nil {
		return item, err
	}
	if item.DueDate, err = parseWireTimePtr(doc.DueDate, "dueDate"); err != nil {
		return item, err
	}
	if item.ContributorUID, err = requireString(doc.ContributorUID, "contributorUid"); err != nil {
		return item, err
	}
	if doc.ContributorEmail != nil {
		item.ContributorEmail = *doc.ContributorEmail
	}
	status, err := requireString(doc.Status, "status")
	if err != nil {
		return item, err
	}
	if err := domain.ValidateInboxStatus(status); err != nil {
		return item, fmt.Errorf("document field %q: %w", "status", err)
	}
	item.Status = domain.InboxStatus(status)
	item.TaskID = doc.TaskID
	if item.CreatedAt, err = parseWireTime(doc.CreatedAt, "createdAt"); err != nil {
		return item, err
	}
	return item, nil
}
