package contrib

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/remote"
	"github.com/nooksapp/nooks/internal/syncer"
	"github.com/nooksapp/nooks/internal/testutil"
)

var (
	owner       = syncer.Session{AccountID: "owner-1", Email: "owner@example.com"}
	contributor = syncer.Session{AccountID: "contrib-1", Email: "helper@example.com"}
)

func newTestService(t *testing.T) (*Service, *remote.MemoryClient) {
	t.Helper()
	client := remote.NewMemoryClient()
	return NewService(client, testutil.TempStore(t)), client
}

func TestGenerateInviteCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestCreateInvite(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateInvite(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if inv.OwnerUID != owner.AccountID || inv.OwnerEmail != owner.Email {
		t.Errorf("invite owner = %s %s", inv.OwnerUID, inv.OwnerEmail)
	}
	if got := inv.ExpiresAt.Sub(inv.CreatedAt); got != domain.InviteTTL {
		t.Errorf("ttl = %v", got)
	}
	if inv.Redeemed() {
		t.Error("fresh invite marked redeemed")
	}

	stored, err := client.GetInvite(ctx, inv.Code)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Code != inv.Code {
		t.Error("invite not stored under its code")
	}
}

func TestCreateInviteRequiresSession(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateInvite(context.Background(), syncer.Session{}); err == nil {
		t.Fatal("expected error without session")
	}
}

func TestRedeemInviteLinksContributor(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateInvite(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}

	perm, err := svc.RedeemInvite(ctx, inv.Code, contributor)
	if err != nil {
		t.Fatal(err)
	}
	if perm.OwnerUID != owner.AccountID {
		t.Errorf("permission owner = %s", perm.OwnerUID)
	}

	// Invite is marked redeemed remotely.
	stored, _ := client.GetInvite(ctx, inv.Code)
	if !stored.Redeemed() || *stored.RedeemedBy != contributor.AccountID {
		t.Errorf("stored invite = %+v", stored)
	}

	// Permission doc lives under the contributor.
	got, err := client.GetPermission(ctx, contributor.AccountID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OwnerEmail != owner.Email {
		t.Errorf("permission email = %s", got.OwnerEmail)
	}

	// The device remembers the link.
	uid, email, err := svc.LinkedOwner()
	if err != nil {
		t.Fatal(err)
	}
	if uid != owner.AccountID || email != owner.Email {
		t.Errorf("linked owner = %s %s", uid, email)
	}
}

func TestRedeemInviteUnknownCode(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RedeemInvite(context.Background(), "NOPE1234", contributor)
	if !domain.InviteErrorIs(err, domain.InviteErrorInvalidCode) {
		t.Errorf("err = %v", err)
	}
}

func TestRedeemInviteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateInvite(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RedeemInvite(ctx, inv.Code, contributor); err != nil {
		t.Fatal(err)
	}

	other := syncer.Session{AccountID: "contrib-2", Email: "other@example.com"}
	_, err = svc.RedeemInvite(ctx, inv.Code, other)
	if !domain.InviteErrorIs(err, domain.InviteErrorAlreadyUsed) {
		t.Errorf("err = %v", err)
	}
}

func TestRedeemInviteExpired(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created := time.Now().UTC().Add(-8 * 24 * time.Hour)
	inv := domain.Invite{
		Code:       "EXPIRED2",
		OwnerUID:   owner.AccountID,
		OwnerEmail: owner.Email,
		CreatedAt:  created,
		ExpiresAt:  created.Add(domain.InviteTTL),
	}
	if err := client.PutInvite(ctx, inv); err != nil {
		t.Fatal(err)
	}

	_, err := svc.RedeemInvite(ctx, "EXPIRED2", contributor)
	if !domain.InviteErrorIs(err, domain.InviteErrorExpired) {
		t.Errorf("err = %v", err)
	}
}

func TestSubmitToInboxRequiresLink(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SubmitToInbox(context.Background(), contributor, SubmitParams{Title: "hi"})
	if err != domain.ErrNotLinked {
		t.Errorf("err = %v", err)
	}
}

func TestSubmitAndAcceptInboxItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, err := svc.CreateInvite(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RedeemInvite(ctx, inv.Code, contributor); err != nil {
		t.Fatal(err)
	}

	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	item, err := svc.SubmitToInbox(ctx, contributor, SubmitParams{
		Title:    "pick up groceries",
		Details:  "milk, eggs",
		IsUrgent: true,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != domain.InboxStatusPending {
		t.Errorf("status = %s", item.Status)
	}
	if item.ID == "" {
		t.Error("item has no id")
	}

	pending, err := svc.PendingInbox(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("%d pending items", len(pending))
	}

	taskID, err := svc.AcceptInboxItem(ctx, owner, pending[0])
	if err != nil {
		t.Fatal(err)
	}

	// The accepted task carries the contributor's identity.
	task, err := svc.store.Tasks.Get(taskID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "pick up groceries" || !task.IsUrgent {
		t.Errorf("task = %+v", task)
	}
	if task.ContributorUID == nil || *task.ContributorUID != contributor.AccountID {
		t.Errorf("contributor uid = %v", task.ContributorUID)
	}

	// The remote item references the task and leaves the pending view.
	pending, _ = svc.PendingInbox(ctx, owner)
	if len(pending) != 0 {
		t.Errorf("%d pending after accept", len(pending))
	}
	mine, err := svc.ContributorInbox(ctx, contributor)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Status != domain.InboxStatusAccepted {
		t.Fatalf("contributor view = %+v", mine)
	}
	if mine[0].TaskID == nil || *mine[0].TaskID != taskID {
		t.Errorf("task ref = %v", mine[0].TaskID)
	}
}

func TestAcceptRejectsNonPending(t *testing.T) {
	svc, _ := newTestService(t)
	item := domain.InboxItem{ID: "x", Title: "t", Status: domain.InboxStatusDeclined}
	if _, err := svc.AcceptInboxItem(context.Background(), owner, item); err == nil {
		t.Fatal("expected error for non-pending item")
	}
}

func TestDeclineAndDismiss(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inv, _ := svc.CreateInvite(ctx, owner)
	if _, err := svc.RedeemInvite(ctx, inv.Code, contributor); err != nil {
		t.Fatal(err)
	}
	item, err := svc.SubmitToInbox(ctx, contributor, SubmitParams{Title: "bad idea"})
	if err != nil {
		t.Fatal(err)
	}

	// Pending items cannot be dismissed.
	if err := svc.Dismiss(*item); err == nil {
		t.Fatal("dismissing a pending item should fail")
	}

	pending, _ := svc.PendingInbox(ctx, owner)
	if err := svc.DeclineInboxItem(ctx, owner, pending[0]); err != nil {
		t.Fatal(err)
	}

	// No task was created.
	n, err := svc.store.Tasks.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d tasks after decline", n)
	}

	// Declined item still shows, until dismissed locally.
	mine, _ := svc.ContributorInbox(ctx, contributor)
	if len(mine) != 1 || mine[0].Status != domain.InboxStatusDeclined {
		t.Fatalf("contributor view = %+v", mine)
	}
	if err := svc.Dismiss(mine[0]); err != nil {
		t.Fatal(err)
	}
	mine, _ = svc.ContributorInbox(ctx, contributor)
	if len(mine) != 0 {
		t.Errorf("%d items after dismiss", len(mine))
	}

	// Dismissal is local and reversible.
	if err := svc.Undismiss(item.ID); err != nil {
		t.Fatal(err)
	}
	mine, _ = svc.ContributorInbox(ctx, contributor)
	if len(mine) != 1 {
		t.Errorf("%d items after undismiss", len(mine))
	}
}
