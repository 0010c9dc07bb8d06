package remote

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

func TestTaskDocRoundTrip(t *testing.T) {
	bucketID := int64(3)
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	uid := "contrib-1"
	task := domain.Task{
		ID:             10,
		Title:          "report",
		Details:        "quarterly numbers",
		BucketID:       &bucketID,
		Status:         domain.TaskStatusInProgress,
		IsUrgent:       true,
		DueDate:        &due,
		CreatedAt:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		ContributorUID: &uid,
	}

	got, err := taskFromDoc(taskToDoc(task))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != task.Title || got.Status != task.Status || !got.IsUrgent {
		t.Errorf("got %+v", got)
	}
	if got.BucketID == nil || *got.BucketID != bucketID {
		t.Errorf("bucket = %v", got.BucketID)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due = %v", got.DueDate)
	}
	if got.ContributorUID == nil || *got.ContributorUID != uid {
		t.Errorf("contributor = %v", got.ContributorUID)
	}
}

func TestTaskDocAbsentDatesSerializeAsNull(t *testing.T) {
	doc := taskToDoc(domain.Task{ID: 1, Title: "bare", Status: domain.TaskStatusTodo, CreatedAt: time.Now()})
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	// Cleared optional fields are explicit nulls, never omitted.
	for _, field := range []string{`"dueDate":null`, `"completedAt":null`, `"bucketId":null`} {
		if !strings.Contains(s, field) {
			t.Errorf("serialized doc missing %s: %s", field, s)
		}
	}
}

func TestTaskFromDocMissingRequiredField(t *testing.T) {
	title := "no status"
	id := int64(1)
	created := "2026-05-01T12:00:00Z"
	_, err := taskFromDoc(taskDoc{ID: &id, Title: &title, CreatedAt: &created})
	if err == nil || !strings.Contains(err.Error(), "status") {
		t.Errorf("err = %v", err)
	}
}

func TestTaskFromDocRejectsBadStatus(t *testing.T) {
	var doc taskDoc
	raw := `{"id":1,"title":"x","status":"cancelled","isUrgent":false,"isImportant":false,
		"dueDate":null,"createdAt":"2026-05-01T12:00:00Z","completedAt":null,"bucketId":null,"details":"","contributorUid":null}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatal(err)
	}
	if _, err := taskFromDoc(doc); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestTaskFromDocRejectsMistypedField(t *testing.T) {
	// A numeric title must fail at decode, not be coerced.
	var doc taskDoc
	raw := `{"id":1,"title":42,"status":"todo"}`
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		t.Fatal("expected decode error for numeric title")
	}
}

func TestInviteDocRoundTrip(t *testing.T) {
	redeemedBy := "contrib-1"
	redeemedAt := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)
	inv := domain.Invite{
		Code:       "ABCD2345",
		OwnerUID:   "owner-1",
		OwnerEmail: "owner@example.com",
		CreatedAt:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:  time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC),
		RedeemedBy: &redeemedBy,
		RedeemedAt: &redeemedAt,
	}

	got, err := inviteFromDoc(inviteToDoc(inv))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Redeemed() || *got.RedeemedBy != redeemedBy {
		t.Errorf("got %+v", got)
	}
	if !got.ExpiresAt.Equal(inv.ExpiresAt) {
		t.Errorf("expiresAt = %v", got.ExpiresAt)
	}
}

func TestInboxItemDocRoundTrip(t *testing.T) {
	taskID := int64(7)
	item := domain.InboxItem{
		ID:               "uuid-1",
		Title:            "groceries",
		ContributorUID:   "contrib-1",
		ContributorEmail: "helper@example.com",
		Status:           domain.InboxStatusAccepted,
		TaskID:           &taskID,
		CreatedAt:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	got, err := inboxItemFromDoc(inboxItemToDoc(item))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.InboxStatusAccepted || got.TaskID == nil || *got.TaskID != taskID {
		t.Errorf("got %+v", got)
	}
}
