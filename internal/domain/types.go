package domain

import (
	"time"
)

// TaskStatus represents the workflow state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBacklog    TaskStatus = "backlog"
)

// InboxStatus represents the review state of an inbox item
type InboxStatus string

const (
	InboxStatusPending  InboxStatus = "pending"
	InboxStatusAccepted InboxStatus = "accepted"
	InboxStatusDeclined InboxStatus = "declined"
)

// AppMode selects the role this device operates in
type AppMode string

const (
	AppModeOwner       AppMode = "owner"
	AppModeContributor AppMode = "contributor"
)

// Bucket is a user-defined category a task may optionally belong to.
// IDs are assigned by the local store and are not comparable across stores.
type Bucket struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Emoji     string    `json:"emoji" db:"emoji"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Task is a unit of work. BucketID is a weak reference: nil means unfiled,
// and deleting a bucket clears it rather than deleting the task.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Details     string     `json:"details,omitempty" db:"details"`
	BucketID    *int64     `json:"bucket_id,omitempty" db:"bucket_id"`
	Status      TaskStatus `json:"status" db:"status"`
	IsUrgent    bool       `json:"is_urgent" db:"is_urgent"`
	IsImportant bool       `json:"is_important" db:"is_important"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// ContributorUID is set on tasks materialized from an accepted
	// inbox item, so the contributor can be authorized to poll the
	// task's status read-only.
	ContributorUID *string `json:"contributor_uid,omitempty" db:"contributor_uid"`
}

// InviteTTL is how long an invite code stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// Invite is a short-lived, single-use token binding a future contributor
// to an owner. The code itself is the primary key.
type Invite struct {
	Code       string     `json:"code"`
	OwnerUID   string     `json:"owner_uid"`
	OwnerEmail string     `json:"owner_email"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RedeemedBy *string    `json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// Redeemed reports whether the invite has already been used.
func (i *Invite) Redeemed() bool {
	return i.RedeemedBy != nil
}

// Expired reports whether the invite is past its expiry at the given time.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Permission links a contributor to exactly one owner, one-directional.
// It is stored keyed by the contributor's identity.
type Permission struct {
	OwnerUID   string    `json:"owner_uid"`
	OwnerEmail string    `json:"owner_email"`
	LinkedAt   time.Time `json:"linked_at"`
}

// InboxItem is a task proposal submitted by a contributor into an
// owner's inbox, subject to accept/decline.
type InboxItem struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Details          string      `json:"details,omitempty"`
	IsUrgent         bool        `json:"is_urgent"`
	IsImportant      bool        `json:"is_important"`
	DueDate          *time.Time  `json:"due_date,omitempty"`
	ContributorUID   string      `json:"contributor_uid"`
	ContributorEmail string      `json:"contributor_email"`
	Status           InboxStatus `json:"status"`
	TaskID           *int64      `json:"task_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Event represents a row in the mutation journal
type Event struct {
	ID         int64     `json:"id" db:"id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Op         string    `json:"op" db:"op"`
	Payload    *string   `json:"payload,omitempty" db:"payload"`
}
