// Package remote provides the remote document store adapter. Documents
// are addressed by account id, entity type, and id, and are always
// overwritten wholesale: there is no partial patch and no operation log.
package remote

import (
	"context"

	"github.com/nooksapp/nooks/internal/domain"
)

// Data is the {buckets, tasks} pair fetched from an account's store.
type Data struct {
	Buckets []domain.Bucket
	Tasks   []domain.Task
}

// Client is the remote document store surface. Implementations map the
// logical paths:
//
//	accounts/{id}/buckets/{id}
//	accounts/{id}/tasks/{id}
//	accounts/{id}/permissions/contributor
//	accounts/{id}/inbox/{autoId}
//	invites/{code}
type Client interface {
	PutBucket(ctx context.Context, accountID string, b domain.Bucket) error
	DeleteBucket(ctx context.Context, accountID string, id int64) error
	PutTask(ctx context.Context, accountID string, t domain.Task) error
	DeleteTask(ctx context.Context, accountID string, id int64) error

	// FetchData reads an account's full bucket and task collections.
	FetchData(ctx context.Context, accountID string) (Data, error)

	// Invites are keyed globally by code.
	PutInvite(ctx context.Context, inv domain.Invite) error
	GetInvite(ctx context.Context, code string) (*domain.Invite, error)

	// The permission document lives under the contributor's account.
	PutPermission(ctx context.Context, contributorUID string, p domain.Permission) error
	GetPermission(ctx context.Context, contributorUID string) (*domain.Permission, error)

	// Inbox items live under the owner's account.
	PutInboxItem(ctx context.Context, ownerUID string, item domain.InboxItem) error
	ListInbox(ctx context.Context, ownerUID string) ([]domain.InboxItem, error)
}
