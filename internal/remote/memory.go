package remote

import (
	"context"
	"sort"
	"sync"

	"github.com/nooksapp/nooks/internal/domain"
)

// MemoryClient is an in-memory Client for tests and offline runs. Every
// write overwrites the whole document, matching the real store's
// semantics. Err, when set, is returned by all operations to simulate a
// remote outage.
type MemoryClient struct {
	mu  sync.Mutex
	Err error

	buckets     map[string]map[int64]domain.Bucket
	tasks       map[string]map[int64]domain.Task
	invites     map[string]domain.Invite
	permissions map[string]domain.Permission
	inbox       map[string]map[string]domain.InboxItem
}

// NewMemoryClient creates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		buckets:     make(map[string]map[int64]domain.Bucket),
		tasks:       make(map[string]map[int64]domain.Task),
		invites:     make(map[string]domain.Invite),
		permissions: make(map[string]domain.Permission),
		inbox:       make(map[string]map[string]domain.InboxItem),
	}
}

// SetErr makes all subsequent operations fail with err (nil to clear).
func (m *MemoryClient) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MemoryClient) PutBucket(ctx context.Context, accountID string, b domain.Bucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.buckets[accountID] == nil {
		m.buckets[accountID] = make(map[int64]domain.Bucket)
	}
	m.buckets[accountID][b.ID] = b
	return nil
}

func (m *MemoryClient) DeleteBucket(ctx context.Context, accountID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.buckets[accountID], id)
	return nil
}

func (m *MemoryClient) PutTask(ctx context.Context, accountID string, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.tasks[accountID] == nil {
		m.tasks[accountID] = make(map[int64]domain.Task)
	}
	m.tasks[accountID][t.ID] = t
	return nil
}

func (m *MemoryClient) DeleteTask(ctx context.Context, accountID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.tasks[accountID], id)
	return nil
}

func (m *MemoryClient) FetchData(ctx context.Context, accountID string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return Data{}, m.Err
	}
	var data Data
	for _, b := range m.buckets[accountID] {
		data.Buckets = append(data.Buckets, b)
	}
	for _, t := range m.tasks[accountID] {
		data.Tasks = append(data.Tasks, t)
	}
	sort.Slice(data.Buckets, func(i, j int) bool { return data.Buckets[i].ID < data.Buckets[j].ID })
	sort.Slice(data.Tasks, func(i, j int) bool { return data.Tasks[i].ID < data.Tasks[j].ID })
	return data, nil
}

func (m *MemoryClient) PutInvite(ctx context.Context, inv domain.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.invites[inv.Code] = inv
	return nil
}

func (m *MemoryClient) GetInvite(ctx context.Context, code string) (*domain.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	inv, ok := m.invites[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inv, nil
}

func (m *MemoryClient) PutPermission(ctx context.Context, contributorUID string, p domain.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.permissions[contributorUID] = p
	return nil
}

func (m *MemoryClient) GetPermission(ctx context.Context, contributorUID string) (*domain.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.permissions[contributorUID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryClient) PutInboxItem(ctx context.Context, ownerUID string, item domain.InboxItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.inbox[ownerUID] == nil {
		m.inbox[ownerUID] = make(map[string]domain.InboxItem)
	}
	m.inbox[ownerUID][item.ID] = item
	return nil
}

func (m *MemoryClient) ListInbox(ctx context.Context, ownerUID string) ([]domain.InboxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	items := make([]domain.InboxItem, 0, len(m.inbox[ownerUID]))
	for _, item := range m.inbox[ownerUID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

// BucketCount reports how many buckets an account holds (test helper).
func (m *MemoryClient) BucketCount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets[accountID])
}

// TaskCount reports how many tasks an account holds (test helper).
func (m *MemoryClient) TaskCount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks[accountID])
}
