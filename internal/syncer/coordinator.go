package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/merge"
	"github.com/nooksapp/nooks/internal/remote"
)

// SyncState is the externally observable state of an account's initial
// sync within this process.
type SyncState string

const (
	StateUnauthenticated SyncState = "unauthenticated"
	StateSyncing         SyncState = "syncing"
	StateSynced          SyncState = "synced"
	StateError           SyncState = "error"
)

const defaultSyncTimeout = 30 * time.Second

// Callbacks decouple the coordinator from how local data is exposed.
type Callbacks struct {
	// GetLocalData returns the current local dataset.
	GetLocalData func() (merge.Data, error)

	// InsertMergedItems inserts the reconciler's net-new items through
	// ordinary local add operations (which re-trigger propagation).
	// incomingBuckets is the remote bucket list, needed to re-bind
	// net-new tasks to local buckets by name.
	InsertMergedItems func(netNew merge.Data, incomingBuckets []domain.Bucket) error

	// GetAllLocalData re-reads the full local dataset for the final
	// push-back step.
	GetAllLocalData func() (merge.Data, error)
}

// Coordinator runs the initial sync at most once per (process lifetime,
// account) pair. Repeated sign-in notifications for an account already
// seen are ignored, including after an interrupted run or a sign-out:
// the seen marker lives for the rest of the process.
type Coordinator struct {
	client  remote.Client
	logger  *log.Logger
	timeout time.Duration

	mu     sync.Mutex
	states map[string]SyncState
}

// NewCoordinator creates a coordinator. If logger is nil, a default
// stderr logger is used.
func NewCoordinator(client remote.Client, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = NewLogger("")
	}
	return &Coordinator{
		client:  client,
		logger:  logger,
		timeout: defaultSyncTimeout,
		states:  make(map[string]SyncState),
	}
}

// SetTimeout overrides the per-run timeout (mainly for tests).
func (c *Coordinator) SetTimeout(d time.Duration) {
	c.timeout = d
}

// StateFor returns the sync state for an account.
func (c *Coordinator) StateFor(accountID string) SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.states[accountID]; ok {
		return st
	}
	return StateUnauthenticated
}

// Run executes the initial sync protocol for the session's account:
//
//  1. Fetch remote and local datasets concurrently.
//  2. Reconcile with existing = local, incoming = remote.
//  3. Insert net-new items locally via the injected callback.
//  4. Re-read the full local dataset and push every item by id,
//     overwriting remote documents (repairs earlier failed
//     propagations).
//
// A failure surfaces to the caller and leaves the account in the error
// state; items already inserted in step 3 are not rolled back.
func (c *Coordinator) Run(ctx context.Context, sess Session, cbs Callbacks) error {
	if !sess.Active() {
		return fmt.Errorf("initial sync requires a signed-in account")
	}

	c.mu.Lock()
	if _, seen := c.states[sess.AccountID]; seen {
		c.mu.Unlock()
		c.logger.Printf("initial sync already ran for account %s, skipping", sess.AccountID)
		return nil
	}
	c.states[sess.AccountID] = StateSyncing
	c.mu.Unlock()

	err := c.run(ctx, sess, cbs)

	c.mu.Lock()
	if err != nil {
		c.states[sess.AccountID] = StateError
	} else {
		c.states[sess.AccountID] = StateSynced
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Printf("initial sync for account %s failed: %v", sess.AccountID, err)
		return err
	}
	c.logger.Printf("initial sync for account %s complete", sess.AccountID)
	return nil
}

func (c *Coordinator) run(ctx context.Context, sess Session, cbs Callbacks) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Step 1: fetch both sides concurrently.
	type remoteResult struct {
		data remote.Data
		err  error
	}
	type localResult struct {
		data merge.Data
		err  error
	}
	remoteCh := make(chan remoteResult, 1)
	localCh := make(chan localResult, 1)

	go func() {
		data, err := c.client.FetchData(ctx, sess.AccountID)
		remoteCh <- remoteResult{data: data, err: err}
	}()
	go func() {
		data, err := cbs.GetLocalData()
		localCh <- localResult{data: data, err: err}
	}()

	rr := <-remoteCh
	lr := <-localCh
	if rr.err != nil {
		return fmt.Errorf("failed to fetch remote data: %w", rr.err)
	}
	if lr.err != nil {
		return fmt.Errorf("failed to read local data: %w", lr.err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	incoming := merge.Data{Buckets: rr.data.Buckets, Tasks: rr.data.Tasks}

	// Step 2: reconcile, existing = local, incoming = remote.
	netNew := merge.Merge(lr.data, incoming)

	// Step 3: insert net-new items locally.
	if len(netNew.Buckets) > 0 || len(netNew.Tasks) > 0 {
		c.logger.Printf("initial sync for account %s: inserting %d buckets, %d tasks",
			sess.AccountID, len(netNew.Buckets), len(netNew.Tasks))
		if err := cbs.InsertMergedItems(netNew, incoming.Buckets); err != nil {
			return fmt.Errorf("failed to insert merged items: %w", err)
		}
	}

	// Step 4: push the full local dataset back, overwriting remote
	// documents by id.
	all, err := cbs.GetAllLocalData()
	if err != nil {
		return fmt.Errorf("failed to re-read local data: %w", err)
	}
	for _, b := range all.Buckets {
		if err := c.client.PutBucket(ctx, sess.AccountID, b); err != nil {
			return fmt.Errorf("failed to push bucket %d: %w", b.ID, err)
		}
	}
	for _, t := range all.Tasks {
		if err := c.client.PutTask(ctx, sess.AccountID, t); err != nil {
			return fmt.Errorf("failed to push task %d: %w", t.ID, err)
		}
	}

	return nil
}
