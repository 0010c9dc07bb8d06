package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

// Pref keys for the device-local slots. These are never synchronized.
const (
	prefAppMode          = "app_mode"
	prefLastExportAt     = "last_export_at"
	prefLinkedOwnerUID   = "linked_owner_uid"
	prefLinkedOwnerEmail = "linked_owner_email"
	prefDismissedInbox   = "dismissed_inbox_ids"
)

// PrefStore handles device-local key-value slots.
type PrefStore struct {
	store *Store
}

// Get returns the raw value for a key, or "" if unset.
func (ps *PrefStore) Get(key string) (string, error) {
	var value string
	err := ps.store.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pref %s: %w", key, err)
	}
	return value, nil
}

// Set writes the value for a key, replacing any prior value.
func (ps *PrefStore) Set(key, value string) error {
	_, err := ps.store.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set pref %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (ps *PrefStore) Delete(key string) error {
	if _, err := ps.store.db.Exec(`DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete pref %s: %w", key, err)
	}
	return nil
}

// Mode returns the device app mode, defaulting to owner.
func (ps *PrefStore) Mode() (domain.AppMode, error) {
	v, err := ps.Get(prefAppMode)
	if err != nil {
		return "", err
	}
	if v == "" {
		return domain.AppModeOwner, nil
	}
	if err := domain.ValidateAppMode(v); err != nil {
		return "", err
	}
	return domain.AppMode(v), nil
}

// SetMode persists the device app mode.
func (ps *PrefStore) SetMode(mode domain.AppMode) error {
	if err := domain.ValidateAppMode(string(mode)); err != nil {
		return err
	}
	return ps.Set(prefAppMode, string(mode))
}

// LastExportAt returns when the last backup export ran, or nil.
func (ps *PrefStore) LastExportAt() (*time.Time, error) {
	v, err := ps.Get(prefLastExportAt)
	if err != nil || v == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid last export timestamp: %w", err)
	}
	return &t, nil
}

// SetLastExportAt records when a backup export ran.
func (ps *PrefStore) SetLastExportAt(t time.Time) error {
	return ps.Set(prefLastExportAt, t.UTC().Format(time.RFC3339))
}

// LinkedOwner returns the owner this contributor device is linked to,
// or nil if no invite has been redeemed here.
func (ps *PrefStore) LinkedOwner() (uid, email string, err error) {
	uid, err = ps.Get(prefLinkedOwnerUID)
	if err != nil {
		return "", "", err
	}
	email, err = ps.Get(prefLinkedOwnerEmail)
	if err != nil {
		return "", "", err
	}
	return uid, email, nil
}

// SetLinkedOwner records the owner this device is linked to.
func (ps *PrefStore) SetLinkedOwner(uid, email string) error {
	if err := ps.Set(prefLinkedOwnerUID, uid); err != nil {
		return err
	}
	return ps.Set(prefLinkedOwnerEmail, email)
}

// ClearLinkedOwner removes the link.
func (ps *PrefStore) ClearLinkedOwner() error {
	if err := ps.Delete(prefLinkedOwnerUID); err != nil {
		return err
	}
	return ps.Delete(prefLinkedOwnerEmail)
}

// DismissedInboxIDs returns the set of inbox item ids hidden on this
// device. Dismissal is cosmetic and reversible; the remote documents
// are never touched.
func (ps *PrefStore) DismissedInboxIDs() (map[string]bool, error) {
	v, err := ps.Get(prefDismissedInbox)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	if v == "" {
		return set, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(v), &ids); err != nil {
		return nil, fmt.Errorf("invalid dismissed inbox ids: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// DismissInboxItem adds an inbox item id to the dismissed set.
func (ps *PrefStore) DismissInboxItem(id string) error {
	set, err := ps.DismissedInboxIDs()
	if err != nil {
		return err
	}
	set[id] = true
	return ps.saveDismissed(set)
}

// UndismissInboxItem removes an inbox item id from the dismissed set.
func (ps *PrefStore) UndismissInboxItem(id string) error {
	set, err := ps.DismissedInboxIDs()
	if err != nil {
		return err
	}
	delete(set, id)
	return ps.saveDismissed(set)
}

func (ps *PrefStore) saveDismissed(set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal dismissed ids: %w", err)
	}
	return ps.Set(prefDismissedInbox, string(data))
}
