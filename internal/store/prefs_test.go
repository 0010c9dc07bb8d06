package store

import (
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

func TestPrefModeDefaultsToOwner(t *testing.T) {
	s := newTestStore(t)

	mode, err := s.Prefs.Mode()
	if err != nil {
		t.Fatal(err)
	}
	if mode != domain.AppModeOwner {
		t.Errorf("default mode = %s", mode)
	}

	if err := s.Prefs.SetMode(domain.AppModeContributor); err != nil {
		t.Fatal(err)
	}
	mode, _ = s.Prefs.Mode()
	if mode != domain.AppModeContributor {
		t.Errorf("mode = %s after set", mode)
	}

	if err := s.Prefs.SetMode("admin"); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestPrefLastExportRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Prefs.LastExportAt()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected nil before any export")
	}

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := s.Prefs.SetLastExportAt(now); err != nil {
		t.Fatal(err)
	}
	got, err = s.Prefs.LastExportAt()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Equal(now) {
		t.Errorf("last export = %v", got)
	}
}

func TestPrefLinkedOwner(t *testing.T) {
	s := newTestStore(t)

	uid, email, err := s.Prefs.LinkedOwner()
	if err != nil {
		t.Fatal(err)
	}
	if uid != "" || email != "" {
		t.Fatal("expected no linked owner on fresh store")
	}

	if err := s.Prefs.SetLinkedOwner("owner-1", "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	uid, email, _ = s.Prefs.LinkedOwner()
	if uid != "owner-1" || email != "owner@example.com" {
		t.Errorf("linked owner = %s %s", uid, email)
	}

	if err := s.Prefs.ClearLinkedOwner(); err != nil {
		t.Fatal(err)
	}
	uid, _, _ = s.Prefs.LinkedOwner()
	if uid != "" {
		t.Error("linked owner survived clear")
	}
}

func TestPrefDismissedInboxIDs(t *testing.T) {
	s := newTestStore(t)

	if err := s.Prefs.DismissInboxItem("item-a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Prefs.DismissInboxItem("item-b"); err != nil {
		t.Fatal(err)
	}

	set, err := s.Prefs.DismissedInboxIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !set["item-a"] || !set["item-b"] {
		t.Errorf("dismissed set = %v", set)
	}

	if err := s.Prefs.UndismissInboxItem("item-a"); err != nil {
		t.Fatal(err)
	}
	set, _ = s.Prefs.DismissedInboxIDs()
	if set["item-a"] {
		t.Error("item-a still dismissed")
	}
	if !set["item-b"] {
		t.Error("item-b lost")
	}
}
