// Package contrib implements the contributor subsystem: invite code
// issuance and redemption, the one-directional permission link, and the
// inbox submission/review queue between two accounts.
package contrib

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/remote"
	"github.com/nooksapp/nooks/internal/store"
	"github.com/nooksapp/nooks/internal/syncer"
)

// codeAlphabet excludes lookalike characters (0/O, 1/I). Exactly 32
// characters, so one random byte masked to 5 bits indexes it uniformly.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeLength is the invite code length.
const CodeLength = 8

// Service wires the contributor flows to the remote store and the
// device-local prefs.
type Service struct {
	client remote.Client
	store  *store.Store
}

// NewService creates a contributor service.
func NewService(client remote.Client, s *store.Store) *Service {
	return &Service{client: client, store: s}
}

// GenerateInviteCode returns an 8-character code from the unambiguous
// alphabet.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	code := make([]byte, CodeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[b&0x1f]
	}
	return string(code), nil
}

// CreateInvite issues a new invite code for the owner's account,
// valid for seven days. The code keys the document directly; with a
// 32^8 keyspace a collision check is not worth a round trip.
func (s *Service) CreateInvite(ctx context.Context, owner syncer.Session) (*domain.Invite, error) {
	if !owner.Active() {
		return nil, fmt.Errorf("creating an invite requires a signed-in account")
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := domain.Invite{
		Code:       code,
		OwnerUID:   owner.AccountID,
		OwnerEmail: owner.Email,
		CreatedAt:  now,
		ExpiresAt:  now.Add(domain.InviteTTL),
	}
	if err := s.client.PutInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to store invite: %w", err)
	}
	return &inv, nil
}

// RedeemInvite redeems a code for the contributor's account. Failures
// are categorized: InvalidCode for an unknown code, Expired past the
// expiry, AlreadyUsed once redeemedBy is set.
//
// On success the invite is marked redeemed and a permission document is
// written under the contributor's identity. These are two separate
// writes, not atomic: a crash between them leaves a redeemed invite
// with no permission link.
func (s *Service) RedeemInvite(ctx context.Context, code string, contributor syncer.Session) (*domain.Permission, error) {
	if !contributor.Active() {
		return nil, fmt.Errorf("redeeming an invite requires a signed-in account")
	}

	inv, err := s.client.GetInvite(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.InviteError{Kind: domain.InviteErrorInvalidCode, Code: code}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}

	now := time.Now().UTC()
	if inv.Redeemed() {
		return nil, &domain.InviteError{Kind: domain.InviteErrorAlreadyUsed, Code: code}
	}
	if inv.Expired(now) {
		return nil, &domain.InviteError{Kind: domain.InviteErrorExpired, Code: code}
	}

	redeemed := *inv
	redeemed.RedeemedBy = &contributor.AccountID
	redeemed.RedeemedAt = &now
	if err := s.client.PutInvite(ctx, redeemed); err != nil {
		return nil, fmt.Errorf("failed to mark invite redeemed: %w", err)
	}

	perm := domain.Permission{
		OwnerUID:   inv.OwnerUID,
		OwnerEmail: inv.OwnerEmail,
		LinkedAt:   now,
	}
	if err := s.client.PutPermission(ctx, contributor.AccountID, perm); err != nil {
		return nil, fmt.Errorf("failed to write permission: %w", err)
	}

	if err := s.store.Prefs.SetLinkedOwner(inv.OwnerUID, inv.OwnerEmail); err != nil {
		return nil, fmt.Errorf("failed to record linked owner: %w", err)
	}

	return &perm, nil
}

// LinkedOwner returns the owner this device is linked to, or
// ErrNotLinked.
func (s *Service) LinkedOwner() (uid, email string, err error) {
	uid, email, err = s.store.Prefs.LinkedOwner()
	if err != nil {
		return "", "", err
	}
	if uid == "" {
		return "", "", domain.ErrNotLinked
	}
	return uid, email, nil
}
