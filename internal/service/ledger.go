package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// LedgerService manages the per-(vault, device) key-wrap store. Role
// preconditions (OWNER for grant/revoke, MEMBER for unlock) are enforced by
// the role gate before these run; the ledger owns existence and uniqueness.
type LedgerService interface {
	// Grant stores a wrapped masterkey for a device. Existing grants are
	// never replaced; rotation is revoke-then-grant.
	Grant(ctx context.Context, actorID, vaultID, deviceID, jwe, ephemeralPublicKey string) error
	// Unlock serves the stored wrap unmodified; unwrapping happens only on
	// the device. An unknown device is ErrNotFound; a known device without a
	// grant is ErrForbidden.
	Unlock(ctx context.Context, vaultID, deviceID string) (*model.KeyWrap, error)
	// RevokeDevice deletes one device's wrap on the vault.
	RevokeDevice(ctx context.Context, actorID, vaultID, deviceID string) error
	// RevokeUser deletes the wraps of every device the user owns on the vault.
	RevokeUser(ctx context.Context, actorID, vaultID, userID string) error
	// DevicesRequiringGrant lists member devices that still lack a wrap.
	DevicesRequiringGrant(ctx context.Context, vaultID string) ([]model.Device, error)
}

type LedgerServiceImpl struct {
	wraps   repository.KeyWrapRepository
	vaults  repository.VaultRepository
	devices repository.DeviceRepository
	audit   *Auditor
}

// NewLedgerService constructs LedgerService with required dependencies.
func NewLedgerService(wraps repository.KeyWrapRepository, vaults repository.VaultRepository, devices repository.DeviceRepository, audit *Auditor) *LedgerServiceImpl {
	return &LedgerServiceImpl{wraps: wraps, vaults: vaults, devices: devices, audit: audit}
}

// Grant validates vault and device existence, then inserts the wrap.
func (s *LedgerServiceImpl) Grant(ctx context.Context, actorID, vaultID, deviceID, jwe, ephemeralPublicKey string) error {
	if jwe == "" || ephemeralPublicKey == "" {
		return fmt.Errorf("%w: key material required", errs.ErrInvalidInput)
	}
	if _, err := s.vaults.Get(ctx, vaultID); err != nil {
		return err
	}
	if _, err := s.devices.Get(ctx, deviceID); err != nil {
		return err
	}
	w := model.KeyWrap{VaultID: vaultID, DeviceID: deviceID, JWE: jwe, EphemeralPublicKey: ephemeralPublicKey}
	if err := s.wraps.Create(ctx, w); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventKeyWrapGranted, ActorID: actorID, VaultID: vaultID, DeviceID: deviceID})
	return nil
}

// Unlock returns the stored wrap for (vault, device).
func (s *LedgerServiceImpl) Unlock(ctx context.Context, vaultID, deviceID string) (*model.KeyWrap, error) {
	if _, err := s.devices.Get(ctx, deviceID); err != nil {
		return nil, err
	}
	w, err := s.wraps.Get(ctx, vaultID, deviceID)
	if errors.Is(err, errs.ErrNotFound) {
		// device exists but access was never granted
		return nil, errs.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// RevokeDevice deletes one wrap.
func (s *LedgerServiceImpl) RevokeDevice(ctx context.Context, actorID, vaultID, deviceID string) error {
	if err := s.wraps.DeleteForDevice(ctx, vaultID, deviceID); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventKeyWrapRevoked, ActorID: actorID, VaultID: vaultID, DeviceID: deviceID})
	return nil
}

// RevokeUser deletes the wraps of every device the user owns on the vault.
func (s *LedgerServiceImpl) RevokeUser(ctx context.Context, actorID, vaultID, userID string) error {
	if err := s.wraps.DeleteForUser(ctx, vaultID, userID); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventKeyWrapRevoked, ActorID: actorID, VaultID: vaultID, AuthorityID: userID})
	return nil
}

// DevicesRequiringGrant lists member devices without a wrap for the vault.
func (s *LedgerServiceImpl) DevicesRequiringGrant(ctx context.Context, vaultID string) ([]model.Device, error) {
	return s.wraps.DevicesRequiringGrant(ctx, vaultID)
}
