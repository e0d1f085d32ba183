package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// DeviceService defines device registration, lookup and removal.
// All operations are scoped to the owning user; absence and ownership
// mismatch are reported identically to avoid leaking device existence.
type DeviceService interface {
	// RegisterOrUpdate idempotently upserts a device for ownerID. A device id
	// held by a different user fails with ErrConflict.
	RegisterOrUpdate(ctx context.Context, ownerID string, d model.Device) (*model.Device, error)
	// Get loads a device owned by ownerID.
	Get(ctx context.Context, ownerID, deviceID string) (*model.Device, error)
	// Remove deletes a device owned by ownerID; key wraps cascade.
	Remove(ctx context.Context, ownerID, deviceID string) error
	// LegacyTokens lists pre-migration access tokens of an owned device,
	// keyed by vault id.
	LegacyTokens(ctx context.Context, ownerID, deviceID string) (map[string]string, error)
	// Profile returns the subject's authority record and owned devices.
	Profile(ctx context.Context, subjectID string) (*model.Authority, []model.Device, error)
}

type DeviceServiceImpl struct {
	devices     repository.DeviceRepository
	authorities repository.AuthorityRepository
	audit       *Auditor
	log         *zap.Logger
}

// NewDeviceService constructs DeviceService with required dependencies.
func NewDeviceService(devices repository.DeviceRepository, authorities repository.AuthorityRepository, audit *Auditor, log *zap.Logger) *DeviceServiceImpl {
	return &DeviceServiceImpl{devices: devices, authorities: authorities, audit: audit, log: log}
}

// RegisterOrUpdate creates the device on first sight and otherwise overwrites
// the caller-supplied attributes. On first registration a legacy device row
// with the same id is opportunistically deleted and the migration is audited;
// that cleanup is best-effort and never fails the registration.
func (s *DeviceServiceImpl) RegisterOrUpdate(ctx context.Context, ownerID string, d model.Device) (*model.Device, error) {
	if d.ID == "" || d.Name == "" || d.PublicKey == "" || d.UserPrivateKey == "" {
		return nil, fmt.Errorf("%w: id/name/publicKey/userPrivateKey required", errs.ErrInvalidInput)
	}
	if d.Type == "" {
		d.Type = model.DeviceDesktop // default for pre-type clients
	}
	if !d.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown device type %q", errs.ErrInvalidInput, d.Type)
	}
	d.OwnerID = ownerID

	existing, err := s.devices.Get(ctx, d.ID)
	switch {
	case err == nil:
		if existing.OwnerID != ownerID {
			return nil, fmt.Errorf("%w: device id already registered", errs.ErrConflict)
		}
		d.CreatedAt = existing.CreatedAt
		if err := s.devices.Update(ctx, &d); err != nil {
			return nil, err
		}
	case errors.Is(err, errs.ErrNotFound):
		d.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		if migrated, derr := s.devices.DeleteLegacy(ctx, d.ID); derr != nil {
			s.log.Warn("legacy device cleanup failed", zap.String("device", d.ID), zap.Error(derr))
		} else if migrated {
			s.log.Info("deleted legacy device during re-registration", zap.String("device", d.ID))
			s.audit.Log(ctx, model.AuditEvent{Kind: model.EventDeviceMigrated, ActorID: ownerID, DeviceID: d.ID})
		}
		if err := s.devices.Create(ctx, &d); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventDeviceRegistered, ActorID: ownerID, DeviceID: d.ID})
	return &d, nil
}

// Get loads an owned device; any other outcome is ErrNotFound.
func (s *DeviceServiceImpl) Get(ctx context.Context, ownerID, deviceID string) (*model.Device, error) {
	d, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	return d, nil
}

// Remove deletes an owned device and audits the removal.
func (s *DeviceServiceImpl) Remove(ctx context.Context, ownerID, deviceID string) error {
	if _, err := s.Get(ctx, ownerID, deviceID); err != nil {
		return err
	}
	if err := s.devices.Delete(ctx, deviceID); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventDeviceRemoved, ActorID: ownerID, DeviceID: deviceID})
	return nil
}

// LegacyTokens lists the pre-migration tokens of an owned device.
func (s *DeviceServiceImpl) LegacyTokens(ctx context.Context, ownerID, deviceID string) (map[string]string, error) {
	if _, err := s.Get(ctx, ownerID, deviceID); err != nil {
		return nil, err
	}
	tokens, err := s.devices.LegacyTokens(ctx, deviceID, ownerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(tokens))
	for _, t := range tokens {
		out[t.VaultID] = t.JWE
	}
	return out, nil
}

// Profile returns the subject's authority record and owned devices.
func (s *DeviceServiceImpl) Profile(ctx context.Context, subjectID string) (*model.Authority, []model.Device, error) {
	a, err := s.authorities.Get(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	devices, err := s.devices.ListByOwner(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	return a, devices, nil
}
