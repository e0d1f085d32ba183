package repository

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// KeyWrapRepository is the per-(vault, device) encrypted-key store.
type KeyWrapRepository interface {
	// Create inserts a key wrap. Fails with errs.ErrConflict if a wrap for
	// (vault, device) already exists; grants are never silently replaced.
	Create(ctx context.Context, w model.KeyWrap) error

	// Get loads the wrap for (vault, device). Fails with errs.ErrNotFound
	// if no wrap exists.
	Get(ctx context.Context, vaultID, deviceID string) (*model.KeyWrap, error)

	// DeleteForDevice removes the wrap of one device on one vault.
	// Fails with errs.ErrNotFound if no matching row exists.
	DeleteForDevice(ctx context.Context, vaultID, deviceID string) error

	// DeleteForUser removes the wraps of every device owned by the user on
	// the vault. Fails with errs.ErrNotFound if no matching rows exist.
	DeleteForUser(ctx context.Context, vaultID, userID string) error

	// DevicesRequiringGrant returns every device owned by a current effective
	// member of the vault that has no wrap for the vault yet.
	DevicesRequiringGrant(ctx context.Context, vaultID string) ([]model.Device, error)
}
