package service

import (
	"context"
	"sort"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// In-memory fakes shared by the service tests.

type fakeAuthorities struct {
	byID   map[string]*model.Authority
	groups map[string]map[string]bool // groupID -> memberIDs
}

var _ repository.AuthorityRepository = (*fakeAuthorities)(nil)

func newFakeAuthorities() *fakeAuthorities {
	return &fakeAuthorities{byID: map[string]*model.Authority{}, groups: map[string]map[string]bool{}}
}

func (f *fakeAuthorities) Upsert(_ context.Context, a *model.Authority) error {
	cpy := *a
	f.byID[a.ID] = &cpy
	return nil
}

func (f *fakeAuthorities) Get(_ context.Context, id string) (*model.Authority, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAuthorities) AddGroupMember(_ context.Context, groupID, memberID string) error {
	if _, ok := f.byID[groupID]; !ok {
		return errs.ErrNotFound
	}
	if _, ok := f.byID[memberID]; !ok {
		return errs.ErrNotFound
	}
	if f.groups[groupID] == nil {
		f.groups[groupID] = map[string]bool{}
	}
	f.groups[groupID][memberID] = true
	return nil
}

func (f *fakeAuthorities) RemoveGroupMember(_ context.Context, groupID, memberID string) error {
	if !f.groups[groupID][memberID] {
		return errs.ErrNotFound
	}
	delete(f.groups[groupID], memberID)
	return nil
}

type fakeDevices struct {
	byID   map[string]*model.Device
	legacy map[string]model.LegacyDevice
	tokens []model.LegacyAccessToken

	deleteLegacyErr error
	onDelete        func(deviceID string)
}

var _ repository.DeviceRepository = (*fakeDevices)(nil)

func newFakeDevices() *fakeDevices {
	return &fakeDevices{byID: map[string]*model.Device{}, legacy: map[string]model.LegacyDevice{}}
}

func (f *fakeDevices) Get(_ context.Context, id string) (*model.Device, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDevices) Create(_ context.Context, d *model.Device) error {
	if _, exists := f.byID[d.ID]; exists {
		return errs.ErrConflict
	}
	cpy := *d
	f.byID[d.ID] = &cpy
	return nil
}

func (f *fakeDevices) Update(_ context.Context, d *model.Device) error {
	cur, ok := f.byID[d.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Name, cur.Type, cur.PublicKey, cur.UserPrivateKey = d.Name, d.Type, d.PublicKey, d.UserPrivateKey
	return nil
}

func (f *fakeDevices) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	if f.onDelete != nil {
		f.onDelete(id)
	}
	return nil
}

func (f *fakeDevices) ListByOwner(_ context.Context, ownerID string) ([]model.Device, error) {
	var out []model.Device
	for _, d := range f.byID {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDevices) DeleteLegacy(_ context.Context, id string) (bool, error) {
	if f.deleteLegacyErr != nil {
		return false, f.deleteLegacyErr
	}
	if _, ok := f.legacy[id]; !ok {
		return false, nil
	}
	delete(f.legacy, id)
	return true, nil
}

func (f *fakeDevices) LegacyTokens(_ context.Context, deviceID, ownerID string) ([]model.LegacyAccessToken, error) {
	var out []model.LegacyAccessToken
	if d, ok := f.byID[deviceID]; !ok || d.OwnerID != ownerID {
		return nil, nil
	}
	for _, t := range f.tokens {
		if t.DeviceID == deviceID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeVaults struct {
	byID    map[string]*model.Vault
	members map[string]map[string]model.Role // vaultID -> authorityID -> role

	createErr error
}

var _ repository.VaultRepository = (*fakeVaults)(nil)

func newFakeVaults() *fakeVaults {
	return &fakeVaults{byID: map[string]*model.Vault{}, members: map[string]map[string]model.Role{}}
}

func (f *fakeVaults) Create(_ context.Context, v *model.Vault) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byID[v.ID]; exists {
		return errs.ErrConflict
	}
	cpy := *v
	f.byID[v.ID] = &cpy
	f.members[v.ID] = map[string]model.Role{v.OwnerID: model.RoleOwner}
	return nil
}

func (f *fakeVaults) Get(_ context.Context, id string) (*model.Vault, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (f *fakeVaults) Archive(_ context.Context, id string) error {
	v, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	v.Archived = true
	return nil
}

func (f *fakeVaults) ListMembers(_ context.Context, vaultID string) ([]model.VaultMembership, error) {
	var out []model.VaultMembership
	for aid, role := range f.members[vaultID] {
		out = append(out, model.VaultMembership{VaultID: vaultID, AuthorityID: aid, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuthorityID < out[j].AuthorityID })
	return out, nil
}

func (f *fakeVaults) AddMember(_ context.Context, m model.VaultMembership) error {
	if _, ok := f.byID[m.VaultID]; !ok {
		return errs.ErrNotFound
	}
	f.members[m.VaultID][m.AuthorityID] = m.Role
	return nil
}

func (f *fakeVaults) RemoveMember(_ context.Context, vaultID, authorityID string) error {
	if _, ok := f.members[vaultID][authorityID]; !ok {
		return errs.ErrNotFound
	}
	delete(f.members[vaultID], authorityID)
	return nil
}

type fakeWraps struct {
	wraps   map[string]model.KeyWrap // vaultID + "|" + deviceID
	devices *fakeDevices
	vaults  *fakeVaults
}

var _ repository.KeyWrapRepository = (*fakeWraps)(nil)

func newFakeWraps(devices *fakeDevices, vaults *fakeVaults) *fakeWraps {
	return &fakeWraps{wraps: map[string]model.KeyWrap{}, devices: devices, vaults: vaults}
}

func wrapKeyOf(vaultID, deviceID string) string { return vaultID + "|" + deviceID }

func (f *fakeWraps) Create(_ context.Context, w model.KeyWrap) error {
	k := wrapKeyOf(w.VaultID, w.DeviceID)
	if _, exists := f.wraps[k]; exists {
		return errs.ErrConflict
	}
	f.wraps[k] = w
	return nil
}

func (f *fakeWraps) Get(_ context.Context, vaultID, deviceID string) (*model.KeyWrap, error) {
	w, ok := f.wraps[wrapKeyOf(vaultID, deviceID)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &w, nil
}

func (f *fakeWraps) DeleteForDevice(_ context.Context, vaultID, deviceID string) error {
	k := wrapKeyOf(vaultID, deviceID)
	if _, ok := f.wraps[k]; !ok {
		return errs.ErrNotFound
	}
	delete(f.wraps, k)
	return nil
}

func (f *fakeWraps) DeleteForUser(_ context.Context, vaultID, userID string) error {
	deleted := false
	for k, w := range f.wraps {
		if w.VaultID != vaultID {
			continue
		}
		if d, ok := f.devices.byID[w.DeviceID]; ok && d.OwnerID == userID {
			delete(f.wraps, k)
			deleted = true
		}
	}
	if !deleted {
		return errs.ErrNotFound
	}
	return nil
}

func (f *fakeWraps) DevicesRequiringGrant(_ context.Context, vaultID string) ([]model.Device, error) {
	var out []model.Device
	for _, d := range f.devices.byID {
		if _, member := f.vaults.members[vaultID][d.OwnerID]; !member {
			continue
		}
		if _, granted := f.wraps[wrapKeyOf(vaultID, d.ID)]; granted {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAccess struct {
	rows  []model.EffectiveAccess
	seats int
	err   error
}

var _ repository.EffectiveAccessRepository = (*fakeAccess)(nil)

func (f *fakeAccess) Resolve(_ context.Context, vaultID string) ([]model.EffectiveAccess, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.EffectiveAccess
	for _, r := range f.rows {
		if r.VaultID == vaultID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAccess) RolesOf(_ context.Context, vaultID, authorityID string) ([]model.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Role
	for _, r := range f.rows {
		if r.VaultID == vaultID && r.AuthorityID == authorityID {
			out = append(out, r.Role)
		}
	}
	return out, nil
}

func (f *fakeAccess) SeatCount(context.Context) (int, error) {
	return f.seats, f.err
}

type fakeAudit struct {
	events    []model.AuditEvent
	appendErr error
}

var _ repository.AuditRepository = (*fakeAudit)(nil)

func (f *fakeAudit) Append(_ context.Context, ev model.AuditEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAudit) kinds() []model.EventKind {
	out := make([]model.EventKind, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Kind)
	}
	return out
}
