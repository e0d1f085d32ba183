package httpserver

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

var testSignKey = []byte("test-signing-key")

// signToken issues an HS256 bearer token the way the identity provider would.
func signToken(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSignKey)
	require.NoError(t, err)
	return s
}

func perform(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

// Stub services backing the HTTP tests. State is seeded per test.

type stubResolver struct {
	roles map[string][]model.Role // vaultID + "|" + authorityID
	seats int
	err   error
}

var _ service.AccessResolver = (*stubResolver)(nil)

func newStubResolver() *stubResolver {
	return &stubResolver{roles: map[string][]model.Role{}}
}

func (f *stubResolver) grant(vaultID, authorityID string, role model.Role) {
	k := vaultID + "|" + authorityID
	f.roles[k] = append(f.roles[k], role)
}

func (f *stubResolver) Resolve(_ context.Context, vaultID string) ([]model.EffectiveAccess, error) {
	var out []model.EffectiveAccess
	for k, roles := range f.roles {
		v, a, _ := strings.Cut(k, "|")
		if v != vaultID {
			continue
		}
		for _, r := range roles {
			out = append(out, model.EffectiveAccess{VaultID: v, AuthorityID: a, Role: r})
		}
	}
	return out, f.err
}

func (f *stubResolver) RolesOf(_ context.Context, vaultID, authorityID string) ([]model.Role, error) {
	return f.roles[vaultID+"|"+authorityID], f.err
}

func (f *stubResolver) HasRole(_ context.Context, vaultID, authorityID string, required model.Role) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.roles[vaultID+"|"+authorityID] {
		if r.Satisfies(required) {
			return true, nil
		}
	}
	return false, nil
}

func (f *stubResolver) SeatCount(context.Context) (int, error) { return f.seats, f.err }

type stubVaults struct {
	byID    map[string]*model.Vault
	members []model.VaultMembership
}

var _ service.VaultService = (*stubVaults)(nil)

func newStubVaults() *stubVaults { return &stubVaults{byID: map[string]*model.Vault{}} }

func (f *stubVaults) Create(_ context.Context, subjectID string, v model.Vault) (*model.Vault, error) {
	if _, exists := f.byID[v.ID]; exists {
		return nil, errs.ErrConflict
	}
	v.OwnerID = subjectID
	f.byID[v.ID] = &v
	return &v, nil
}

func (f *stubVaults) Get(_ context.Context, id string) (*model.Vault, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return v, nil
}

func (f *stubVaults) Archive(_ context.Context, _, id string) error {
	v, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	v.Archived = true
	return nil
}

func (f *stubVaults) ListMembers(_ context.Context, vaultID string) ([]model.VaultMembership, error) {
	var out []model.VaultMembership
	for _, m := range f.members {
		if m.VaultID == vaultID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *stubVaults) AddMember(_ context.Context, _, vaultID, authorityID string, role model.Role) error {
	if !role.Valid() {
		return errs.ErrInvalidInput
	}
	f.members = append(f.members, model.VaultMembership{VaultID: vaultID, AuthorityID: authorityID, Role: role})
	return nil
}

func (f *stubVaults) RemoveMember(_ context.Context, _, vaultID, authorityID string) error {
	for i, m := range f.members {
		if m.VaultID == vaultID && m.AuthorityID == authorityID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

type stubDevices struct {
	byID      map[string]*model.Device
	authority *model.Authority
	tokens    map[string]string
}

var _ service.DeviceService = (*stubDevices)(nil)

func newStubDevices() *stubDevices { return &stubDevices{byID: map[string]*model.Device{}} }

func (f *stubDevices) RegisterOrUpdate(_ context.Context, ownerID string, d model.Device) (*model.Device, error) {
	if d.Name == "" || d.PublicKey == "" || d.UserPrivateKey == "" {
		return nil, errs.ErrInvalidInput
	}
	if cur, ok := f.byID[d.ID]; ok && cur.OwnerID != ownerID {
		return nil, errs.ErrConflict
	}
	d.OwnerID = ownerID
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	f.byID[d.ID] = &d
	return &d, nil
}

func (f *stubDevices) Get(_ context.Context, ownerID, deviceID string) (*model.Device, error) {
	d, ok := f.byID[deviceID]
	if !ok || d.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	return d, nil
}

func (f *stubDevices) Remove(ctx context.Context, ownerID, deviceID string) error {
	if _, err := f.Get(ctx, ownerID, deviceID); err != nil {
		return err
	}
	delete(f.byID, deviceID)
	return nil
}

func (f *stubDevices) LegacyTokens(ctx context.Context, ownerID, deviceID string) (map[string]string, error) {
	if _, err := f.Get(ctx, ownerID, deviceID); err != nil {
		return nil, err
	}
	return f.tokens, nil
}

func (f *stubDevices) Profile(_ context.Context, subjectID string) (*model.Authority, []model.Device, error) {
	if f.authority == nil || f.authority.ID != subjectID {
		return nil, nil, errs.ErrNotFound
	}
	var owned []model.Device
	for _, d := range f.byID {
		if d.OwnerID == subjectID {
			owned = append(owned, *d)
		}
	}
	return f.authority, owned, nil
}

type stubLedger struct {
	wraps   map[string]model.KeyWrap // vaultID + "|" + deviceID
	devices *stubDevices
	pending []model.Device
}

var _ service.LedgerService = (*stubLedger)(nil)

func newStubLedger(devices *stubDevices) *stubLedger {
	return &stubLedger{wraps: map[string]model.KeyWrap{}, devices: devices}
}

func (f *stubLedger) Grant(_ context.Context, _, vaultID, deviceID, jwe, eph string) error {
	if jwe == "" || eph == "" {
		return errs.ErrInvalidInput
	}
	if _, ok := f.devices.byID[deviceID]; !ok {
		return errs.ErrNotFound
	}
	k := vaultID + "|" + deviceID
	if _, exists := f.wraps[k]; exists {
		return errs.ErrConflict
	}
	f.wraps[k] = model.KeyWrap{VaultID: vaultID, DeviceID: deviceID, JWE: jwe, EphemeralPublicKey: eph}
	return nil
}

func (f *stubLedger) Unlock(_ context.Context, vaultID, deviceID string) (*model.KeyWrap, error) {
	if _, ok := f.devices.byID[deviceID]; !ok {
		return nil, errs.ErrNotFound
	}
	w, ok := f.wraps[vaultID+"|"+deviceID]
	if !ok {
		return nil, errs.ErrForbidden
	}
	return &w, nil
}

func (f *stubLedger) RevokeDevice(_ context.Context, _, vaultID, deviceID string) error {
	k := vaultID + "|" + deviceID
	if _, ok := f.wraps[k]; !ok {
		return errs.ErrNotFound
	}
	delete(f.wraps, k)
	return nil
}

func (f *stubLedger) RevokeUser(_ context.Context, _, vaultID, userID string) error {
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

func (f *stubLedger) DevicesRequiringGrant(context.Context, string) ([]model.Device, error) {
	return f.pending, nil
}

type stubAuthorities struct {
	upserts []model.Authority
	links   map[string]string // memberID -> groupID
}

var _ service.AuthorityService = (*stubAuthorities)(nil)

func newStubAuthorities() *stubAuthorities { return &stubAuthorities{links: map[string]string{}} }

func (f *stubAuthorities) Upsert(_ context.Context, a model.Authority) error {
	if a.ID == "" || a.Name == "" {
		return errs.ErrInvalidInput
	}
	f.upserts = append(f.upserts, a)
	return nil
}

func (f *stubAuthorities) AddGroupMember(_ context.Context, groupID, memberID string) error {
	f.links[memberID] = groupID
	return nil
}

func (f *stubAuthorities) RemoveGroupMember(_ context.Context, groupID, memberID string) error {
	if f.links[memberID] != groupID {
		return errs.ErrNotFound
	}
	delete(f.links, memberID)
	return nil
}

// harness bundles the stubs behind a fully registered engine.
type harness struct {
	engine      *gin.Engine
	resolver    *stubResolver
	vaults      *stubVaults
	devices     *stubDevices
	ledger      *stubLedger
	authorities *stubAuthorities
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		resolver:    newStubResolver(),
		vaults:      newStubVaults(),
		devices:     newStubDevices(),
		authorities: newStubAuthorities(),
	}
	h.ledger = newStubLedger(h.devices)
	srv := New(zap.NewNop(), testSignKey, 0, h.resolver, h.vaults, h.devices, h.ledger, h.authorities)
	h.engine = gin.New()
	srv.Register(h.engine)
	return h
}
