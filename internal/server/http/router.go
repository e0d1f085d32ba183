package httpserver

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DonWMason/CryptomatorHub/internal/service"
)

// Server holds the application services behind the HTTP surface.
type Server struct {
	log         *zap.Logger
	signKey     []byte
	timeout     time.Duration
	gate        *RoleGate
	resolver    service.AccessResolver
	vaults      service.VaultService
	devices     service.DeviceService
	ledger      service.LedgerService
	authorities service.AuthorityService
}

// New constructs the HTTP server facade.
func New(log *zap.Logger, signKey []byte, timeout time.Duration,
	resolver service.AccessResolver,
	vaults service.VaultService,
	devices service.DeviceService,
	ledger service.LedgerService,
	authorities service.AuthorityService,
) *Server {
	return &Server{
		log:         log,
		signKey:     signKey,
		timeout:     timeout,
		gate:        NewRoleGate(resolver, log),
		resolver:    resolver,
		vaults:      vaults,
		devices:     devices,
		ledger:      ledger,
		authorities: authorities,
	}
}

// Register attaches middleware and routes. The access requirement of every
// route is declared here, next to the route itself.
func (s *Server) Register(engine *gin.Engine) {
	engine.Use(Recovery(s.log))
	engine.Use(Logging(s.log))
	if s.timeout > 0 {
		engine.Use(Timeout(s.timeout))
	}

	api := engine.Group("/api", Authenticate(s.signKey))

	devices := api.Group("/devices")
	devices.PUT("/:deviceId", s.gate.Require(RequireAuthenticated), s.createOrUpdateDevice)
	devices.GET("/:deviceId", s.gate.Require(RequireAuthenticated), s.getDevice)
	devices.DELETE("/:deviceId", s.gate.Require(RequireAuthenticated), s.removeDevice)
	devices.GET("/:deviceId/legacy-access-tokens", s.gate.Require(RequireAuthenticated), s.legacyAccessTokens)

	api.GET("/users/me", s.gate.Require(RequireAuthenticated), s.me)

	vaults := api.Group("/vaults")
	vaults.PUT("/:vaultId", s.gate.Require(RequireAuthenticated), s.createVault)
	vaults.GET("/:vaultId", s.gate.Require(RequireVaultMember), s.getVault)
	vaults.POST("/:vaultId/archive", s.gate.Require(RequireVaultOwner), s.archiveVault)
	vaults.GET("/:vaultId/members", s.gate.Require(RequireVaultOwner), s.listMembers)
	vaults.PUT("/:vaultId/members/:authorityId", s.gate.Require(RequireVaultOwner), s.addMember)
	vaults.DELETE("/:vaultId/members/:authorityId", s.gate.Require(RequireVaultOwner), s.removeMember)
	vaults.GET("/:vaultId/devices-requiring-access-grant", s.gate.Require(RequireVaultOwner), s.devicesRequiringGrant)
	vaults.GET("/:vaultId/keys/:deviceId", s.gate.Require(RequireVaultMember), s.unlock)
	vaults.PUT("/:vaultId/keys/:deviceId", s.gate.Require(RequireVaultOwner), s.grantAccess)
	vaults.DELETE("/:vaultId/keys/:deviceId", s.gate.Require(RequireVaultOwner), s.revokeDeviceAccess)
	vaults.DELETE("/:vaultId/users/:userId/keys", s.gate.Require(RequireVaultOwner), s.revokeUserAccess)

	authorities := api.Group("/authorities")
	authorities.PUT("/:authorityId", s.gate.Require(RequireAdmin), s.upsertAuthority)
	authorities.PUT("/:authorityId/members/:userId", s.gate.Require(RequireAdmin), s.addGroupMember)
	authorities.DELETE("/:authorityId/members/:userId", s.gate.Require(RequireAdmin), s.removeGroupMember)

	api.GET("/admin/seats", s.gate.Require(RequireAdmin), s.seats)
}
