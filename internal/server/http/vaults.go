package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// createVault handles PUT /api/vaults/:vaultId. Create-if-absent: an existing
// id fails with 409, never an overwrite.
func (s *Server) createVault(c *gin.Context) {
	subject, _ := subjectFrom(c)
	var dto vaultDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err))
		return
	}
	v := model.Vault{
		ID:         c.Param(vaultIDParam),
		Name:       dto.Name,
		Masterkey:  dto.Masterkey,
		Iterations: dto.Iterations,
		Salt:       dto.Salt,
	}
	saved, err := s.vaults.Create(c.Request.Context(), subject, v)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vaultToDto(saved))
}

// getVault handles GET /api/vaults/:vaultId (MEMBER gate).
func (s *Server) getVault(c *gin.Context) {
	v, err := s.vaults.Get(c.Request.Context(), c.Param(vaultIDParam))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vaultToDto(v))
}

// archiveVault handles POST /api/vaults/:vaultId/archive (OWNER gate).
func (s *Server) archiveVault(c *gin.Context) {
	subject, _ := subjectFrom(c)
	if err := s.vaults.Archive(c.Request.Context(), subject, c.Param(vaultIDParam)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listMembers handles GET /api/vaults/:vaultId/members (OWNER gate).
func (s *Server) listMembers(c *gin.Context) {
	members, err := s.vaults.ListMembers(c.Request.Context(), c.Param(vaultIDParam))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]memberDto, 0, len(members))
	for _, m := range members {
		out = append(out, memberDto{ID: m.AuthorityID, Role: m.Role})
	}
	c.JSON(http.StatusOK, out)
}

// addMember handles PUT /api/vaults/:vaultId/members/:authorityId (OWNER gate).
// The role query parameter defaults to MEMBER.
func (s *Server) addMember(c *gin.Context) {
	subject, _ := subjectFrom(c)
	role := model.Role(c.DefaultQuery("role", string(model.RoleMember)))
	err := s.vaults.AddMember(c.Request.Context(), subject, c.Param(vaultIDParam), c.Param("authorityId"), role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// removeMember handles DELETE /api/vaults/:vaultId/members/:authorityId (OWNER gate).
func (s *Server) removeMember(c *gin.Context) {
	subject, _ := subjectFrom(c)
	err := s.vaults.RemoveMember(c.Request.Context(), subject, c.Param(vaultIDParam), c.Param("authorityId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// devicesRequiringGrant handles GET /api/vaults/:vaultId/devices-requiring-access-grant
// (OWNER gate): member devices that still lack a key wrap for this vault.
func (s *Server) devicesRequiringGrant(c *gin.Context) {
	devices, err := s.ledger.DevicesRequiringGrant(c.Request.Context(), c.Param(vaultIDParam))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]deviceDto, 0, len(devices))
	for i := range devices {
		out = append(out, deviceToDto(&devices[i]))
	}
	c.JSON(http.StatusOK, out)
}

// unlock handles GET /api/vaults/:vaultId/keys/:deviceId (MEMBER gate).
// Serves the stored envelope unmodified.
func (s *Server) unlock(c *gin.Context) {
	w, err := s.ledger.Unlock(c.Request.Context(), c.Param(vaultIDParam), c.Param("deviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessGrantDto{
		DeviceSpecificMasterkey: w.JWE,
		EphemeralPublicKey:      w.EphemeralPublicKey,
	})
}

// grantAccess handles PUT /api/vaults/:vaultId/keys/:deviceId (OWNER gate).
func (s *Server) grantAccess(c *gin.Context) {
	subject, _ := subjectFrom(c)
	var dto accessGrantDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err))
		return
	}
	err := s.ledger.Grant(c.Request.Context(), subject, c.Param(vaultIDParam), c.Param("deviceId"),
		dto.DeviceSpecificMasterkey, dto.EphemeralPublicKey)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// revokeDeviceAccess handles DELETE /api/vaults/:vaultId/keys/:deviceId (OWNER gate).
func (s *Server) revokeDeviceAccess(c *gin.Context) {
	subject, _ := subjectFrom(c)
	err := s.ledger.RevokeDevice(c.Request.Context(), subject, c.Param(vaultIDParam), c.Param("deviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// revokeUserAccess handles DELETE /api/vaults/:vaultId/users/:userId/keys
// (OWNER gate): removes the wraps of every device the user owns on the vault.
func (s *Server) revokeUserAccess(c *gin.Context) {
	subject, _ := subjectFrom(c)
	err := s.ledger.RevokeUser(c.Request.Context(), subject, c.Param(vaultIDParam), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
