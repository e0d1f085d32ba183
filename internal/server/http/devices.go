package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// createOrUpdateDevice handles PUT /api/devices/:deviceId. The device is
// owned by the authenticated subject; ids held by others are rejected.
func (s *Server) createOrUpdateDevice(c *gin.Context) {
	subject, _ := subjectFrom(c)
	var dto deviceDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err))
		return
	}
	d := model.Device{
		ID:             c.Param("deviceId"),
		Name:           dto.Name,
		Type:           dto.Type,
		PublicKey:      dto.PublicKey,
		UserPrivateKey: dto.UserPrivateKey,
	}
	saved, err := s.devices.RegisterOrUpdate(c.Request.Context(), subject, d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deviceToDto(saved))
}

// getDevice handles GET /api/devices/:deviceId for the owning user.
func (s *Server) getDevice(c *gin.Context) {
	subject, _ := subjectFrom(c)
	d, err := s.devices.Get(c.Request.Context(), subject, c.Param("deviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceToDto(d))
}

// removeDevice handles DELETE /api/devices/:deviceId; key wraps cascade.
func (s *Server) removeDevice(c *gin.Context) {
	subject, _ := subjectFrom(c)
	if err := s.devices.Remove(c.Request.Context(), subject, c.Param("deviceId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// legacyAccessTokens handles GET /api/devices/:deviceId/legacy-access-tokens.
// Deprecated read-only surface for pre-migration clients.
func (s *Server) legacyAccessTokens(c *gin.Context) {
	subject, _ := subjectFrom(c)
	tokens, err := s.devices.LegacyTokens(c.Request.Context(), subject, c.Param("deviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
