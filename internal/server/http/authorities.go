package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// Identity-sync ingestion surface, admin only. Users, groups and group
// memberships are facts supplied by the upstream provider.

// upsertAuthority handles PUT /api/authorities/:authorityId.
func (s *Server) upsertAuthority(c *gin.Context) {
	var dto authorityDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err))
		return
	}
	a := model.Authority{
		ID:         c.Param("authorityId"),
		Name:       dto.Name,
		PictureURL: dto.PictureURL,
		IsGroup:    dto.Group,
	}
	if err := s.authorities.Upsert(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// addGroupMember handles PUT /api/authorities/:authorityId/members/:userId.
func (s *Server) addGroupMember(c *gin.Context) {
	err := s.authorities.AddGroupMember(c.Request.Context(), c.Param("authorityId"), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// removeGroupMember handles DELETE /api/authorities/:authorityId/members/:userId.
func (s *Server) removeGroupMember(c *gin.Context) {
	err := s.authorities.RemoveGroupMember(c.Request.Context(), c.Param("authorityId"), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// seats handles GET /api/admin/seats: occupied license seats.
func (s *Server) seats(c *gin.Context) {
	n, err := s.resolver.SeatCount(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatsDto{Used: n})
}
