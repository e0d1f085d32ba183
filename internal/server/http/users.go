package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// me handles GET /api/users/me: the subject's profile including owned devices.
func (s *Server) me(c *gin.Context) {
	subject, _ := subjectFrom(c)
	authority, devices, err := s.devices.Profile(c.Request.Context(), subject)
	if err != nil {
		writeError(c, err)
		return
	}
	dto := userDto{
		ID:         authority.ID,
		Name:       authority.Name,
		PictureURL: authority.PictureURL,
		Devices:    make([]deviceDto, 0, len(devices)),
	}
	for i := range devices {
		dto.Devices = append(dto.Devices, deviceToDto(&devices[i]))
	}
	c.JSON(http.StatusOK, dto)
}
