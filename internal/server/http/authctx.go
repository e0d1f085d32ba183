package httpserver

import "github.com/gin-gonic/gin"

const (
	subjectKey = "hub.subject"
	adminKey   = "hub.admin"
)

// withSubject stores the authenticated subject and its admin flag in the
// request context.
func withSubject(c *gin.Context, subject string, admin bool) {
	c.Set(subjectKey, subject)
	c.Set(adminKey, admin)
}

// subjectFrom fetches the authenticated subject from the request context.
func subjectFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// isAdmin reports whether the authenticated subject carries the admin role.
func isAdmin(c *gin.Context) bool {
	v, ok := c.Get(adminKey)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
