// Package httpserver exposes the service over HTTP using gin.
package httpserver

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
)

// Claims carries the subject and realm roles of the bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Authenticate verifies the HS256 bearer token and stores subject and admin
// flag in the request context. Requests without a verifiable subject stop
// here with 401.
func Authenticate(signKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			writeError(c, errs.ErrUnauthenticated)
			return
		}
		claims := &Claims{}
		tok, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), claims,
			func(*jwt.Token) (any, error) { return signKey, nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil || !tok.Valid || claims.Subject == "" {
			writeError(c, errs.ErrUnauthenticated)
			return
		}
		admin := false
		for _, r := range claims.Roles {
			if r == "admin" {
				admin = true
			}
		}
		withSubject(c, claims.Subject, admin)
		c.Next()
	}
}

// Timeout bounds every request context so that no storage call can block
// indefinitely. Expired deadlines surface as retryable 503 responses.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logging emits one structured line per request: metadata only, no payloads.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// Recovery converts handler panics into 500 responses.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(500, errorBody{Error: "internal", Reason: "internal"})
			}
		}()
		c.Next()
	}
}
