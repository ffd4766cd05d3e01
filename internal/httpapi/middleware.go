package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"libman/internal/auth"
	"libman/internal/domain"
	"libman/internal/log"
	"libman/internal/model"
)

const userKey = "libman/user"

// requestID tags each request with an id and a request-scoped logger.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		ctx := log.WithFields(c.Request.Context(), logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authenticate verifies the bearer token and loads the account behind it.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondErr(c, domain.E(domain.KindUnauthorized, "missing bearer token"))
			return
		}
		claims, err := s.tokens.Parse(token)
		if err != nil {
			respondErr(c, err)
			return
		}
		user, err := s.authSvc.UserByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			respondErr(c, domain.E(domain.KindUnauthorized, "user not found"))
			return
		}
		c.Set(userKey, user)
		ctx := log.WithFields(c.Request.Context(), logrus.Fields{"user_id": user.ID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireRoles gates a route on the capability predicate.
func requireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !auth.RoleAllowed(user.Role, roles...) {
			respondErr(c, domain.E(domain.KindForbidden, "access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated account; routes behind
// authenticate() can rely on it being present.
func currentUser(c *gin.Context) model.User {
	user, _ := c.Get(userKey)
	u, _ := user.(model.User)
	return u
}
