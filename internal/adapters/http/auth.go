package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pokedex/internal/auth"
	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/usecases"
	"github.com/samirrijal/pokedex/internal/pkg/logging"
	"github.com/samirrijal/pokedex/internal/pkg/metrics"
)

const (
	localClaims = "claims"
	localUser   = "user"
)

// RequireBody rejects push requests whose JSON body is absent or empty
// ("", null, {} or []). It runs ahead of authentication.
func RequireBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := bytes.TrimSpace(c.Body())
		if len(body) == 0 {
			metrics.PushDenied.WithLabelValues(codeNoData).Inc()
			return errNoData(c)
		}

		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return errBadRequest(c, codeBadJSON, "request body is not valid JSON: "+err.Error())
		}
		if isEmptyJSON(v) {
			metrics.PushDenied.WithLabelValues(codeNoData).Inc()
			return errNoData(c)
		}
		return c.Next()
	}
}

func isEmptyJSON(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}

// BearerAuth verifies the Authorization bearer token and stores its claims.
func BearerAuth(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, found := strings.Cut(header, " ")
		if header == "" {
			metrics.PushDenied.WithLabelValues(codeCredentialsRequired).Inc()
			return errUnauthorized(c, codeCredentialsRequired, "No authorization token was found")
		}
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			metrics.PushDenied.WithLabelValues(codeCredentialsRequired).Inc()
			return errUnauthorized(c, codeCredentialsRequired, "Format is Authorization: Bearer [token]")
		}

		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			metrics.PushDenied.WithLabelValues(codeInvalidToken).Inc()
			return errUnauthorized(c, codeInvalidToken, err.Error())
		}

		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// RequireRole resolves the caller through the user directory and checks role.
// Must run after BearerAuth.
func RequireRole(users *usecases.UserService, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(localClaims).(*auth.Claims)
		if !ok {
			return errUnauthorized(c, codeCredentialsRequired, "No authorization token was found")
		}

		ctx := c.UserContext()
		user, err := users.Authorize(ctx, claims.UserID(), role)
		switch {
		case err == nil:
			c.Locals(localUser, user)
			c.SetUserContext(logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", user.ID)))
			return c.Next()
		case errors.Is(err, domain.ErrRoleDenied):
			metrics.PushDenied.WithLabelValues(codeRole).Inc()
			return errUnauthorized(c, codeRole, err.Error())
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.PushDenied.WithLabelValues(codeUser).Inc()
			return errUnauthorized(c, codeUser, "the authenticated user does not exist")
		default:
			logging.FromContext(ctx).Error("resolve user failed", "error", err)
			return errDB(c, err)
		}
	}
}

// currentUser returns the user stored by RequireRole.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}
