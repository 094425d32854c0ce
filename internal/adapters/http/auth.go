package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// Claims carried in the access token.
type Claims struct {
	Role string `json:"role"` // "admin" | "employee"
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Locals keys set by AuthRequired.
const (
	localEmployeeID = "employee_id"
	localRole       = "role"
)

// LoginHandler exchanges email/password for a signed JWT.
func LoginHandler(deps *Dependencies) fiber.Handler {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type loginResponse struct {
		Token     string           `json:"token"`
		ExpiresAt time.Time        `json:"expires_at"`
		Employee  *domain.Employee `json:"employee"`
	}

	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return errBadRequest(c, "email and password are required")
		}

		e, err := deps.Employees.Authenticate(c.Context(), req.Email, req.Password)
		if err != nil {
			return errUnauthorized(c, "invalid credentials")
		}

		ttl := time.Duration(deps.Auth.TokenTTLMins) * time.Minute
		if ttl <= 0 {
			ttl = 8 * time.Hour
		}
		expiresAt := time.Now().Add(ttl)

		claims := Claims{
			Role: e.Role,
			Name: e.Name,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   e.ID,
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(deps.Auth.JWTSecret)
		if err != nil {
			return errInternal(c, "sign token")
		}

		return c.JSON(loginResponse{Token: token, ExpiresAt: expiresAt, Employee: e})
	}
}

// AuthRequired verifies the bearer token and stores employee_id and role in
// request locals.
func AuthRequired(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return errUnauthorized(c, "missing bearer token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		var claims Claims
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return deps.Auth.JWTSecret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			return errUnauthorized(c, "invalid or expired token")
		}

		c.Locals(localEmployeeID, claims.Subject)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

// AdminOnly rejects non-admin tokens. Must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(localRole).(string); role != "admin" {
			return errForbidden(c, "admin role required")
		}
		return c.Next()
	}
}

// employeeID returns the authenticated employee ID from locals.
func employeeID(c *fiber.Ctx) string {
	id, _ := c.Locals(localEmployeeID).(string)
	return id
}
