package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/auth"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID    = "user_id"
	LocalEmail     = "email"
	LocalRole      = "role"
	LocalExpiresAt = "expires_at"
)

// SessionCookie nombre por defecto de la cookie de sesión.
const SessionCookie = "token"

// AuthMiddleware valida el token de sesión y carga id, email y rol en c.Locals.
// Lee la cookie "token" y, si no existe, el header Authorization: Bearer <token>.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return authMiddleware(jwtSecret, SessionCookie)
}

// AuthMiddlewareWithCookie es AuthMiddleware con un nombre de cookie configurable.
func AuthMiddlewareWithCookie(jwtSecret, cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = SessionCookie
	}
	return authMiddleware(jwtSecret, cookieName)
}

func authMiddleware(jwtSecret, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(cookieName)
		if tokenString == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "sesión requerida"})
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
			}
			tokenString = strings.TrimSpace(parts[1])
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}

		session, err := auth.VerifyToken(jwtSecret, tokenString)
		if err != nil {
			// Firma válida pero sin rol: se deja pasar para que RequireRole responda MISSING_ROLE.
			session = sessionWithoutRole(jwtSecret, tokenString)
			if session == nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
		}
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalEmail, session.Email)
		c.Locals(LocalRole, session.Role)
		c.Locals(LocalExpiresAt, session.ExpiresAt)
		return c.Next()
	}
}

// sessionWithoutRole devuelve la sesión de un token bien firmado y vigente cuyo único
// defecto es no traer rol. Cualquier otro fallo devuelve nil.
func sessionWithoutRole(secret, token string) *entity.Session {
	claims, err := jwt.Parse(secret, token)
	if err != nil || claims.Role != "" {
		return nil
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil
	}
	return &entity.Session{UserID: userID, Email: claims.Email, ExpiresAt: claims.ExpiresAtTime()}
}

// RequireRole autoriza la petición si el rol de la sesión está entre los indicados.
// Sin roles basta con una sesión autenticada. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := GetSession(c)
		if session != nil && session.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if _, err := access.Check(session, roles...); err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "sesión inválida o expirada"})
		}
		return c.Next()
	}
}

// GetUserID devuelve el id del usuario de la sesión.
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetEmail devuelve el email de la sesión.
func GetEmail(c *fiber.Ctx) string {
	return localString(c, LocalEmail)
}

// GetRole devuelve el rol de la sesión.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

// GetSession reconstruye la sesión cargada por AuthMiddleware; nil si no hay.
func GetSession(c *fiber.Ctx) *entity.Session {
	userID := GetUserID(c)
	if userID == "" {
		return nil
	}
	exp, _ := c.Locals(LocalExpiresAt).(time.Time)
	return &entity.Session{
		UserID:    userID,
		Email:     GetEmail(c),
		Role:      GetRole(c),
		ExpiresAt: exp,
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
