package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y verificación de sesión.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	store    storetimeout.Limit
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// WithStoreTimeout acota la búsqueda del usuario en el login.
func (uc *AuthUseCase) WithStoreTimeout(d time.Duration) *AuthUseCase {
	uc.store = storetimeout.Limit(d)
	return uc
}

// Login verifica email/password y emite el token de sesión.
// Email inexistente y password incorrecto devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, string, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: email y password son obligatorios", domain.ErrInvalidInput)
	}
	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", storetimeout.Error(ctx, err)
	}
	if user == nil {
		return nil, "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}
	if !entity.IsValidRole(user.Role) {
		return nil, "", domain.ErrForbidden
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, "", err
	}
	return &dto.LoginResponse{
		Success:   true,
		Role:      user.Role,
		User:      ToUserResponse(user),
		ExpiresAt: exp,
	}, token, nil
}

// VerifyToken decodifica el token y lo valida como sesión autenticada.
func (uc *AuthUseCase) VerifyToken(token string) (*entity.Session, error) {
	return VerifyToken(uc.jwtCfg.Secret, token)
}

// VerifyToken decodifica y valida un token con el secreto indicado.
// Cualquier fallo (firma, expiración, rol) es ErrUnauthenticated.
func VerifyToken(secret, token string) (*entity.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := jwt.Parse(secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return access.Check(&entity.Session{
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAtTime(),
	})
}

// NormalizeEmail recorta espacios y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToUserResponse convierte la entidad a DTO (sin hash de password).
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
