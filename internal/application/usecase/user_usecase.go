package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/auth"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// UserUseCase aplica reglas de negocio para usuarios (alta y listado por un admin).
type UserUseCase struct {
	repo  repository.UserRepository
	cost  int
	store storetimeout.Limit
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost cambia el costo de bcrypt (tests y seeds).
func (uc *UserUseCase) WithHashCost(cost int) *UserUseCase {
	uc.cost = cost
	return uc
}

// WithStoreTimeout acota cada operación contra el repositorio.
func (uc *UserUseCase) WithStoreTimeout(d time.Duration) *UserUseCase {
	uc.store = storetimeout.Limit(d)
	return uc
}

// Create crea un usuario con password hasheado. Rol vacío = employee.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := auth.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleEmployee
	}
	if !entity.IsValidRole(role) {
		return nil, fmt.Errorf("%w: role debe ser %s o %s", domain.ErrInvalidInput, entity.RoleAdmin, entity.RoleEmployee)
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, storetimeout.Error(ctx, err)
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// List devuelve todos los usuarios.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}
