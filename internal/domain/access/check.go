// Package access clasifica una sesión como autorizada o no para una operación protegida.
//
// El orden de evaluación es fijo: primero la validez de la sesión (ErrUnauthenticated),
// después el rol (ErrForbidden). Una sesión ausente o expirada nunca se reporta como
// ErrForbidden, aunque la operación no exija un rol concreto.
package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// Check valida la sesión y, si se indican roles, que el rol de la sesión esté entre ellos.
// Sin roles requeridos basta con cualquier sesión autenticada.
func Check(session *entity.Session, required ...string) (*entity.Session, error) {
	return CheckAt(time.Now(), session, required...)
}

// CheckAt es Check con un instante de referencia explícito.
func CheckAt(now time.Time, session *entity.Session, required ...string) (*entity.Session, error) {
	if session == nil || session.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: sesión expirada", domain.ErrUnauthenticated)
	}
	if !entity.IsValidRole(session.Role) {
		return nil, fmt.Errorf("%w: rol ausente o desconocido", domain.ErrUnauthenticated)
	}
	if len(required) == 0 {
		return session, nil
	}
	for _, r := range required {
		if session.Role == r {
			return session, nil
		}
	}
	return nil, fmt.Errorf("%w: rol %s no autorizado", domain.ErrForbidden, session.Role)
}

// CheckOwner autoriza operar sobre un recurso de ownerEmail: un admin opera sobre
// cualquiera, un empleado solo sobre los suyos. Asume una sesión ya validada con Check.
func CheckOwner(session *entity.Session, ownerEmail string) error {
	if session == nil {
		return domain.ErrUnauthenticated
	}
	if session.Role == entity.RoleAdmin || strings.EqualFold(strings.TrimSpace(ownerEmail), session.Email) {
		return nil
	}
	return fmt.Errorf("%w: el recurso pertenece a otro empleado", domain.ErrForbidden)
}
