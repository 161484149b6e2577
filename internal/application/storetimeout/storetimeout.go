// Package storetimeout acota cada unidad de trabajo contra la base (STORE_TIMEOUT) y
// clasifica el vencimiento del plazo como domain.ErrTransient.
package storetimeout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
)

// Limit plazo máximo de una unidad de trabajo; 0 o negativo = sin límite.
type Limit time.Duration

// Context deriva el contexto acotado por el plazo. Siempre debe llamarse cancel.
func (l Limit) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if l <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(l))
}

// Error marca como transitorio un error producido por vencimiento del plazo.
// Cualquier otro error se devuelve sin cambios.
func Error(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, domain.ErrTransient) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}
