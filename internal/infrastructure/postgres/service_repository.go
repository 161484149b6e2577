package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

const serviceColumns = `id, grid_type, product_category, product_name, rate, quantity, created_at, updated_at`

// ServiceRepo implementación del catálogo sobre PostgreSQL.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

// Create persiste una entrada del catálogo.
func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	query := `INSERT INTO services (` + serviceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.GridType, s.Category, s.ProductName, s.Rate, s.Quantity, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service %s: %w", s.ProductName, domain.ErrDuplicate)
		}
		return wrapErr("insert service", err)
	}
	return nil
}

// GetByID obtiene una entrada; (nil, nil) si no existe.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanService(r.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get service", err)
	}
	return s, nil
}

// Update reescribe los campos editables.
func (r *ServiceRepo) Update(ctx context.Context, s *entity.Service) error {
	query := `
		UPDATE services
		SET grid_type        = $2,
		    product_category = $3,
		    product_name     = $4,
		    rate             = $5,
		    quantity         = $6,
		    updated_at       = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.GridType, s.Category, s.ProductName, s.Rate, s.Quantity, s.UpdatedAt)
	if err != nil {
		return wrapErr("update service", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve el catálogo, más recientes primero.
func (r *ServiceRepo) List(ctx context.Context, f repository.ServiceFilter) ([]*entity.Service, error) {
	var (
		where []string
		args  []any
	)
	if f.GridType != "" {
		args = append(args, f.GridType)
		where = append(where, fmt.Sprintf("grid_type = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("product_category = $%d", len(args)))
	}
	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list services", err)
	}
	defer rows.Close()

	var list []*entity.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, wrapErr("scan service", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list services", err)
	}
	return list, nil
}

func scanService(row pgx.Row) (*entity.Service, error) {
	var s entity.Service
	if err := row.Scan(&s.ID, &s.GridType, &s.Category, &s.ProductName, &s.Rate, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
