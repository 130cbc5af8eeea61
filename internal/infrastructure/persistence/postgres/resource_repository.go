package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

type ResourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, kind, name, unit_price, stock, approved, license_category
		FROM resources WHERE id = $1`, id)

	var res domain.Resource
	var kind string
	err := row.Scan(&res.ID, &kind, &res.Name, &res.UnitPrice, &res.Stock, &res.Approved, &res.LicenseCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewResourceUnavailableError(id)
		}
		return nil, fmt.Errorf("scan resource: %w", err)
	}
	res.Kind = domain.ResourceKind(kind)
	return &res, nil
}
