package postgres

import (
	"context"
	"fmt"
)

type LicenseRepository struct {
	db *DB
}

func NewLicenseRepository(db *DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// HasValidLicense reports whether the requester holds an unexpired license
// of the given category.
func (r *LicenseRepository) HasValidLicense(ctx context.Context, requesterID, category string) (bool, error) {
	var held bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM licenses
			WHERE user_id = $1
			  AND category = $2
			  AND expires_at >= CURRENT_DATE
		)`, requesterID, category).Scan(&held)
	if err != nil {
		return false, fmt.Errorf("check license: %w", err)
	}
	return held, nil
}
