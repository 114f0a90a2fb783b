package directory

import (
	"context"
	"database/sql"
	"errors"

	"bookwise/internal/apperr"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Every lookup is scoped to the organization in the WHERE clause. A record
// that exists under another organization is reported as not found, never
// silently rescoped.

func (r *repository) GetServiceByID(ctx context.Context, organizationID, serviceID int64) (*Service, error) {
	query := `
		SELECT id, organization_id, name, duration_minutes, capacity, is_class, price_cents
		FROM services
		WHERE id = $1 AND organization_id = $2
	`

	var svc Service
	err := r.db.GetContext(ctx, &svc, query, serviceID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "service not found")
	}
	if err != nil {
		return nil, err
	}

	return &svc, nil
}

func (r *repository) GetResourceByID(ctx context.Context, organizationID, resourceID int64) (*Resource, error) {
	query := `
		SELECT id, organization_id, name, type
		FROM resources
		WHERE id = $1 AND organization_id = $2
	`

	var res Resource
	err := r.db.GetContext(ctx, &res, query, resourceID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "resource not found")
	}
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetLocationByID(ctx context.Context, organizationID, locationID int64) (*Location, error) {
	query := `
		SELECT id, organization_id, name
		FROM locations
		WHERE id = $1 AND organization_id = $2
	`

	var loc Location
	err := r.db.GetContext(ctx, &loc, query, locationID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "location not found")
	}
	if err != nil {
		return nil, err
	}

	return &loc, nil
}

func (r *repository) GetUserByID(ctx context.Context, organizationID, userID int64) (*User, error) {
	query := `
		SELECT id, organization_id, first_name, last_name, email, phone, role, created_at
		FROM users
		WHERE id = $1 AND organization_id = $2
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, userID, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
