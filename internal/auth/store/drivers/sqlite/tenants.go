package sqlite

import (
	"context"
	"time"

	"github.com/slicemenu/auth/internal/auth/domain"
)

type tenantsRepo struct {
	db dbtx
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Address, now, now,
	)
	return err
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM tenants WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM tenants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenants SET name = ?, address = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Address, time.Now().UTC(), t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
