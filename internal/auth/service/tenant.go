package service

import (
	"context"
	"errors"

	"github.com/slicemenu/auth/internal/auth/domain"
	"github.com/slicemenu/auth/internal/auth/store"
	"github.com/slicemenu/auth/pkg/idx"
)

// TenantService manages the businesses users belong to.
type TenantService struct {
	Store store.Store
}

// TenantParams is the validated tenant create/update payload.
type TenantParams struct {
	Name    string
	Address string
}

func (s *TenantService) Create(ctx context.Context, p TenantParams) (domain.Tenant, error) {
	t := domain.Tenant{
		ID:      idx.New().String(),
		Name:    p.Name,
		Address: p.Address,
	}
	if err := s.Store.Tenants().CreateTenant(ctx, t); err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}

func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.Store.Tenants().ListTenants(ctx)
}

func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	t, err := s.Store.Tenants().GetTenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tenant{}, ErrNotFound
		}
		return domain.Tenant{}, err
	}
	return t, nil
}

func (s *TenantService) Update(ctx context.Context, id string, p TenantParams) (domain.Tenant, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	t.Name = p.Name
	t.Address = p.Address

	if err := s.Store.Tenants().UpdateTenant(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Tenant{}, ErrNotFound
		}
		return domain.Tenant{}, err
	}
	return t, nil
}

// Delete removes a tenant. Users keep their accounts; their tenant link is
// nulled out by the schema.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	err := s.Store.Tenants().DeleteTenant(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
