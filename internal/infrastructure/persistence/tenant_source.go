package persistence

import (
	"context"

	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantSource lists tenants known to the ledger.
// Tenants are derived from the receivable table; a tenant with no
// receivables has nothing to sweep.
type GormTenantSource struct {
	db *gorm.DB
}

// NewGormTenantSource creates a new GormTenantSource
func NewGormTenantSource(db *gorm.DB) *GormTenantSource {
	return &GormTenantSource{db: db}
}

// ListTenantIDs returns the distinct tenant IDs that own at least one receivable
func (s *GormTenantSource) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := s.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
