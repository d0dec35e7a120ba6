package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// unsettledStatuses are the statuses that still carry an outstanding balance.
var unsettledStatuses = []ledger.ReceivableStatus{
	ledger.ReceivableStatusOpen,
	ledger.ReceivableStatusPartial,
	ledger.ReceivableStatusOverdue,
}

// GormReceivableRepository implements ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

// FindByID finds a receivable by its ID
func (r *GormReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a receivable by ID for a specific tenant
func (r *GormReceivableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOriginReference finds a receivable by its origin reference for a tenant
func (r *GormReceivableRepository) FindByOriginReference(ctx context.Context, tenantID uuid.UUID, originReference string) (*ledger.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND origin_reference = ?", tenantID, originReference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all receivables for a tenant with filtering
func (r *GormReceivableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ReceivableFilter) ([]ledger.Receivable, error) {
	var receivableModels []models.ReceivableModel
	query := r.db.WithContext(ctx).Model(&models.ReceivableModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyReceivableFilter(query, filter)

	if err := query.Find(&receivableModels).Error; err != nil {
		return nil, err
	}
	receivables := make([]ledger.Receivable, len(receivableModels))
	for i, model := range receivableModels {
		receivables[i] = *model.ToDomain()
	}
	return receivables, nil
}

// FindAllocatable finds receivables with an outstanding balance for a customer.
// The ordering drives the allocation waterfall, so it must stay stable:
// due date, then invoice date, then ID.
func (r *GormReceivableRepository) FindAllocatable(ctx context.Context, tenantID, customerID uuid.UUID) ([]ledger.Receivable, error) {
	var receivableModels []models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ? AND status IN ?", tenantID, customerID, unsettledStatuses).
		Order("due_date ASC, invoice_date ASC, id ASC").
		Find(&receivableModels).Error; err != nil {
		return nil, err
	}
	receivables := make([]ledger.Receivable, len(receivableModels))
	for i, model := range receivableModels {
		receivables[i] = *model.ToDomain()
	}
	return receivables, nil
}

// FindDueBefore finds open and partial receivables whose due date is before the given time
func (r *GormReceivableRepository) FindDueBefore(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]ledger.Receivable, error) {
	var receivableModels []models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, asOf,
			[]ledger.ReceivableStatus{ledger.ReceivableStatusOpen, ledger.ReceivableStatusPartial}).
		Order("due_date ASC").
		Find(&receivableModels).Error; err != nil {
		return nil, err
	}
	receivables := make([]ledger.Receivable, len(receivableModels))
	for i, model := range receivableModels {
		receivables[i] = *model.ToDomain()
	}
	return receivables, nil
}

// FindUnsettled finds all receivables that still carry an outstanding balance for a tenant
func (r *GormReceivableRepository) FindUnsettled(ctx context.Context, tenantID uuid.UUID) ([]ledger.Receivable, error) {
	var receivableModels []models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID, unsettledStatuses).
		Order("due_date ASC").
		Find(&receivableModels).Error; err != nil {
		return nil, err
	}
	receivables := make([]ledger.Receivable, len(receivableModels))
	for i, model := range receivableModels {
		receivables[i] = *model.ToDomain()
	}
	return receivables, nil
}

// Save creates or updates a receivable
func (r *GormReceivableRepository) Save(ctx context.Context, receivable *ledger.Receivable) error {
	model := models.ReceivableModelFromDomain(receivable)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormReceivableRepository) SaveWithLock(ctx context.Context, receivable *ledger.Receivable) error {
	model := models.ReceivableModelFromDomain(receivable)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", receivable.ID, receivable.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// CountForTenant counts receivables for a tenant
func (r *GormReceivableRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ReceivableFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ReceivableModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyReceivableFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstandingByCustomer calculates total outstanding for a customer.
// Written-off receivables are excluded; settled ones contribute zero.
func (r *GormReceivableRepository) SumOutstandingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Select("COALESCE(SUM(outstanding_amount), 0) as total").
		Where("tenant_id = ? AND customer_id = ? AND status IN ?", tenantID, customerID, unsettledStatuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByOriginReference checks if a receivable exists for the given origin reference
func (r *GormReceivableRepository) ExistsByOriginReference(ctx context.Context, tenantID uuid.UUID, originReference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Where("tenant_id = ? AND origin_reference = ?", tenantID, originReference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateReceivableNumber generates a unique receivable number
func (r *GormReceivableRepository) GenerateReceivableNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: AR-YYYYMMDD-XXXXX
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("AR-%s-", date)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.ReceivableModel{}).
		Select("receivable_number").
		Where("tenant_id = ? AND receivable_number LIKE ?", tenantID, prefix+"%").
		Order("receivable_number DESC").
		Limit(1).
		Pluck("receivable_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyReceivableFilter applies filter options to the query
func (r *GormReceivableRepository) applyReceivableFilter(query *gorm.DB, filter ledger.ReceivableFilter) *gorm.DB {
	query = r.applyReceivableFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyReceivableFilterWithoutPagination applies filter options without pagination
func (r *GormReceivableRepository) applyReceivableFilterWithoutPagination(query *gorm.DB, filter ledger.ReceivableFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("outstanding_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("outstanding_amount <= ?", *filter.MaxAmount)
	}

	return query
}

// Ensure GormReceivableRepository implements ReceivableRepository
var _ ledger.ReceivableRepository = (*GormReceivableRepository)(nil)
