package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func paymentRows(paymentID, tenantID, customerID uuid.UUID, number string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "version", "payment_number", "customer_id",
		"amount", "allocated_amount", "credited_amount",
		"payment_method", "payment_reference", "received_at", "allocations",
	}).AddRow(
		paymentID, tenantID, 1, number, customerID,
		"250.0000", "250.0000", "0.0000",
		"BANK_TRANSFER", "TXN-42", time.Now(), []byte("[]"),
	)
}

func TestGormPaymentRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, paymentID, 1).
			WillReturnRows(paymentRows(paymentID, tenantID, customerID, "PAY-20260831-00001"))

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, "PAY-20260831-00001", payment.PaymentNumber)
		assert.Equal(t, customerID, payment.CustomerID)
		assert.True(t, payment.Amount.Equal(payment.AllocatedAmount.Add(payment.CreditedAmount)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments"`).
			WithArgs(tenantID, paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByCustomer(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	customerID := uuid.New()
	paymentID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND customer_id = \$2 ORDER BY received_at DESC`).
		WithArgs(tenantID, customerID).
		WillReturnRows(paymentRows(paymentID, tenantID, customerID, "PAY-20260831-00003"))

	payments, err := repo.FindByCustomer(context.Background(), tenantID, customerID, ledger.PaymentFilter{})

	assert.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, paymentID, payments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_CountForTenant(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForTenant(context.Background(), tenantID, ledger.PaymentFilter{})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_GeneratePaymentNumber(t *testing.T) {
	t.Run("starts at one for the day", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		prefix := fmt.Sprintf("PAY-%s-", time.Now().Format("20060102"))

		mock.ExpectQuery(`SELECT "payment_number" FROM "payments"`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"payment_number"}))

		number, err := repo.GeneratePaymentNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the daily sequence", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		prefix := fmt.Sprintf("PAY-%s-", time.Now().Format("20060102"))

		mock.ExpectQuery(`SELECT "payment_number" FROM "payments"`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"payment_number"}).AddRow(prefix + "00012"))

		number, err := repo.GeneratePaymentNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00013", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
