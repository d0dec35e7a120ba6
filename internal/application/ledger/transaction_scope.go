package ledger

import (
	"context"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/partner"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Payment allocation relies on this: either every touched
// receivable, the payment and the customer projection are saved, or none are.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// ReceivableRepo returns the receivable repository scoped to the current transaction
	ReceivableRepo() ledger.ReceivableRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() ledger.PaymentRepository
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() partner.CustomerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	receivableRepo ledger.ReceivableRepository
	paymentRepo    ledger.PaymentRepository
	customerRepo   partner.CustomerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	receivableRepo ledger.ReceivableRepository,
	paymentRepo ledger.PaymentRepository,
	customerRepo partner.CustomerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		customerRepo:   customerRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReceivableRepo returns the receivable repository.
func (s *NoOpTransactionScope) ReceivableRepo() ledger.ReceivableRepository {
	return s.receivableRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository {
	return s.paymentRepo
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.customerRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
