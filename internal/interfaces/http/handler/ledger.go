package handler

import (
	"time"

	ledgerapp "github.com/erp/receivables/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles receivable, payment and aging API endpoints
type LedgerHandler struct {
	BaseHandler
	issuanceService   *ledgerapp.IssuanceService
	allocationService *ledgerapp.AllocationService
	agingService      *ledgerapp.AgingService
	balanceService    *ledgerapp.BalanceService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(
	issuanceService *ledgerapp.IssuanceService,
	allocationService *ledgerapp.AllocationService,
	agingService *ledgerapp.AgingService,
	balanceService *ledgerapp.BalanceService,
) *LedgerHandler {
	return &LedgerHandler{
		issuanceService:   issuanceService,
		allocationService: allocationService,
		agingService:      agingService,
		balanceService:    balanceService,
	}
}

// ===================== Receivable Handlers =====================

// IssueReceivable creates a receivable for a delivered order. Reposting the
// same origin reference returns the existing receivable with a 200 instead of
// a 201.
func (h *LedgerHandler) IssueReceivable(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.IssueReceivableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.issuanceService.Issue(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// ListReceivables returns a paginated list of receivables
func (h *LedgerHandler) ListReceivables(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.ReceivableListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	receivables, total, err := h.issuanceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, receivables, total, filter.Page, filter.PageSize)
}

// GetReceivableByID returns a single receivable
func (h *LedgerHandler) GetReceivableByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	receivableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receivable ID format")
		return
	}

	receivable, err := h.issuanceService.GetByID(c.Request.Context(), tenantID, receivableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receivable)
}

// WriteOffReceivable waives part or all of a receivable's outstanding balance
func (h *LedgerHandler) WriteOffReceivable(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	receivableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid receivable ID format")
		return
	}

	var req ledgerapp.WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	receivable, err := h.issuanceService.WriteOff(c.Request.Context(), tenantID, receivableID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receivable)
}

// ===================== Payment Handlers =====================

// ReceivePayment records a payment and allocates it across the customer's
// open receivables
func (h *LedgerHandler) ReceivePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.ReceivePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.allocationService.ReceivePayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListPayments returns a paginated list of payments
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	payments, total, err := h.allocationService.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// GetPaymentByID returns a single payment with its allocations
func (h *LedgerHandler) GetPaymentByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.allocationService.GetPaymentByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ===================== Aging Handlers =====================

// GetAgingReport returns outstanding receivables bucketed by days past due.
// Accepts an optional as_of query parameter (YYYY-MM-DD); defaults to now.
func (h *LedgerHandler) GetAgingReport(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		return
	}

	report, err := h.agingService.Report(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// TriggerOverdueSweep runs an overdue sweep for the tenant immediately
func (h *LedgerHandler) TriggerOverdueSweep(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		return
	}

	result, err := h.agingService.Sweep(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ===================== Balance Handlers =====================

// GetCustomerBalance returns the customer's debt and credit position
func (h *LedgerHandler) GetCustomerBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// VerifyCustomerBalance checks the incremental debt projection against a full
// recompute from receivables
func (h *LedgerHandler) VerifyCustomerBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	verification, err := h.balanceService.Verify(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, verification)
}

// RecomputeCustomerBalance rebuilds the debt projection from receivables
func (h *LedgerHandler) RecomputeCustomerBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	verification, err := h.balanceService.Recompute(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, verification)
}

// parseAsOf parses an optional YYYY-MM-DD date, defaulting to now
func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receivables := rg.Group("/receivables")
	{
		receivables.POST("", h.IssueReceivable)
		receivables.GET("", h.ListReceivables)
		receivables.GET("/:id", h.GetReceivableByID)
		receivables.POST("/:id/write-off", h.WriteOffReceivable)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.ReceivePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPaymentByID)
	}

	aging := rg.Group("/aging")
	{
		aging.GET("/report", h.GetAgingReport)
		aging.POST("/sweep", h.TriggerOverdueSweep)
	}

	balances := rg.Group("/customers/:id/balance")
	{
		balances.GET("", h.GetCustomerBalance)
		balances.GET("/verify", h.VerifyCustomerBalance)
		balances.POST("/recompute", h.RecomputeCustomerBalance)
	}
}
