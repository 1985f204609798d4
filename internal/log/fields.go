package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldAccountID   = "account_id"
	FieldCategoryID  = "category_id"
	FieldBudgetID    = "budget_id"
	FieldTxID        = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldCacheKey    = "cache_key"
	FieldCacheGroup  = "cache_group"
	FieldAttempt     = "attempt"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentLedger    = "ledger"
	ComponentBudget    = "budget"
	ComponentAnalytics = "analytics"
	ComponentCache     = "cache"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
)

// Standard operation names.
const (
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpList        = "list"
	OpBulkCreate  = "bulk_create"
	OpRecalculate = "recalculate"
	OpProgress    = "progress"
	OpOverview    = "overview"
	OpInvalidate  = "invalidate"
	OpExport      = "export"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
