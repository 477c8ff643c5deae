package worker

// Task types. TypeLedgerEvent is mirrored in internal/services so the
// services package does not need to depend on the worker.
const (
	TypeLedgerEvent = "ledger-event"
)
