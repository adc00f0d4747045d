package types

import "time"

// ExecutionStatus is the lifecycle state of one arbitrage execution.
type ExecutionStatus string

// Execution lifecycle: PENDING -> PREPARING -> EXECUTING -> terminal.
// CANCELLED is reachable directly from PENDING (bad recommendation or no
// free execution slot).
const (
	ExecutionPending   ExecutionStatus = "PENDING"
	ExecutionPreparing ExecutionStatus = "PREPARING"
	ExecutionExecuting ExecutionStatus = "EXECUTING"
	ExecutionCompleted ExecutionStatus = "COMPLETED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionPartial   ExecutionStatus = "PARTIAL"
	ExecutionCancelled ExecutionStatus = "CANCELLED"
)

// Terminal reports whether the status is a terminal state.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionCompleted, ExecutionFailed, ExecutionPartial, ExecutionCancelled:
		return true
	default:
		return false
	}
}

// TransactionStatus is the lifecycle state of one trade leg.
type TransactionStatus string

// Transaction lifecycle: PENDING -> SUBMITTED -> terminal.
const (
	TxPending   TransactionStatus = "PENDING"
	TxSubmitted TransactionStatus = "SUBMITTED"
	TxConfirmed TransactionStatus = "CONFIRMED"
	TxFailed    TransactionStatus = "FAILED"
	TxReverted  TransactionStatus = "REVERTED"
)

// TransactionType labels the leg direction.
type TransactionType string

// Leg directions.
const (
	TxBuy  TransactionType = "buy"
	TxSell TransactionType = "sell"
)

// Transaction is one leg of a trade. It is mutated in place by the execution
// engine as it moves through TransactionStatus, and frozen once the parent
// ExecutionResult reaches a terminal status.
type Transaction struct {
	ID            string            `json:"id"`
	Type          TransactionType   `json:"type"`
	Venue         string            `json:"venue"`
	Pair          string            `json:"pair"`
	Amount        float64           `json:"amount"`
	ExpectedPrice float64           `json:"expected_price"`
	ActualPrice   float64           `json:"actual_price,omitempty"`
	GasPriceGwei  float64           `json:"gas_price_gwei,omitempty"`
	GasLimit      uint64            `json:"gas_limit"`
	GasUsed       uint64            `json:"gas_used,omitempty"`
	Status        TransactionStatus `json:"status"`
	SubmittedAt   *time.Time        `json:"submitted_at,omitempty"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Confirmed reports whether the leg reached CONFIRMED.
func (t *Transaction) Confirmed() bool {
	return t.Status == TxConfirmed
}

// SlippagePct returns the realized slippage for a confirmed leg.
func (t *Transaction) SlippagePct() float64 {
	if t.ExpectedPrice == 0 {
		return 0
	}
	diff := t.ActualPrice - t.ExpectedPrice
	if diff < 0 {
		diff = -diff
	}
	return diff / t.ExpectedPrice * 100
}

// ExecutionResult is the terminal record of one execution. Owned exclusively
// by the engine until Status becomes terminal, then handed to the ledger and
// never mutated again.
type ExecutionResult struct {
	ExecutionID            string          `json:"execution_id"`
	StrategyID             string          `json:"strategy_id"`
	Pair                   string          `json:"pair"`
	Status                 ExecutionStatus `json:"status"`
	Transactions           []*Transaction  `json:"transactions"`
	ActualProfitUSD        *float64        `json:"actual_profit_usd,omitempty"`
	GasCostUSD             float64         `json:"gas_cost_usd"`
	ExecutionTimeSec       float64         `json:"execution_time_sec"`
	SlippagePct            float64         `json:"slippage_pct"`
	ErrorMessage           string          `json:"error_message,omitempty"`
	ProtectedExecutionUsed bool            `json:"protected_execution_used"`
	StartedAt              *time.Time      `json:"started_at,omitempty"`
	CompletedAt            *time.Time      `json:"completed_at,omitempty"`
}

// Leg returns the transaction with the given type, or nil.
func (r *ExecutionResult) Leg(txType TransactionType) *Transaction {
	for _, tx := range r.Transactions {
		if tx.Type == txType {
			return tx
		}
	}
	return nil
}

// Clone returns a deep copy of the result. The engine mutates a result until
// it reaches a terminal status, so anything observing an in-flight execution
// must work on a copy.
func (r *ExecutionResult) Clone() *ExecutionResult {
	out := *r
	if r.ActualProfitUSD != nil {
		profit := *r.ActualProfitUSD
		out.ActualProfitUSD = &profit
	}
	if r.StartedAt != nil {
		started := *r.StartedAt
		out.StartedAt = &started
	}
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		out.CompletedAt = &completed
	}
	if r.Transactions != nil {
		out.Transactions = make([]*Transaction, len(r.Transactions))
		for i, tx := range r.Transactions {
			c := *tx
			if tx.SubmittedAt != nil {
				submitted := *tx.SubmittedAt
				c.SubmittedAt = &submitted
			}
			if tx.ConfirmedAt != nil {
				confirmed := *tx.ConfirmedAt
				c.ConfirmedAt = &confirmed
			}
			out.Transactions[i] = &c
		}
	}
	return &out
}

// ConfirmedLegs returns the confirmed transactions.
func (r *ExecutionResult) ConfirmedLegs() []*Transaction {
	confirmed := make([]*Transaction, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		if tx.Confirmed() {
			confirmed = append(confirmed, tx)
		}
	}
	return confirmed
}

// LedgerStats are the running aggregates maintained by the execution ledger.
type LedgerStats struct {
	TotalExecutions       int     `json:"total_executions"`
	SuccessfulExecutions  int     `json:"successful_executions"`
	SuccessRate           float64 `json:"success_rate"`
	TotalProfitUSD        float64 `json:"total_profit_usd"`
	TotalGasSpentUSD      float64 `json:"total_gas_spent_usd"`
	NetProfitUSD          float64 `json:"net_profit_usd"`
	AvgProfitPerExecution float64 `json:"avg_profit_per_execution"`
	AvgGasPerExecution    float64 `json:"avg_gas_per_execution"`
	AvgExecutionTimeSec   float64 `json:"avg_execution_time_sec"`
	ActiveExecutions      int     `json:"active_executions"`
}
