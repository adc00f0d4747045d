package execution

import (
	"errors"
	"sort"
	"sync"

	"github.com/mvelez/dexarb/pkg/types"
)

// ErrCapacityExceeded is returned by Admit when every execution slot is
// taken. Callers are expected to retry later; there is no queue.
var ErrCapacityExceeded = errors.New("max concurrent executions reached")

// Ledger tracks active executions by identifier, keeps the append-only
// history of terminal results, and maintains the running aggregates. The
// admission check-and-register happens under one lock so concurrent calls
// can never both observe a free slot.
//
// The engine keeps mutating a live result until it is terminal, so the
// active map holds snapshots, refreshed via Update at status transitions.
// Everything the ledger hands out is either such a snapshot or a frozen
// history entry; readers never see a result the engine still writes to.
type Ledger struct {
	mu            sync.Mutex
	active        map[string]*types.ExecutionResult
	history       []*types.ExecutionResult
	maxConcurrent int

	totalExecutions      int
	successfulExecutions int
	totalProfitUSD       float64
	totalGasSpentUSD     float64
	avgExecutionTimeSec  float64
}

// NewLedger creates a ledger with the given concurrency cap.
func NewLedger(maxConcurrent int) *Ledger {
	return &Ledger{
		active:        make(map[string]*types.ExecutionResult),
		maxConcurrent: maxConcurrent,
	}
}

// Admit registers a pending execution if a slot is free. Check and register
// are one atomic step.
func (l *Ledger) Admit(result *types.ExecutionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.active) >= l.maxConcurrent {
		return ErrCapacityExceeded
	}

	l.active[result.ExecutionID] = result.Clone()
	ActiveExecutions.Set(float64(len(l.active)))
	return nil
}

// Update refreshes the snapshot of an in-flight execution. The engine calls
// it at status transitions; unknown ids are ignored.
func (l *Ledger) Update(result *types.ExecutionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.active[result.ExecutionID]; ok {
		l.active[result.ExecutionID] = result.Clone()
	}
}

// Finalize moves a terminal result out of the active map, appends it to
// history and folds it into the aggregates. Results that were never admitted
// (admission rejections) are appended and counted all the same, so the
// ledger never leaks an execution that neither completed nor failed.
func (l *Ledger) Finalize(result *types.ExecutionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.active, result.ExecutionID)
	ActiveExecutions.Set(float64(len(l.active)))

	l.history = append(l.history, result)

	l.totalExecutions++
	if result.Status == types.ExecutionCompleted {
		l.successfulExecutions++
		if result.ActualProfitUSD != nil {
			l.totalProfitUSD += *result.ActualProfitUSD
		}
		l.totalGasSpentUSD += result.GasCostUSD

		n := float64(l.successfulExecutions)
		l.avgExecutionTimeSec = (l.avgExecutionTimeSec*(n-1) + result.ExecutionTimeSec) / n
	}
}

// GetStatus returns the execution with the given id, checking the active map
// first and then history. Active entries are the ledger's own snapshots and
// never mutated after being stored, so sharing them is safe.
func (l *Ledger) GetStatus(executionID string) (*types.ExecutionResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if result, ok := l.active[executionID]; ok {
		return result, true
	}
	for _, result := range l.history {
		if result.ExecutionID == executionID {
			return result, true
		}
	}
	return nil, false
}

// GetRecent returns up to limit executions, active ones included, sorted by
// StartedAt descending. A missing StartedAt sorts as earliest.
func (l *Ledger) GetRecent(limit int) []*types.ExecutionResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := make([]*types.ExecutionResult, 0, len(l.active)+len(l.history))
	for _, result := range l.active {
		all = append(all, result)
	}
	all = append(all, l.history...)

	sort.SliceStable(all, func(i, j int) bool {
		si, sj := all[i].StartedAt, all[j].StartedAt
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return si.After(*sj)
		}
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// ActiveCount returns how many executions are in flight.
func (l *Ledger) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// Stats returns the running aggregate metrics.
func (l *Ledger) Stats() types.LedgerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := types.LedgerStats{
		TotalExecutions:      l.totalExecutions,
		SuccessfulExecutions: l.successfulExecutions,
		TotalProfitUSD:       l.totalProfitUSD,
		TotalGasSpentUSD:     l.totalGasSpentUSD,
		NetProfitUSD:         l.totalProfitUSD - l.totalGasSpentUSD,
		AvgExecutionTimeSec:  l.avgExecutionTimeSec,
		ActiveExecutions:     len(l.active),
	}

	if l.totalExecutions > 0 {
		stats.SuccessRate = float64(l.successfulExecutions) / float64(l.totalExecutions)
	}
	// Profit and gas only accumulate on completed executions, so their
	// averages divide by the successful count.
	if l.successfulExecutions > 0 {
		stats.AvgProfitPerExecution = l.totalProfitUSD / float64(l.successfulExecutions)
		stats.AvgGasPerExecution = l.totalGasSpentUSD / float64(l.successfulExecutions)
	}

	return stats
}
