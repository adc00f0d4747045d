package execution

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
)

func terminalResult(id string, status types.ExecutionStatus, profit float64, startedAt time.Time) *types.ExecutionResult {
	r := &types.ExecutionResult{
		ExecutionID:      id,
		Pair:             "WETH/USDC",
		Status:           status,
		GasCostUSD:       10.0,
		ExecutionTimeSec: 1.5,
		StartedAt:        &startedAt,
	}
	if status == types.ExecutionCompleted {
		r.ActualProfitUSD = &profit
	}
	return r
}

func TestLedgerAdmitCap(t *testing.T) {
	l := NewLedger(2)

	if err := l.Admit(&types.ExecutionResult{ExecutionID: "a"}); err != nil {
		t.Fatalf("unexpected admit error: %v", err)
	}
	if err := l.Admit(&types.ExecutionResult{ExecutionID: "b"}); err != nil {
		t.Fatalf("unexpected admit error: %v", err)
	}
	if err := l.Admit(&types.ExecutionResult{ExecutionID: "c"}); err != ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// Finalizing one frees a slot.
	l.Finalize(terminalResult("a", types.ExecutionFailed, 0, time.Now()))
	if err := l.Admit(&types.ExecutionResult{ExecutionID: "c"}); err != nil {
		t.Fatalf("expected free slot after finalize, got %v", err)
	}
}

func TestLedgerAdmitConcurrent(t *testing.T) {
	const maxSlots = 3
	l := NewLedger(maxSlots)

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := l.Admit(&types.ExecutionResult{ExecutionID: fmt.Sprintf("exec-%d", i)})
			if err == nil {
				admitted <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != maxSlots {
		t.Errorf("expected exactly %d admissions, got %d", maxSlots, count)
	}
	if l.ActiveCount() != maxSlots {
		t.Errorf("expected %d active, got %d", maxSlots, l.ActiveCount())
	}
}

func TestLedgerStats(t *testing.T) {
	l := NewLedger(3)
	now := time.Now()

	l.Finalize(terminalResult("a", types.ExecutionCompleted, 100.0, now))
	l.Finalize(terminalResult("b", types.ExecutionCompleted, 50.0, now))
	l.Finalize(terminalResult("c", types.ExecutionFailed, 0, now))
	l.Finalize(terminalResult("d", types.ExecutionPartial, 0, now))

	stats := l.Stats()

	if stats.TotalExecutions != 4 {
		t.Errorf("expected 4 total, got %d", stats.TotalExecutions)
	}
	if stats.SuccessfulExecutions != 2 {
		t.Errorf("expected 2 successful, got %d", stats.SuccessfulExecutions)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %.4f", stats.SuccessRate)
	}
	if stats.TotalProfitUSD != 150.0 {
		t.Errorf("expected total profit 150, got %.2f", stats.TotalProfitUSD)
	}
	// Gas only accumulates for completed executions.
	if stats.TotalGasSpentUSD != 20.0 {
		t.Errorf("expected total gas 20, got %.2f", stats.TotalGasSpentUSD)
	}
	if stats.NetProfitUSD != 130.0 {
		t.Errorf("expected net profit 130, got %.2f", stats.NetProfitUSD)
	}
	if stats.AvgExecutionTimeSec != 1.5 {
		t.Errorf("expected avg execution time 1.5, got %.2f", stats.AvgExecutionTimeSec)
	}
	// Profit and gas average over successful executions only.
	if stats.AvgProfitPerExecution != 75.0 {
		t.Errorf("expected avg profit 75, got %.2f", stats.AvgProfitPerExecution)
	}
	if stats.AvgGasPerExecution != 10.0 {
		t.Errorf("expected avg gas 10, got %.2f", stats.AvgGasPerExecution)
	}
}

func TestLedgerSnapshotIsolation(t *testing.T) {
	l := NewLedger(3)

	started := time.Now()
	live := &types.ExecutionResult{
		ExecutionID: "live-1",
		Status:      types.ExecutionPending,
		Transactions: []*types.Transaction{
			{ID: "tx-1", Type: types.TxBuy, Status: types.TxPending},
		},
		StartedAt: &started,
	}
	if err := l.Admit(live); err != nil {
		t.Fatal(err)
	}

	// Mutations of the live result must not reach the admitted snapshot.
	live.Status = types.ExecutionExecuting
	live.Transactions[0].Status = types.TxSubmitted

	got, ok := l.GetStatus("live-1")
	if !ok {
		t.Fatal("expected to find active execution")
	}
	if got == live {
		t.Fatal("expected a snapshot, got the live result")
	}
	if got.Status != types.ExecutionPending {
		t.Errorf("expected snapshot status PENDING, got %s", got.Status)
	}
	if got.Transactions[0].Status != types.TxPending {
		t.Errorf("expected snapshot leg PENDING, got %s", got.Transactions[0].Status)
	}

	// Update publishes the current state as a new snapshot.
	l.Update(live)
	if got, _ = l.GetStatus("live-1"); got.Status != types.ExecutionExecuting {
		t.Errorf("expected updated snapshot EXECUTING, got %s", got.Status)
	}

	recent := l.GetRecent(10)
	if len(recent) != 1 || recent[0] == live {
		t.Error("expected GetRecent to hand out a snapshot")
	}

	// Updates for ids that were never admitted are dropped.
	l.Update(&types.ExecutionResult{ExecutionID: "unknown"})
	if _, ok := l.GetStatus("unknown"); ok {
		t.Error("expected unknown id to stay out of the ledger")
	}
}

func TestLedgerGetStatus(t *testing.T) {
	l := NewLedger(3)

	active := &types.ExecutionResult{ExecutionID: "active-1", Status: types.ExecutionExecuting}
	if err := l.Admit(active); err != nil {
		t.Fatal(err)
	}
	l.Finalize(terminalResult("done-1", types.ExecutionCompleted, 10.0, time.Now()))

	if got, ok := l.GetStatus("active-1"); !ok || got.Status != types.ExecutionExecuting {
		t.Error("expected to find active execution")
	}
	if got, ok := l.GetStatus("done-1"); !ok || got.Status != types.ExecutionCompleted {
		t.Error("expected to find finalized execution")
	}
	if _, ok := l.GetStatus("missing"); ok {
		t.Error("expected missing id to report not found")
	}
}

func TestLedgerGetRecentOrderAndLimit(t *testing.T) {
	l := NewLedger(5)
	base := time.Now()

	l.Finalize(terminalResult("old", types.ExecutionCompleted, 1, base.Add(-3*time.Minute)))
	l.Finalize(terminalResult("mid", types.ExecutionFailed, 0, base.Add(-2*time.Minute)))
	l.Finalize(terminalResult("new", types.ExecutionCompleted, 1, base.Add(-1*time.Minute)))

	recent := l.GetRecent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recent))
	}
	if recent[0].ExecutionID != "new" || recent[1].ExecutionID != "mid" {
		t.Errorf("expected [new mid], got [%s %s]", recent[0].ExecutionID, recent[1].ExecutionID)
	}
}
