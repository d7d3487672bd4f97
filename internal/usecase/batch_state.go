package usecase

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// BatchStatus is the state of a single batch run
type BatchStatus string

const (
	BatchIdle                BatchStatus = "idle"
	BatchRunning             BatchStatus = "running"
	BatchSucceeded           BatchStatus = "succeeded"
	BatchFailed              BatchStatus = "failed"
	BatchAbortedWrongNetwork BatchStatus = "aborted_wrong_network"
)

// IsTerminal reports whether no further transition is allowed
func (s BatchStatus) IsTerminal() bool {
	return s == BatchSucceeded || s == BatchFailed || s == BatchAbortedWrongNetwork
}

// BatchState is owned by one DeployBatch.Execute call. Only that call mutates
// it; observers see copies through progress events.
type BatchState struct {
	Status    BatchStatus
	StepIndex int // 1-based index of the running step, 0 before the first
	Total     int
	Logs      []models.LogEntry
	Addresses map[string]common.Address
	Reason    error

	now func() time.Time
}

func newBatchState(total int, now func() time.Time) *BatchState {
	if now == nil {
		now = time.Now
	}
	return &BatchState{
		Status:    BatchIdle,
		Total:     total,
		Addresses: make(map[string]common.Address),
		now:       now,
	}
}

// transition moves the state machine, rejecting anything that leaves a terminal
// state or skips Running on the way to success or failure
func (s *BatchState) transition(to BatchStatus, stepIndex int) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("batch already %s, cannot move to %s", s.Status, to)
	}

	switch to {
	case BatchRunning:
		if stepIndex < 1 || stepIndex > s.Total || stepIndex < s.StepIndex {
			return fmt.Errorf("invalid step index %d of %d", stepIndex, s.Total)
		}
		s.StepIndex = stepIndex
	case BatchSucceeded, BatchFailed:
		if s.Status != BatchRunning {
			return fmt.Errorf("cannot move from %s to %s", s.Status, to)
		}
	case BatchAbortedWrongNetwork:
		if s.Status != BatchIdle {
			return fmt.Errorf("cannot abort for network from %s", s.Status)
		}
	default:
		return fmt.Errorf("unknown batch status %s", to)
	}

	s.Status = to
	return nil
}

// appendLog records a new entry and returns it
func (s *BatchState) appendLog(message string, severity models.Severity, address *common.Address) models.LogEntry {
	entry := models.LogEntry{
		Timestamp:       s.now(),
		Message:         message,
		Severity:        severity,
		ContractAddress: address,
	}
	s.Logs = append(s.Logs, entry)
	return entry
}

// AddressesCopy returns a snapshot of the result map
func (s *BatchState) AddressesCopy() map[string]common.Address {
	out := make(map[string]common.Address, len(s.Addresses))
	for k, v := range s.Addresses {
		out[k] = v
	}
	return out
}
