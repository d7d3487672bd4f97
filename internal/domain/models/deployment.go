package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentStep is one unit of work handed to the executor
type DeploymentStep struct {
	Descriptor   *ContractDescriptor
	ResolvedArgs []any
	Label        string
}

// DeploymentResult is what a mined deployment transaction produced
type DeploymentResult struct {
	ContractAddress common.Address `json:"contractAddress"`
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     uint64         `json:"blockNumber,omitempty"`
	GasUsed         uint64         `json:"gasUsed,omitempty"`
}

// Severity classifies a log entry
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityPending Severity = "pending"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// LogEntry is a single human-readable status line. Entries are never mutated.
type LogEntry struct {
	Timestamp       time.Time       `json:"timestamp"`
	Message         string          `json:"message"`
	Severity        Severity        `json:"severity"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
}

// Receipt is the subset of a transaction receipt the executor needs
type Receipt struct {
	ContractAddress common.Address
	Status          uint64
	BlockNumber     uint64
	GasUsed         uint64
}
