package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for deployment operations
var (
	// ErrMissingArgument is returned when a required constructor argument is empty or absent
	ErrMissingArgument = errors.New("missing argument")

	// ErrInvalidArgument is returned when a constructor argument has the wrong type or format
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedBytecode is returned when a contract's bytecode is not a 0x-prefixed hex string
	ErrMalformedBytecode = errors.New("malformed bytecode")

	// ErrWrongNetwork is returned when the wallet is not on the target network and switching failed
	ErrWrongNetwork = errors.New("wrong network")

	// ErrConfirmationTimeout is returned when a receipt was not observed in time
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrTransactionFailed is returned when signing, broadcasting or execution failed
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrUserDeclined is returned when the user rejects a confirmation prompt
	ErrUserDeclined = errors.New("declined by user")

	// ErrContractNotFound is returned when a contract can't be found in the registry
	ErrContractNotFound = errors.New("contract not found")

	// ErrInvalidPlan is returned when a deployment plan is structurally invalid
	ErrInvalidPlan = errors.New("invalid deployment plan")
)

// ContractNotFoundErr carries the query and close matches for an unknown contract
type ContractNotFoundErr struct {
	Query       string
	Suggestions []string
}

func (e ContractNotFoundErr) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("contract not found: %s", e.Query)
	}
	return fmt.Sprintf("contract not found: %s (did you mean: %s?)", e.Query, strings.Join(e.Suggestions, ", "))
}

func (e ContractNotFoundErr) Unwrap() error {
	return ErrContractNotFound
}

// PlanCycleErr is returned when plan steps depend on each other in a loop
type PlanCycleErr struct {
	Labels []string
}

func (e PlanCycleErr) Error() string {
	return fmt.Sprintf("circular dependency detected involving steps: %v", e.Labels)
}

func (e PlanCycleErr) Unwrap() error {
	return ErrInvalidPlan
}
