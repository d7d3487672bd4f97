package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractDescriptor is one deployable unit from the contract registry
type ContractDescriptor struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	RawABI      json.RawMessage `json:"abi"`
	Bytecode    string          `json:"bytecode"`

	// ABI is parsed from RawABI when the registry is loaded
	ABI abi.ABI `json:"-"`
}

// ConstructorInput is a single constructor parameter
type ConstructorInput struct {
	Name         string `json:"name"`
	SolidityType string `json:"type"`
}

// ParseABI parses RawABI into ABI.
func (c *ContractDescriptor) ParseABI() error {
	if len(c.RawABI) == 0 {
		c.ABI = abi.ABI{}
		return nil
	}
	parsed, err := abi.JSON(strings.NewReader(string(c.RawABI)))
	if err != nil {
		return fmt.Errorf("failed to parse ABI for %s: %w", c.Name, err)
	}
	c.ABI = parsed
	return nil
}

// ConstructorInputs returns the declared constructor parameters, empty if none.
// Unnamed parameters are given positional names (arg0, arg1, ...).
func (c *ContractDescriptor) ConstructorInputs() []ConstructorInput {
	args := c.ABI.Constructor.Inputs
	inputs := make([]ConstructorInput, 0, len(args))
	for i, arg := range args {
		name := arg.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		inputs = append(inputs, ConstructorInput{
			Name:         name,
			SolidityType: arg.Type.String(),
		})
	}
	return inputs
}

// ConstructorSignature renders the constructor as "constructor(uint256 _shares, string _name)"
func (c *ContractDescriptor) ConstructorSignature() string {
	inputs := c.ConstructorInputs()
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = in.SolidityType + " " + in.Name
	}
	return "constructor(" + strings.Join(parts, ", ") + ")"
}

// DisplayName returns "<id>. <name>", the form used in logs
func (c *ContractDescriptor) DisplayName() string {
	return fmt.Sprintf("%d. %s", c.ID, c.Name)
}
