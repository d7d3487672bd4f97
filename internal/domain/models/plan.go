package models

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeploymentPlan is a declarative list of deployment steps targeting one chain
type DeploymentPlan struct {
	Name    string     `yaml:"name"`
	ChainID uint64     `yaml:"chain_id"`
	Steps   []PlanStep `yaml:"steps"`
}

// PlanStep declares which contract to deploy and how its arguments are resolved
type PlanStep struct {
	Label     string      `yaml:"label"`
	Contract  ContractRef `yaml:"contract"`
	Args      []ArgRule   `yaml:"args,omitempty"`
	DependsOn []string    `yaml:"depends_on,omitempty"`
}

// ContractRef identifies a registry entry by numeric id or by name
type ContractRef struct {
	ID   int
	Name string
}

// ContractRefByID returns a reference to a registry id
func ContractRefByID(id int) ContractRef {
	return ContractRef{ID: id}
}

func (r ContractRef) String() string {
	if r.Name != "" {
		return r.Name
	}
	return strconv.Itoa(r.ID)
}

// UnmarshalYAML accepts either an integer id or a contract name
func (r *ContractRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: contract must be an id or a name", node.Line)
	}
	if id, err := strconv.Atoi(node.Value); err == nil {
		r.ID = id
		return nil
	}
	r.Name = node.Value
	return nil
}

// MarshalYAML writes the id when the reference is numeric
func (r ContractRef) MarshalYAML() (any, error) {
	if r.Name != "" {
		return r.Name, nil
	}
	return r.ID, nil
}

// ArgRule says how a single constructor argument is produced
type ArgRule struct {
	// Literal is used as-is and converted by the argument builder
	Literal string
	// Refs name earlier steps whose deployed addresses are substituted.
	// More than one ref is joined with commas, for address[] parameters.
	Refs []string
}

// LiteralArg returns a rule for a fixed value
func LiteralArg(v string) ArgRule {
	return ArgRule{Literal: v}
}

// RefArg returns a rule that takes the address produced by the given steps
func RefArg(labels ...string) ArgRule {
	return ArgRule{Refs: labels}
}

// IsRef reports whether the rule depends on other steps
func (a ArgRule) IsRef() bool {
	return len(a.Refs) > 0
}

func (a ArgRule) String() string {
	if a.IsRef() {
		return "@" + strings.Join(a.Refs, ",@")
	}
	return a.Literal
}

// UnmarshalYAML accepts a scalar literal, {ref: label} or {refs: [a, b]}
func (a *ArgRule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		a.Literal = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Ref  string   `yaml:"ref"`
			Refs []string `yaml:"refs"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Ref != "" {
			a.Refs = append(a.Refs, raw.Ref)
		}
		a.Refs = append(a.Refs, raw.Refs...)
		if len(a.Refs) == 0 {
			return fmt.Errorf("line %d: argument mapping needs ref or refs", node.Line)
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		a.Literal = strings.Join(items, ",")
		return nil
	default:
		return fmt.Errorf("line %d: unsupported argument form", node.Line)
	}
}

// MarshalYAML is the inverse of UnmarshalYAML
func (a ArgRule) MarshalYAML() (any, error) {
	switch {
	case len(a.Refs) == 1:
		return map[string]string{"ref": a.Refs[0]}, nil
	case len(a.Refs) > 1:
		return map[string][]string{"refs": a.Refs}, nil
	default:
		return a.Literal, nil
	}
}

// Dependencies returns every label this step needs, refs first, without duplicates
func (s PlanStep) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			deps = append(deps, label)
		}
	}
	for _, arg := range s.Args {
		for _, ref := range arg.Refs {
			add(ref)
		}
	}
	for _, dep := range s.DependsOn {
		add(dep)
	}
	return deps
}
