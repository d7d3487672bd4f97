package plan

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Loader reads deployment plans from YAML
type Loader struct{}

// NewLoader creates a new plan loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadPlan parses a plan file
func (l *Loader) LoadPlan(ctx context.Context, planPath string) (*models.DeploymentPlan, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// BuiltinPlan returns one of the plans shipped with the binary
func (l *Loader) BuiltinPlan(name string) (*models.DeploymentPlan, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown built-in plan %q (available: %s)", name, strings.Join(l.BuiltinPlans(), ", "))
	}
	return Parse(data)
}

// BuiltinPlans lists the names of the shipped plans
func (l *Loader) BuiltinPlans() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Parse decodes a YAML plan, rejecting unknown fields
func Parse(data []byte) (*models.DeploymentPlan, error) {
	var plan models.DeploymentPlan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &plan, nil
}

// Encode renders a plan back to YAML
func Encode(plan *models.DeploymentPlan) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(plan); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ensure the adapter implements the interface
var _ usecase.PlanLoader = (*Loader)(nil)
