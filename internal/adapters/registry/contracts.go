package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

const maxSuggestions = 3

// ContractRegistry serves contract descriptors from a JSON file. The file is
// read once, on first use, so commands that never touch contracts don't
// require it.
type ContractRegistry struct {
	path string
	log  *slog.Logger

	once      sync.Once
	loadErr   error
	contracts []*models.ContractDescriptor
	byID      map[int]*models.ContractDescriptor
	byName    map[string]*models.ContractDescriptor
}

// NewContractRegistry creates a registry backed by cfg.RegistryPath
func NewContractRegistry(cfg *config.RuntimeConfig, log *slog.Logger) *ContractRegistry {
	return &ContractRegistry{
		path: cfg.RegistryPath,
		log:  log.With("component", "ContractRegistry"),
	}
}

// NewContractRegistryFromDescriptors creates a registry over already-loaded descriptors
func NewContractRegistryFromDescriptors(contracts []*models.ContractDescriptor) (*ContractRegistry, error) {
	r := &ContractRegistry{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r.once.Do(func() {
		r.loadErr = r.index(contracts)
	})
	return r, r.loadErr
}

// ListContracts returns every descriptor in registry order
func (r *ContractRegistry) ListContracts(ctx context.Context) ([]*models.ContractDescriptor, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	return r.contracts, nil
}

// GetContract finds a descriptor by name (case-insensitive) or by numeric id
func (r *ContractRegistry) GetContract(ctx context.Context, ref models.ContractRef) (*models.ContractDescriptor, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	if ref.Name != "" {
		if c, ok := r.byName[strings.ToLower(ref.Name)]; ok {
			return c, nil
		}
		return nil, domain.ContractNotFoundErr{Query: ref.Name, Suggestions: r.suggest(ref.Name)}
	}

	if c, ok := r.byID[ref.ID]; ok {
		return c, nil
	}
	return nil, domain.ContractNotFoundErr{Query: fmt.Sprintf("#%d", ref.ID)}
}

func (r *ContractRegistry) suggest(query string) []string {
	names := lo.Map(r.contracts, func(c *models.ContractDescriptor, _ int) string { return c.Name })
	matches := fuzzy.Find(query, names)
	suggestions := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}

func (r *ContractRegistry) ensureLoaded() error {
	r.once.Do(func() {
		r.loadErr = r.load()
	})
	return r.loadErr
}

func (r *ContractRegistry) load() error {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("contract registry not found at %s (set --registry or registry in salvo.toml)", r.path)
		}
		return fmt.Errorf("failed to open contract registry: %w", err)
	}
	defer f.Close()

	contracts, err := Decode(f)
	if err != nil {
		return fmt.Errorf("failed to load contract registry %s: %w", r.path, err)
	}

	r.log.Debug("loaded contract registry", "path", r.path, "contracts", len(contracts))
	return r.index(contracts)
}

func (r *ContractRegistry) index(contracts []*models.ContractDescriptor) error {
	r.byID = make(map[int]*models.ContractDescriptor, len(contracts))
	r.byName = make(map[string]*models.ContractDescriptor, len(contracts))
	for _, c := range contracts {
		if _, dup := r.byID[c.ID]; dup {
			return fmt.Errorf("duplicate contract id %d", c.ID)
		}
		key := strings.ToLower(c.Name)
		if _, dup := r.byName[key]; dup {
			return fmt.Errorf("duplicate contract name %s", c.Name)
		}
		r.byID[c.ID] = c
		r.byName[key] = c
	}

	r.contracts = append([]*models.ContractDescriptor(nil), contracts...)
	sort.SliceStable(r.contracts, func(i, j int) bool { return r.contracts[i].ID < r.contracts[j].ID })
	return nil
}

// Decode reads a JSON array of descriptors and parses each ABI
func Decode(reader io.Reader) ([]*models.ContractDescriptor, error) {
	var contracts []*models.ContractDescriptor
	if err := json.NewDecoder(reader).Decode(&contracts); err != nil {
		return nil, fmt.Errorf("invalid registry JSON: %w", err)
	}

	for i, c := range contracts {
		if c == nil || c.Name == "" {
			return nil, fmt.Errorf("entry %d has no name", i)
		}
		if err := c.ParseABI(); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

// Ensure the adapter implements the interface
var _ usecase.ContractRegistry = (*ContractRegistry)(nil)
