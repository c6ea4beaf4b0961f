package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/pharmapos/backend/internal/infrastructure/strategy/cost"
)

// StrategyRegistry manages cost strategy registrations
type StrategyRegistry struct {
	mu             sync.RWMutex
	costStrategies map[string]strategy.CostCalculationStrategy
	defaultCost    string
}

// NewStrategyRegistry creates an empty strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		costStrategies: make(map[string]strategy.CostCalculationStrategy),
	}
}

// NewRegistryWithDefaults registers the built-in cost strategies and makes
// defaultMethod the default. An empty defaultMethod selects FIFO.
func NewRegistryWithDefaults(defaultMethod string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()
	if err := r.RegisterCostStrategy(cost.NewFIFOCostStrategy()); err != nil {
		return nil, err
	}
	if err := r.RegisterCostStrategy(cost.NewMovingAverageCostStrategy()); err != nil {
		return nil, err
	}
	if defaultMethod == "" {
		defaultMethod = strategy.CostMethodFIFO.String()
	}
	if err := r.SetDefaultCostStrategy(defaultMethod); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterCostStrategy registers a cost calculation strategy
func (r *StrategyRegistry) RegisterCostStrategy(s strategy.CostCalculationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.costStrategies[name]; exists {
		return fmt.Errorf("%w: cost strategy '%s' already registered", shared.ErrConflict, name)
	}
	r.costStrategies[name] = s
	return nil
}

// SetDefaultCostStrategy selects the strategy returned for an empty name
func (r *StrategyRegistry) SetDefaultCostStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.costStrategies[name]; !exists {
		return fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultCost = name
	return nil
}

// GetCostStrategy returns a cost strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetCostStrategy(name string) (strategy.CostCalculationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultCost
		if name == "" {
			return nil, fmt.Errorf("%w: no default cost strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.costStrategies[name]
	if !exists {
		return nil, shared.NewValidationError("method", fmt.Sprintf("unknown costing method %q", name))
	}
	return s, nil
}

// ListCostStrategies returns all registered cost strategy names
func (r *StrategyRegistry) ListCostStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.costStrategies))
	for name := range r.costStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
