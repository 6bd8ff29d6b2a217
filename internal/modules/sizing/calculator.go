package sizing

import (
	"sync"

	"github.com/rs/zerolog"
)

// Calculator computes a sizing result from a request. Implementations are
// pure functions of their input. The dispatcher validates required fields and
// ranges before Calculate is invoked, so implementations may dereference their
// declared required pointers directly.
type Calculator interface {
	// Method returns the tag this calculator is registered under.
	Method() Method

	// Info returns the static metadata for the methods listing.
	Info() MethodInfo

	// Calculate runs the sizing math. It returns a DomainError when the
	// input makes the formula undefined.
	Calculate(req CalculationRequest) (CalculationResult, error)
}

// Registry holds the closed set of sizing calculators keyed by method tag.
// Registration order is preserved for the methods listing.
type Registry struct {
	mu          sync.RWMutex
	calculators map[Method]Calculator
	order       []Method
	log         zerolog.Logger
}

// NewRegistry creates an empty calculator registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		calculators: make(map[Method]Calculator),
		log:         log.With().Str("module", "sizing").Logger(),
	}
}

// Register adds a calculator, replacing any existing entry for the same tag.
func (r *Registry) Register(c Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := c.Method()
	if _, exists := r.calculators[tag]; !exists {
		r.order = append(r.order, tag)
	}
	r.calculators[tag] = c
	r.log.Debug().Str("method", string(tag)).Msg("Registered sizing calculator")
}

// Get returns the calculator for the given tag.
func (r *Registry) Get(tag Method) (Calculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.calculators[tag]
	return c, ok
}

// Methods returns metadata for all registered calculators in registration
// order.
func (r *Registry) Methods() []MethodInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]MethodInfo, 0, len(r.order))
	for _, tag := range r.order {
		infos = append(infos, r.calculators[tag].Info())
	}
	return infos
}

// NewPopulatedRegistry creates a registry with all production calculators
// registered.
func NewPopulatedRegistry(log zerolog.Logger) *Registry {
	r := NewRegistry(log)
	r.Register(NewFixedRiskCalculator(log))
	r.Register(NewKellyCriterionCalculator(log))
	r.Register(NewVolatilityBasedCalculator(log))
	return r
}
