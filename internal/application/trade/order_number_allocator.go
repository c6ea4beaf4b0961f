package trade

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxAllocationAttempts bounds the candidates tried per allocation.
const DefaultMaxAllocationAttempts = 20

// SequenceCounter hands out a running number per order kind and calendar
// day. Implementations must be safe across service instances.
type SequenceCounter interface {
	Next(ctx context.Context, kind string, day time.Time) (int64, error)
}

// NumberExistsFunc reports whether an order number is already taken.
type NumberExistsFunc func(ctx context.Context, orderNumber string) (bool, error)

type orderKind struct {
	prefix string
	exists NumberExistsFunc
}

// OrderNumberAllocator produces order numbers that are unique per kind.
//
// It does not reserve the number it returns. The owning document must be
// persisted under a unique constraint, and a duplicate-key failure there
// should send the caller back for another allocation.
type OrderNumberAllocator struct {
	mu          sync.RWMutex
	kinds       map[string]orderKind
	counter     SequenceCounter
	maxAttempts int
	now         func() time.Time
	metrics     *telemetry.PurchasingMetrics
	logger      *zap.Logger
}

// NewOrderNumberAllocator creates an allocator. maxAttempts <= 0 selects
// DefaultMaxAllocationAttempts.
func NewOrderNumberAllocator(counter SequenceCounter, maxAttempts int, logger *zap.Logger) *OrderNumberAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAllocationAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderNumberAllocator{
		kinds:       make(map[string]orderKind),
		counter:     counter,
		maxAttempts: maxAttempts,
		now:         time.Now,
		logger:      logger,
	}
}

// RegisterKind makes kind allocatable. Generated numbers start with prefix
// (kind itself when empty) and exists is the uniqueness check.
func (a *OrderNumberAllocator) RegisterKind(kind, prefix string, exists NumberExistsFunc) {
	if prefix == "" {
		prefix = kind
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds[kind] = orderKind{prefix: prefix, exists: exists}
}

// SetClock replaces the clock used to date generated numbers.
func (a *OrderNumberAllocator) SetClock(now func() time.Time) {
	a.now = now
}

// SetMetrics sets the purchasing metrics collector
func (a *OrderNumberAllocator) SetMetrics(m *telemetry.PurchasingMetrics) {
	a.metrics = m
}

// MaxAttempts returns how many candidates one allocation may try.
func (a *OrderNumberAllocator) MaxAttempts() int {
	return a.maxAttempts
}

// Allocate returns the first free candidate among base, base-1, base-2, ...
// An empty requestedBase is replaced by PREFIX-YYYYMMDD-NNNN, where NNNN is
// the day's running sequence for kind.
func (a *OrderNumberAllocator) Allocate(ctx context.Context, kind, requestedBase string) (string, error) {
	a.mu.RLock()
	k, ok := a.kinds[kind]
	a.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("order number kind %q is not registered", kind)
	}

	base := strings.TrimSpace(requestedBase)
	if base == "" {
		day := a.now()
		seq, err := a.counter.Next(ctx, kind, day)
		if err != nil {
			return "", fmt.Errorf("next %s sequence: %w", kind, err)
		}
		base = fmt.Sprintf("%s-%s-%04d", k.prefix, day.Format("20060102"), seq)
	}

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		taken, err := k.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check order number %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		a.logger.Debug("order number candidate taken",
			zap.String("kind", kind),
			zap.String("candidate", candidate),
		)
		a.metrics.RecordAllocatorCollision(ctx, kind)
	}

	a.logger.Error("order number allocation exhausted",
		zap.String("kind", kind),
		zap.String("base", base),
		zap.Int("attempts", a.maxAttempts),
	)
	a.metrics.RecordAllocatorExhausted(ctx, kind)
	return "", shared.NewExhaustedError(
		fmt.Sprintf("no free order number for base %q after %d attempts", base, a.maxAttempts), nil)
}
