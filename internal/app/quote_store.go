// Package app contains the application services that own the quote
// collection and coordinate it with storage.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

const tracerName = "github.com/jsamuelsen/quotebook/app"

// DefaultStorageKey is used when QuoteStoreConfig.Key is empty.
const DefaultStorageKey = "quotes"

// QuoteStore owns the quote collection and the session's bare categories.
// Every operation holds the store lock for its whole duration, so callers
// on different goroutines observe operations one at a time.
type QuoteStore struct {
	mu     sync.Mutex
	quotes []domain.Quote
	bare   map[string]struct{}

	kv      ports.KeyValueStore
	key     string
	rnd     func() float64
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// QuoteStoreConfig holds the store's dependencies. Only Storage is required.
type QuoteStoreConfig struct {
	Storage ports.KeyValueStore
	Key     string
	// Random returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	Random  func() float64
	Metrics *Metrics
	Logger  *slog.Logger
}

// AddResult is what a successful Add reports back to the view.
type AddResult struct {
	Quote    domain.Quote
	Quotes   []domain.Quote
	Category string
}

// NewQuoteStore creates an empty store. Call Load before serving views.
func NewQuoteStore(cfg QuoteStoreConfig) *QuoteStore {
	key := cfg.Key
	if key == "" {
		key = DefaultStorageKey
	}

	rnd := cfg.Random
	if rnd == nil {
		rnd = rand.Float64
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{
		quotes:  []domain.Quote{},
		bare:    make(map[string]struct{}),
		kv:      cfg.Storage,
		key:     key,
		rnd:     rnd,
		metrics: metrics,
		tracer:  telemetry.Tracer(tracerName),
		logger:  logger.With(slog.String("component", "app.QuoteStore")),
	}
}

// Load reads the persisted collection into memory.
//
// A missing key is initialized with the default seed. A value that is not
// a JSON array of quotes is overwritten with the seed and logged; it never
// fails the call. Array entries that are not valid quotes are skipped.
func (s *QuoteStore) Load(ctx context.Context) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteStore.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.log(ctx)

	raw, err := s.kv.Get(ctx, s.key)
	switch {
	case domain.IsNotFound(err):
		seed := domain.DefaultSeed()
		if err := s.persist(ctx, seed); err != nil {
			return nil, fail(span, err)
		}
		s.replace(seed)
		logger.InfoContext(ctx, "initialized quote collection with seed", slog.Int("count", len(seed)))
		return slices.Clone(s.quotes), nil
	case err != nil:
		return nil, fail(span, fmt.Errorf("reading %q: %w", s.key, err))
	}

	quotes, skipped, err := decodeQuotes(raw)
	if err != nil {
		logger.WarnContext(ctx, "persisted quotes unreadable, restoring seed",
			slog.String("key", s.key),
			slog.Any("error", err),
		)
		s.metrics.corruptResets.Inc()

		seed := domain.DefaultSeed()
		if err := s.persist(ctx, seed); err != nil {
			return nil, fail(span, err)
		}
		s.replace(seed)
		span.SetAttributes(attribute.Bool("quotes.reset", true))
		return slices.Clone(s.quotes), nil
	}

	if skipped > 0 {
		logger.WarnContext(ctx, "skipped invalid persisted quotes", slog.Int("skipped", skipped))
	}

	s.replace(quotes)
	span.SetAttributes(attribute.Int("quotes.count", len(quotes)))
	logger.DebugContext(ctx, "loaded quote collection", slog.Int("count", len(quotes)))

	return slices.Clone(s.quotes), nil
}

// Save writes the current collection to storage.
func (s *QuoteStore) Save(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "QuoteStore.Save")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, s.quotes); err != nil {
		return fail(span, err)
	}
	return nil
}

// Add appends a quote and persists the collection. Empty text is rejected
// with a ValidationError and leaves the collection untouched; an empty
// category becomes domain.DefaultCategory.
func (s *QuoteStore) Add(ctx context.Context, text, category string) (*AddResult, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteStore.Add")
	defer span.End()

	q, err := domain.NewQuote(text, category)
	if err != nil {
		return nil, fail(span, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(slices.Clone(s.quotes), q)
	if err := s.persist(ctx, next); err != nil {
		return nil, fail(span, err)
	}
	s.replace(next)
	s.metrics.added.Inc()

	s.log(ctx).InfoContext(ctx, "quote added",
		slog.String("category", q.Category),
		slog.Int("count", len(next)),
	)

	return &AddResult{
		Quote:    q,
		Quotes:   slices.Clone(s.quotes),
		Category: q.Category,
	}, nil
}

// AddCategoryOnly registers a category with no quotes. Such categories
// live for the lifetime of the store and are not persisted.
func (s *QuoteStore) AddCategoryOnly(ctx context.Context, name string) ([]string, error) {
	_, span := s.tracer.Start(ctx, "QuoteStore.AddCategoryOnly")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fail(span, domain.NewValidationError("category", "please enter a category name"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bare[name] = struct{}{}
	s.log(ctx).InfoContext(ctx, "category registered", slog.String("category", name))

	return s.categories(), nil
}

// Remove deletes the quote at insertion-order index and persists.
// Use RemoveDisplayed for a position in the recent-first listing.
func (s *QuoteStore) Remove(ctx context.Context, index int) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteStore.Remove", trace.WithAttributes(attribute.Int("quotes.index", index)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.quotes) {
		return nil, fail(span, domain.NewIndexOutOfRangeError("remove quote", index, len(s.quotes)))
	}

	if err := s.remove(ctx, index); err != nil {
		return nil, fail(span, err)
	}

	return slices.Clone(s.quotes), nil
}

// RemoveDisplayed deletes the quote at a recent-first display position.
// The translation to an insertion index happens under the store lock.
func (s *QuoteStore) RemoveDisplayed(ctx context.Context, displayIndex int) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteStore.RemoveDisplayed", trace.WithAttributes(attribute.Int("quotes.display_index", displayIndex)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if displayIndex < 0 || displayIndex >= len(s.quotes) {
		return nil, fail(span, domain.NewIndexOutOfRangeError("remove displayed quote", displayIndex, len(s.quotes)))
	}

	if err := s.remove(ctx, domain.InsertionIndex(len(s.quotes), displayIndex)); err != nil {
		return nil, fail(span, err)
	}

	return slices.Clone(s.quotes), nil
}

// Categories returns every category in use plus the bare ones, sorted.
func (s *QuoteStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.categories()
}

// PickRandom returns a uniformly chosen quote from the pool matching
// category. domain.AllCategories or "" selects from the whole collection.
// An empty pool yields domain.ErrEmptyPool.
func (s *QuoteStore) PickRandom(ctx context.Context, category string) (domain.Quote, error) {
	_, span := s.tracer.Start(ctx, "QuoteStore.PickRandom", trace.WithAttributes(attribute.String("quotes.category", category)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	pool := domain.FilterByCategory(s.quotes, category)
	if len(pool) == 0 {
		s.metrics.picks.WithLabelValues(PickResultEmpty).Inc()
		span.SetAttributes(attribute.Bool("quotes.empty_pool", true))
		return domain.Quote{}, domain.ErrEmptyPool
	}

	i := int(s.rnd() * float64(len(pool)))
	i = min(max(i, 0), len(pool)-1)
	s.metrics.picks.WithLabelValues(PickResultHit).Inc()

	return pool[i], nil
}

// Snapshot returns a copy of the collection in insertion order.
func (s *QuoteStore) Snapshot() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.quotes)
}

func (s *QuoteStore) categories() []string {
	set := make(map[string]struct{}, len(s.quotes)+len(s.bare))
	for _, q := range s.quotes {
		set[q.Category] = struct{}{}
	}
	maps.Copy(set, s.bare)

	return slices.Sorted(maps.Keys(set))
}

// remove expects s.mu held and index in range.
func (s *QuoteStore) remove(ctx context.Context, index int) error {
	removed := s.quotes[index]
	next := slices.Delete(slices.Clone(s.quotes), index, index+1)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.replace(next)
	s.metrics.removed.Inc()

	s.log(ctx).InfoContext(ctx, "quote removed",
		slog.Int("index", index),
		slog.String("category", removed.Category),
		slog.Int("count", len(next)),
	)

	return nil
}

func (s *QuoteStore) replace(quotes []domain.Quote) {
	s.quotes = quotes
	s.metrics.stored.Set(float64(len(quotes)))
}

func (s *QuoteStore) persist(ctx context.Context, quotes []domain.Quote) error {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing %q: %w", s.key, err)
	}

	return nil
}

func (s *QuoteStore) log(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger.With(slog.String("component", "app.QuoteStore"))
	}
	return s.logger
}

// decodeQuotes parses a persisted collection. It fails only when raw is not
// a JSON array; individual entries that do not form a valid quote are
// counted in skipped and left out.
func decodeQuotes(raw []byte) (quotes []domain.Quote, skipped int, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 0, fmt.Errorf("decoding quote array: %w", err)
	}
	if entries == nil {
		return nil, 0, fmt.Errorf("decoding quote array: got %s", strings.TrimSpace(string(raw)))
	}

	quotes = make([]domain.Quote, 0, len(entries))
	for _, entry := range entries {
		var q domain.Quote
		if err := json.Unmarshal(entry, &q); err != nil || !q.Valid() {
			skipped++
			continue
		}
		quotes = append(quotes, q)
	}

	return quotes, skipped, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
