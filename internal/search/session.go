package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helfiapp/foodresolve/internal/match"
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// State is the orchestrator's phase for the most recent query.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateFetching   State = "fetching"
	StateSettled    State = "settled"
	StateFailed     State = "failed"
)

const defaultDebounce = 250 * time.Millisecond

// Snapshot is the externally visible state of a Session at one moment.
type Snapshot struct {
	State            State
	Query            string
	Kind             model.SearchKind
	Results          []model.FoodItem
	BrandSuggestions []model.FoodItem
	Err              error
}

// Config wires a Session's collaborators. Providers is required;
// everything else is optional.
type Config struct {
	Providers []Provider
	Servings  ServingSource
	Brands    BrandDirectory
	Store     *Store
	Logger    *slog.Logger
	Debounce  time.Duration

	// OnUpdate, when set, is invoked after every visible state change.
	// It runs with the session lock held and must not call back into
	// the Session.
	OnUpdate func(Snapshot)
}

// Session owns one interactive search: the debounce timer, the
// monotonic sequence counters that discard stale responses, and the
// per-(kind,source) result memory served while a live request is
// outstanding. Construct one per logical search surface; the zero
// value is not usable.
type Session struct {
	providers []Provider
	servings  ServingSource
	brands    BrandDirectory
	store     *Store
	logger    *slog.Logger
	debounce  time.Duration
	onUpdate  func(Snapshot)

	mu         sync.Mutex
	seq        uint64
	brandSeq   uint64
	timer      *time.Timer
	brandTimer *time.Timer
	cancel     context.CancelFunc
	memory     map[memoryKey][]model.FoodItem
	snap       Snapshot
	closed     bool
}

type memoryKey struct {
	Kind   model.SearchKind
	Source model.Source
}

func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Session{
		providers: cfg.Providers,
		servings:  cfg.Servings,
		brands:    cfg.Brands,
		store:     cfg.Store,
		logger:    logger,
		debounce:  debounce,
		onUpdate:  cfg.OnUpdate,
		memory:    make(map[memoryKey][]model.FoodItem),
		snap:      Snapshot{State: StateIdle},
	}
}

// Update handles one keystroke: it supersedes any in-flight request,
// serves a synchronous pass over the session memory, and arms a fresh
// debounce timer for the live fetch. The previous request's context is
// canceled for cleanup, but correctness rests on the sequence check
// alone.
func (s *Session) Update(q string, kind model.SearchKind, source model.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	q = strings.TrimSpace(q)
	s.snap.Query = q
	s.snap.Kind = kind
	s.snap.Err = nil
	if q == "" || kind != model.KindPackaged {
		s.brandSeq++
		if s.brandTimer != nil {
			s.brandTimer.Stop()
			s.brandTimer = nil
		}
	}
	if q == "" {
		s.snap.State = StateIdle
		s.snap.Results = nil
		s.snap.BrandSuggestions = nil
		s.notifyLocked()
		return
	}

	if remembered, ok := s.memory[memoryKey{Kind: kind, Source: source}]; ok {
		s.snap.Results = match.FilterStrict(remembered, q, kind)
	} else {
		s.snap.Results = nil
	}
	s.snap.State = StateDebouncing

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	req := Request{Source: source, Query: q, Kind: kind, Limit: defaultLimit}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(ctx, seq, req)
	})

	if kind == model.KindPackaged {
		s.brandSeq++
		brandSeq := s.brandSeq
		if s.brandTimer != nil {
			s.brandTimer.Stop()
		}
		s.brandTimer = time.AfterFunc(s.debounce, func() {
			s.runBrand(ctx, brandSeq, q)
		})
	} else {
		s.snap.BrandSuggestions = nil
	}

	s.notifyLocked()
}

// Snapshot returns a copy of the current visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close supersedes outstanding work and releases timers. The session
// must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	s.brandSeq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.brandTimer != nil {
		s.brandTimer.Stop()
		s.brandTimer = nil
	}
}

func (s *Session) run(ctx context.Context, seq uint64, req Request) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.snap.State = StateFetching
	s.notifyLocked()
	s.mu.Unlock()

	// Best-match mode: a narrow local-only pass against the first
	// provider paints early results while the full fan-out runs.
	var fast []model.FoodItem
	if req.Source == model.SourceAuto && len(s.providers) > 0 {
		fastReq := req
		fastReq.Query = fastQuery(req.Query)
		fastReq.LocalOnly = true
		fastReq.Limit = 5
		items, err := s.searchProvider(ctx, s.providers[0], fastReq)
		if err == nil && len(items) > 0 {
			fast = match.Filter(usableOnly(items), req.Query, req.Kind)
			s.applyPartial(seq, fast)
		}
	}

	items, err := s.Search(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.applyFailed(seq, err)
		return
	}
	final := Merge(fast, items)
	if s.applySettled(seq, req, final) {
		s.upgradeServings(ctx, seq, final)
	}
}

// Search runs the full pipeline synchronously: provider fan-out,
// relevance filtering, completeness filtering, and first-write-wins
// dedup in provider order. It is the entry point for non-interactive
// callers; Update routes through it after the debounce.
func (s *Session) Search(ctx context.Context, req Request) ([]model.FoodItem, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	req.Limit = clampLimit(req.Limit)

	targets := s.providersFor(req.Source)
	if len(targets) == 0 {
		return nil, fmt.Errorf("no search providers configured for source %q", req.Source)
	}

	results := make([][]model.FoodItem, len(targets))
	failures := make([]error, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range targets {
		i, p := i, p
		g.Go(func() error {
			items, err := s.searchProvider(gctx, p, req)
			if err != nil {
				// One provider failing must not sink the fan-out.
				failures[i] = fmt.Errorf("%s: %w", p.Source(), err)
				s.logger.Warn("provider search failed",
					"source", p.Source(), "query", req.Query, "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]model.FoodItem, 0)
	failed := 0
	for i := range targets {
		if failures[i] != nil {
			failed++
			continue
		}
		merged = Merge(merged, match.Filter(usableOnly(results[i]), req.Query, req.Kind))
	}
	if failed == len(targets) {
		return nil, fmt.Errorf("%w: %s", ErrAllProvidersFailed, errors.Join(failures...))
	}
	if len(merged) > req.Limit {
		merged = merged[:req.Limit]
	}
	return merged, nil
}

func (s *Session) providersFor(source model.Source) []Provider {
	if source == model.SourceAuto {
		return s.providers
	}
	for _, p := range s.providers {
		if p.Source() == source {
			return []Provider{p}
		}
	}
	return nil
}

func (s *Session) searchProvider(ctx context.Context, p Provider, req Request) ([]model.FoodItem, error) {
	if s.store != nil {
		items, ok, err := s.store.Lookup(p.Source(), req.Kind, req.Query, req.Limit)
		if err != nil {
			s.logger.Warn("provider cache lookup failed", "source", p.Source(), "error", err)
		} else if ok {
			return items, nil
		}
	}
	providerReq := req
	providerReq.Source = p.Source()
	items, err := p.Search(ctx, providerReq)
	if err != nil {
		return nil, err
	}
	if req.LocalOnly {
		// Remote providers answer local-only requests with nothing;
		// persisting that would shadow the real response for this key.
		return items, nil
	}
	if s.store != nil {
		if err := s.store.Upsert(p.Source(), req.Kind, req.Query, req.Limit, items); err != nil {
			s.logger.Warn("provider cache upsert failed", "source", p.Source(), "error", err)
		}
	}
	return items, nil
}

func (s *Session) runBrand(ctx context.Context, brandSeq uint64, q string) {
	brands := lookupBrands(ctx, s.brands, q)
	s.mu.Lock()
	defer s.mu.Unlock()
	if brandSeq != s.brandSeq {
		return
	}
	s.snap.BrandSuggestions = brandSuggestions(brands)
	s.notifyLocked()
}

func (s *Session) applyPartial(seq uint64, items []model.FoodItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.snap.Results = items
	s.notifyLocked()
}

func (s *Session) applySettled(seq uint64, req Request, items []model.FoodItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.snap.State = StateSettled
	s.snap.Results = items
	s.memory[memoryKey{Kind: req.Kind, Source: req.Source}] = items
	s.notifyLocked()
	return true
}

func (s *Session) applyFailed(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.snap.State = StateFailed
	s.snap.Err = err
	s.snap.Results = nil
	s.notifyLocked()
}

func (s *Session) notifyLocked() {
	if s.onUpdate != nil {
		s.onUpdate(s.snapshotLocked())
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := s.snap
	snap.Results = append([]model.FoodItem(nil), s.snap.Results...)
	snap.BrandSuggestions = append([]model.FoodItem(nil), s.snap.BrandSuggestions...)
	return snap
}

// fastQuery reduces a query to a single high-signal token for the
// local pass: the first non-generic (brand-ish) token when one
// exists, otherwise the first token.
func fastQuery(q string) string {
	if brandish := brandTokens(q); len(brandish) > 0 {
		return brandish[0]
	}
	if tokens := query.Tokens(q); len(tokens) > 0 {
		return tokens[0]
	}
	return q
}

func usableOnly(items []model.FoodItem) []model.FoodItem {
	out := make([]model.FoodItem, 0, len(items))
	for _, item := range items {
		if item.Usable() {
			out = append(out, item)
		}
	}
	return out
}
