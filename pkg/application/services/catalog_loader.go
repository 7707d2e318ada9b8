package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vsinha/pricelist/pkg/domain/entities"
	"github.com/vsinha/pricelist/pkg/domain/repositories"
	"github.com/vsinha/pricelist/pkg/infrastructure/metrics"
)

// LoadState is the lifecycle state of the catalog loader
type LoadState int

const (
	LoadStateLoading LoadState = iota
	LoadStateError
	LoadStateReady
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoading:
		return "loading"
	case LoadStateError:
		return "error"
	case LoadStateReady:
		return "ready"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// MarshalText lets the state appear by name in JSON output
func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent view of the loader at one point in time.
// Catalog is set only in the ready state and Err only in the error state.
type Snapshot struct {
	State    LoadState
	Err      error
	Catalog  *entities.Catalog
	Revision string
	Source   string
	LoadedAt time.Time
}

// Message returns the error message shown to users, or "" when not in the
// error state
func (s Snapshot) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// InitialSelection returns the selection a fresh view starts from
func (s Snapshot) InitialSelection() entities.Selection {
	return entities.InitialSelection(s.Catalog)
}

// CatalogLoader fetches the catalog from its source exactly once. Concurrent
// and later callers share the outcome of that single fetch, success or
// failure; there is no retry.
type CatalogLoader struct {
	source  repositories.CatalogSource
	repo    repositories.ItemRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger

	group singleflight.Group
	done  chan struct{}

	mu       sync.RWMutex
	settled  bool
	state    LoadState
	err      error
	catalog  *entities.Catalog
	revision string
	loadedAt time.Time
}

// NewCatalogLoader creates a loader in the loading state. The loaded catalog is
// stored in repo; m may be nil.
func NewCatalogLoader(
	source repositories.CatalogSource,
	repo repositories.ItemRepository,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *CatalogLoader {
	return &CatalogLoader{
		source:  source,
		repo:    repo,
		metrics: m,
		logger:  logger.With().Str("component", "catalog_loader").Logger(),
		done:    make(chan struct{}),
		state:   LoadStateLoading,
	}
}

// Start issues the load in the background. The fetch is bound to ctx, so
// cancelling ctx is the only way to abandon a hung fetch.
func (l *CatalogLoader) Start(ctx context.Context) {
	go func() {
		_, _ = l.Load(ctx)
	}()
}

// Load returns the catalog, fetching it on the first call only
func (l *CatalogLoader) Load(ctx context.Context) (*entities.Catalog, error) {
	if snap, ok := l.settledSnapshot(); ok {
		return snap.Catalog, snap.Err
	}

	_, _, _ = l.group.Do("catalog", func() (any, error) {
		if _, ok := l.settledSnapshot(); ok {
			return nil, nil
		}
		l.settle(l.fetch(ctx))
		return nil, nil
	})

	snap := l.Snapshot()
	return snap.Catalog, snap.Err
}

// Done is closed once the loader has left the loading state
func (l *CatalogLoader) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the load has settled or ctx is done
func (l *CatalogLoader) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-l.done:
		return l.Snapshot(), nil
	case <-ctx.Done():
		return l.Snapshot(), ctx.Err()
	}
}

// Snapshot returns the current state
func (l *CatalogLoader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{
		State:    l.state,
		Err:      l.err,
		Catalog:  l.catalog,
		Revision: l.revision,
		Source:   l.source.Location(),
		LoadedAt: l.loadedAt,
	}
}

func (l *CatalogLoader) settledSnapshot() (Snapshot, bool) {
	l.mu.RLock()
	settled := l.settled
	l.mu.RUnlock()
	if !settled {
		return Snapshot{}, false
	}
	return l.Snapshot(), true
}

func (l *CatalogLoader) fetch(ctx context.Context) (*entities.Catalog, error) {
	start := time.Now()
	l.logger.Info().Str("source", l.source.Location()).Msg("loading catalog")

	catalog, err := l.source.FetchCatalog(ctx)
	if err != nil {
		l.logger.Error().Err(err).Str("source", l.source.Location()).Msg("catalog load failed")
		return nil, err
	}

	if err := l.repo.LoadCatalog(catalog); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	stored, err := l.repo.GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored catalog: %w", err)
	}

	l.logger.Info().
		Int("machines", len(stored.Machines)).
		Int("hours", len(stored.Hours)).
		Int("items", len(stored.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog loaded")
	return stored, nil
}

func (l *CatalogLoader) settle(catalog *entities.Catalog, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return
	}

	l.settled = true
	if err != nil {
		l.state = LoadStateError
		l.err = err
		l.metrics.RecordCatalogLoad(0, err)
	} else {
		l.state = LoadStateReady
		l.catalog = catalog
		l.revision = uuid.NewString()
		l.loadedAt = time.Now()
		l.metrics.RecordCatalogLoad(len(catalog.Items), nil)
	}
	close(l.done)
}
