package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// Store holds the current snapshot. Reloads swap in a brand-new snapshot;
// sessions keep whatever snapshot they were created with.
type Store struct {
	loader *Loader
	logger *zap.Logger

	current  atomic.Pointer[catalog.Snapshot]
	report   atomic.Pointer[Report]
	loadedAt atomic.Int64

	mu       sync.Mutex
	onReload []func(Report)
}

// NewStore performs the initial load.
func NewStore(loader *Loader, logger *zap.Logger) (*Store, error) {
	s := &Store{loader: loader, logger: logger.Named("dataset-store")}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore serves a fixed snapshot; Reload is a no-op.
func NewStaticStore(snap *catalog.Snapshot, logger *zap.Logger) *Store {
	s := &Store{logger: logger.Named("dataset-store")}
	s.swap(snap, Report{Source: SourceFiles, Fingerprint: snap.Fingerprint()})
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *catalog.Snapshot {
	return s.current.Load()
}

// Report returns the report of the active snapshot.
func (s *Store) Report() Report {
	if r := s.report.Load(); r != nil {
		return *r
	}
	return Report{}
}

// LoadedAt returns when the active snapshot was installed.
func (s *Store) LoadedAt() time.Time {
	return time.Unix(0, s.loadedAt.Load())
}

// OnReload registers a callback run after every successful reload.
func (s *Store) OnReload(fn func(Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload rebuilds the snapshot. A failed reload keeps the previous one.
func (s *Store) Reload() error {
	if s.loader == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, report, err := s.loader.Load()
	if err != nil {
		if s.current.Load() != nil {
			s.logger.Error("Dataset reload failed, keeping previous snapshot",
				zap.String("fingerprint", s.Current().Fingerprint()),
				zap.Error(err),
			)
		}
		return err
	}

	previous := s.current.Load()
	s.swap(snap, report)

	for _, w := range report.Warnings {
		s.logger.Warn("Dataset warning", zap.String("warning", w))
	}
	if previous != nil && previous.Fingerprint() != snap.Fingerprint() {
		s.logger.Info("Dataset snapshot replaced",
			zap.String("previous", previous.Fingerprint()),
			zap.String("current", snap.Fingerprint()),
		)
	}
	for _, fn := range s.onReload {
		fn(report)
	}
	return nil
}

func (s *Store) swap(snap *catalog.Snapshot, report Report) {
	s.current.Store(snap)
	s.report.Store(&report)
	s.loadedAt.Store(time.Now().UnixNano())
}

// HealthCheck reports whether a snapshot is installed.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.Current() == nil {
		return errors.New("no dataset snapshot loaded")
	}
	return nil
}
