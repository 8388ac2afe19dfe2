package docstore

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"time"
)

type instrumentedStore struct {
	Store
}

// WithMetrics reports latency and failures of every round trip to Prometheus.
func WithMetrics(store Store) Store {
	return &instrumentedStore{Store: store}
}

func (s *instrumentedStore) Get(ctx context.Context, path Path) (*Snapshot, error) {
	defer observe("get", time.Now())
	snap, err := s.Store.Get(ctx, path)
	countFailure("get", err)
	return snap, err
}

func (s *instrumentedStore) Set(ctx context.Context, path Path, data Data) error {
	defer observe("set", time.Now())
	err := s.Store.Set(ctx, path, data)
	countFailure("set", err)
	return err
}

func (s *instrumentedStore) Merge(ctx context.Context, path Path, data Data) error {
	defer observe("merge", time.Now())
	err := s.Store.Merge(ctx, path, data)
	countFailure("merge", err)
	return err
}

func (s *instrumentedStore) Update(ctx context.Context, path Path, updates ...Update) error {
	defer observe("update", time.Now())
	err := s.Store.Update(ctx, path, updates...)
	countFailure("update", err)
	return err
}

func (s *instrumentedStore) Add(ctx context.Context, collection string, data Data) (Path, error) {
	defer observe("add", time.Now())
	path, err := s.Store.Add(ctx, collection, data)
	countFailure("add", err)
	return path, err
}

func (s *instrumentedStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	defer observe("query", time.Now())
	snapshots, err := s.Store.Query(ctx, q)
	countFailure("query", err)
	return snapshots, err
}

func observe(operation string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func countFailure(operation string, err error) {
	if err != nil && !IsNotFound(err) {
		metrics.StoreFailuresCounter.WithLabelValues(operation).Inc()
	}
}
