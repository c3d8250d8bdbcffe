package citysuggest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader fetches partitions from a Source and appends them to a Store.
type Loader struct {
	src         Source
	store       *Store
	logger      *zap.Logger
	concurrency int
	metrics     *loaderMetrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger partition failures are reported to.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency caps the number of partitions fetched at once.
// 0, the default, starts every partition immediately.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		l.concurrency = n
	}
}

// WithMetrics registers loader metrics with reg.
func WithMetrics(reg prometheus.Registerer) LoaderOption {
	return func(l *Loader) {
		l.metrics = newLoaderMetrics(reg)
	}
}

// NewLoader creates a Loader that reads from src into store.
func NewLoader(src Source, store *Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:    src,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PartitionFailure records why a partition contributed no records.
type PartitionFailure struct {
	Ref PartitionRef
	Err error
}

func (f PartitionFailure) Error() string {
	return fmt.Sprintf("partition %d (%s): %v", f.Ref.Index, f.Ref.Location, f.Err)
}

func (f PartitionFailure) Unwrap() error { return f.Err }

// LoadReport summarizes a finished load.
type LoadReport struct {
	Total    int                // Partitions requested
	Loaded   int                // Partitions that contributed records
	Failed   int                // Partitions downgraded to empty
	Records  int                // Records appended to the store
	Failures []PartitionFailure // Sorted by partition index
	Duration time.Duration
}

// Err returns the partition failures combined into one error, or nil if every
// partition loaded. It is diagnostic only: a load never fails as a whole.
func (r *LoadReport) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// LoadAll fetches every partition concurrently and appends each successful one
// to the store as soon as it settles. It returns once all partitions have
// settled. Failures are logged and reported, never returned; there is no retry.
func (l *Loader) LoadAll(ctx context.Context, refs []PartitionRef) *LoadReport {
	return l.loadAll(ctx, refs, nil)
}

func (l *Loader) loadAll(ctx context.Context, refs []PartitionRef, onSettle func()) *LoadReport {
	start := time.Now()
	report := &LoadReport{Total: len(refs)}
	l.logger.Debug("loading partitions", zap.Int("partitions", len(refs)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			records, err := l.loadPartition(ctx, ref)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, PartitionFailure{Ref: ref, Err: err})
				l.metrics.failed()
				l.logger.Warn("partition failed to load",
					zap.Int("index", ref.Index),
					zap.String("partition", ref.Location),
					zap.Error(err))
			} else {
				// Appending under mu keeps the report and store counts in step.
				l.store.Append(records...)
				report.Loaded++
				report.Records += len(records)
				l.metrics.loaded(len(records))
			}
			if onSettle != nil {
				onSettle()
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Ref.Index < report.Failures[j].Ref.Index
	})
	report.Duration = time.Since(start)
	l.metrics.finished(report.Duration)

	l.logger.Info("partitions loaded",
		zap.Int("loaded", report.Loaded),
		zap.Int("failed", report.Failed),
		zap.Int("records", report.Records),
		zap.Duration("duration", report.Duration))
	return report
}

// loadPartition retrieves and decodes a single partition.
func (l *Loader) loadPartition(ctx context.Context, ref PartitionRef) ([]CityRecord, error) {
	body, err := l.src.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return decodePartition(ref.Location, body)
}

// Initialization is a load running in the background.
type Initialization struct {
	done    chan struct{}
	total   int
	settled atomic.Int64
	report  *LoadReport
}

// Start launches loader.LoadAll in a new goroutine and returns immediately.
// The store fills up as partitions settle; callers may search it straight
// away or wait for the load to finish.
func Start(ctx context.Context, loader *Loader, refs []PartitionRef) *Initialization {
	in := &Initialization{
		done:  make(chan struct{}),
		total: len(refs),
	}
	go func() {
		defer close(in.done)
		in.report = loader.loadAll(ctx, refs, func() { in.settled.Add(1) })
	}()
	return in
}

// Done is closed once every partition has settled.
func (in *Initialization) Done() <-chan struct{} {
	return in.done
}

// Wait blocks until the load finishes or ctx is done. The error is only ever
// ctx.Err(); partition failures are in the report.
func (in *Initialization) Wait(ctx context.Context) (*LoadReport, error) {
	select {
	case <-in.done:
		return in.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Report returns the final report, or false while the load is still running.
func (in *Initialization) Report() (*LoadReport, bool) {
	select {
	case <-in.done:
		return in.report, true
	default:
		return nil, false
	}
}

// Progress returns how many partitions have settled out of the total.
func (in *Initialization) Progress() (settled, total int) {
	return int(in.settled.Load()), in.total
}
