package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/asyncdao/client"
	"github.com/syssam/asyncdao/jsonx"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of statements executed, inserts included.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsClient wraps a client.Client with statistics collection. It works
// with any implementation, database/sql and pgx alike.
type StatsClient struct {
	client.Client
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsClient.
type StatsOption func(*StatsClient)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsClient) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsClient) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the default logger.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(_ context.Context, query string, args []any, duration time.Duration) {
		slog.Warn("slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsClient wraps a Client with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open("mysql", dsn)
//	c := sql.NewStatsClient(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(),
//	)
//	dao := NewSomethingDAO(c)
//
//	// Later, check statistics:
//	fmt.Println(c.QueryStats().Stats())
func NewStatsClient(c client.Client, opts ...StatsOption) *StatsClient {
	s := &StatsClient{
		Client:        c,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (s *StatsClient) QueryStats() *QueryStats {
	return s.stats
}

// SlowThreshold returns the current slow statement threshold.
func (s *StatsClient) SlowThreshold() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (s *StatsClient) SetSlowThreshold(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowThreshold = threshold
}

// Query runs a query and records statistics.
func (s *StatsClient) Query(ctx context.Context, q sq.Sqlizer) ([]jsonx.Object, error) {
	start := time.Now()
	rows, err := s.Client.Query(ctx, q)
	s.record(ctx, q, start, err, true)
	return rows, err
}

// Exec runs a statement and records statistics.
func (s *StatsClient) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	start := time.Now()
	n, err := s.Client.Exec(ctx, q)
	s.record(ctx, q, start, err, false)
	return n, err
}

// InsertReturning runs an insert and records statistics.
func (s *StatsClient) InsertReturning(ctx context.Context, q sq.Sqlizer) (int64, error) {
	start := time.Now()
	id, err := s.Client.InsertReturning(ctx, q)
	s.record(ctx, q, start, err, false)
	return id, err
}

func (s *StatsClient) record(ctx context.Context, q sq.Sqlizer, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		s.stats.TotalQueries.Add(1)
	} else {
		s.stats.TotalExecs.Add(1)
	}
	s.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		s.stats.Errors.Add(1)
	}

	s.mu.RLock()
	threshold := s.slowThreshold
	hook := s.slowHook
	s.mu.RUnlock()

	if duration > threshold {
		s.stats.SlowQueries.Add(1)
		if hook != nil {
			query, args, _ := q.ToSql()
			hook(ctx, query, args, duration)
		}
	}
}

// DebugClient wraps a Client and logs every statement before running it.
type DebugClient struct {
	client.Client
	log func(context.Context, ...any)
}

// DebugOption configures the DebugClient.
type DebugOption func(*DebugClient)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugClient) {
		d.log = logFunc
	}
}

// NewDebugClient wraps a Client with statement logging.
func NewDebugClient(c client.Client, opts ...DebugOption) *DebugClient {
	d := &DebugClient{
		Client: c,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugClient) logf(ctx context.Context, op string, q sq.Sqlizer) {
	query, args, err := q.ToSql()
	if err != nil {
		d.log(ctx, fmt.Sprintf("%s: invalid statement: %v", op, err))
		return
	}
	d.log(ctx, fmt.Sprintf("%s: %s args: %v", op, query, args))
}

// Query logs and runs a query.
func (d *DebugClient) Query(ctx context.Context, q sq.Sqlizer) ([]jsonx.Object, error) {
	d.logf(ctx, "query", q)
	return d.Client.Query(ctx, q)
}

// Exec logs and runs a statement.
func (d *DebugClient) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	d.logf(ctx, "exec", q)
	return d.Client.Exec(ctx, q)
}

// InsertReturning logs and runs an insert.
func (d *DebugClient) InsertReturning(ctx context.Context, q sq.Sqlizer) (int64, error) {
	d.logf(ctx, "insert", q)
	return d.Client.InsertReturning(ctx, q)
}

// Ensure interfaces are implemented.
var (
	_ client.Client = (*StatsClient)(nil)
	_ client.Client = (*DebugClient)(nil)
)

// OpenWithStats opens a database pool with statistics collection enabled.
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsClient, *QueryStats, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, nil, err
	}
	c := NewStatsClient(drv, opts...)
	return c, c.QueryStats(), nil
}
