package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded around every store call.
type Metrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "objgate_store_request_duration_seconds",
				Help:    "Latency of object store calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "objgate_store_requests_total",
				Help: "Object store calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.duration, m.calls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Calls exposes the per-operation counter.
func (m *Metrics) Calls() *prometheus.CounterVec {
	return m.calls
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrObjectNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	m.calls.WithLabelValues(op, outcome).Inc()
}

type instrumented struct {
	next Store
	m    *Metrics
}

// Instrument wraps s so each call is timed and counted.
func Instrument(s Store, m *Metrics) Store {
	return &instrumented{next: s, m: m}
}

func (i *instrumented) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (info ObjectInfo, err error) {
	defer func(start time.Time) { i.m.observe("put", start, err) }(time.Now())
	return i.next.Put(ctx, key, r, opt)
}

func (i *instrumented) Get(ctx context.Context, key string) (rc io.ReadCloser, info ObjectInfo, err error) {
	defer func(start time.Time) { i.m.observe("get", start, err) }(time.Now())
	return i.next.Get(ctx, key)
}

func (i *instrumented) Stat(ctx context.Context, key string) (info ObjectInfo, err error) {
	defer func(start time.Time) { i.m.observe("head", start, err) }(time.Now())
	return i.next.Stat(ctx, key)
}

func (i *instrumented) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { i.m.observe("delete", start, err) }(time.Now())
	return i.next.Delete(ctx, key)
}

func (i *instrumented) List(ctx context.Context) (items []ObjectInfo, err error) {
	defer func(start time.Time) { i.m.observe("list", start, err) }(time.Now())
	return i.next.List(ctx)
}

func (i *instrumented) PresignGet(ctx context.Context, key string, expiry time.Duration) (u string, err error) {
	defer func(start time.Time) { i.m.observe("presign_get", start, err) }(time.Now())
	return i.next.PresignGet(ctx, key, expiry)
}

func (i *instrumented) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (u string, err error) {
	defer func(start time.Time) { i.m.observe("presign_put", start, err) }(time.Now())
	return i.next.PresignPut(ctx, key, contentType, expiry)
}

func (i *instrumented) ObjectURL(key string) string {
	return i.next.ObjectURL(key)
}

func (i *instrumented) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { i.m.observe("ping", start, err) }(time.Now())
	return i.next.Ping(ctx)
}
