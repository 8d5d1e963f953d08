package counter

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const defaultProbeTimeout = 2 * time.Second

type counterMetrics struct {
	operations *prometheus.CounterVec
	backend    *prometheus.GaugeVec
}

func newCounterMetrics(r prometheus.Registerer) *counterMetrics {
	var m counterMetrics

	m.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_operations_total",
		Help: "Total number of counter operations",
	}, []string{"backend", "operation", "result"})

	m.backend = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "counter_backend",
		Help: "Counter backend selected at startup",
	}, []string{"backend"})

	r.MustRegister(m.operations, m.backend)
	return &m
}

type options struct {
	probeTimeout time.Duration
	shards       uint64
}

// Option configures NewState
type Option func(*options)

// WithProbeTimeout bounds the redis connectivity check run by NewState
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.probeTimeout = d
	}
}

// WithShards sets the number of lock shards of the memory storage
func WithShards(n uint64) Option {
	return func(o *options) {
		o.shards = n
	}
}

// State is the visitor counter shared by all request handlers. It is backed
// by redis or by process memory; the choice is made once by NewState.
type State struct {
	storage Storage
	backend string
	closer  io.Closer

	logger  *logrus.Logger
	metrics *counterMetrics
}

// NewState connects to the redis store described by the descriptor url and
// checks it accepts writes. If the client can't be built or the check fails
// the state falls back to memory storage for its whole lifetime.
func NewState(descriptor string, logger *logrus.Logger, registerer prometheus.Registerer, opts ...Option) *State {
	o := options{
		probeTimeout: defaultProbeTimeout,
		shards:       defaultShardCount,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &State{
		logger:  logger,
		metrics: newCounterMetrics(registerer),
	}

	rs, err := connect(descriptor, o.probeTimeout)
	if err != nil {
		logger.WithError(err).Warn("using memory store")
		s.storage = NewMemoryStorage(o.shards)
		s.backend = BackendMemory
	} else {
		s.storage = rs
		s.backend = BackendRedis
		s.closer = rs
	}

	logger.WithField("backend", s.backend).Info("counter backend selected")
	s.metrics.backend.WithLabelValues(s.backend).Set(1)

	return s
}

func connect(descriptor string, probeTimeout time.Duration) (*RedisStorage, error) {
	redisOpts, err := redis.ParseURL(descriptor)
	if err != nil {
		// url errors quote the raw descriptor, credentials included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errors.Wrap(err, "error constructing redis client")
	}
	redisOpts.DialTimeout = probeTimeout

	client := redis.NewClient(redisOpts)
	rs := NewRedisStorage(client)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := rs.probe(ctx); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "error connecting to redis at %s", redisOpts.Addr)
	}

	return rs, nil
}

// Increment adds one to the counter of the given key and returns its new value
func (s *State) Increment(ctx context.Context, key string) (int64, error) {
	value, err := s.storage.Increment(ctx, key)
	s.observe("increment", err)
	return value, err
}

// Get returns the current counter value of the given key. Keys that were never
// incremented are reported with an error wrapping ErrNonExistingCounter.
func (s *State) Get(ctx context.Context, key string) (int64, error) {
	value, err := s.storage.Get(ctx, key)
	s.observe("get", err)
	return value, err
}

// Backend returns the name of the storage backing the state
func (s *State) Backend() string {
	return s.backend
}

// Close releases the redis client, if any
func (s *State) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *State) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNonExistingCounter):
		result = "not_found"
	default:
		result = "error"
		s.logger.WithError(err).WithField("backend", s.backend).Debugf("counter %s failed", op)
	}

	s.metrics.operations.WithLabelValues(s.backend, op, result).Inc()
}
