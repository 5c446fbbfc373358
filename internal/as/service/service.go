// Package service implements the attribute-source request pipeline: height
// gating, verification, callback delivery, relay and service registration.
package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"asnode/internal/as/callback"
	"asnode/internal/as/metrics"
	"asnode/internal/as/models"
	"asnode/internal/as/ports"
	"asnode/internal/as/store/pending"
	"asnode/internal/as/verifier"
)

const errorSinkBuffer = 64

// CallbackPoster delivers requests to the business service and error
// notifications to the node's error URL.
type CallbackPoster interface {
	Post(ctx context.Context, key, url string, body any) (*callback.Response, error)
	Notify(ctx context.Context, url string, body any) error
}

// Signer signs outbound data with the node key.
type Signer interface {
	Sign(data []byte) (string, error)
}

// URLProvider returns the node's callback configuration.
type URLProvider interface {
	Get() models.CallbackURLs
}

// Service drives requests from receipt to relay.
type Service struct {
	nodeID    string
	ledger    ports.Ledger
	transport ports.Transport
	local     ports.LocalStore
	pending   pending.Store
	queue     *pending.Queue
	verifier  *verifier.Verifier
	callbacks CallbackPoster
	urls      URLProvider
	signer    Signer
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger

	onOutcome    OutcomeFunc
	latestHeight atomic.Int64
	work         errgroup.Group
	relays       sync.WaitGroup
	errs         chan *StageError
}

// OutcomeFunc observes the final outcome of every request pass.
type OutcomeFunc func(requestID string, outcome Outcome, err error)

// Option configures a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func WithOutcomeFunc(fn OutcomeFunc) Option {
	return func(s *Service) {
		s.onOutcome = fn
	}
}

// WithMaxInFlight bounds how many requests are processed at once. Further
// requests wait for a free slot. Zero or less means no bound.
func WithMaxInFlight(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.work.SetLimit(n)
		}
	}
}

// WithURLProvider sets where error notifications are sent.
func WithURLProvider(urls URLProvider) Option {
	return func(s *Service) {
		s.urls = urls
	}
}

// Deps are the collaborators every Service needs.
type Deps struct {
	NodeID    string
	Ledger    ports.Ledger
	Transport ports.Transport
	Local     ports.LocalStore
	Pending   pending.Store
	Callbacks CallbackPoster
	Signer    Signer
}

func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		nodeID:    deps.NodeID,
		ledger:    deps.Ledger,
		transport: deps.Transport,
		local:     deps.Local,
		pending:   deps.Pending,
		callbacks: deps.Callbacks,
		signer:    deps.Signer,
		logger:    slog.Default(),
		tracer:    otel.Tracer("asnode/internal/as/service"),
		errs:      make(chan *StageError, errorSinkBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = pending.NewQueue(deps.Pending, s.LatestHeight)
	s.verifier = verifier.New(deps.Ledger, s.logger)
	return s
}

// LatestHeight is the highest ledger height observed so far.
func (s *Service) LatestHeight() int64 {
	return s.latestHeight.Load()
}

// ObserveHeight raises the latest known height. Lower values are ignored.
func (s *Service) ObserveHeight(height int64) {
	for {
		current := s.latestHeight.Load()
		if height <= current {
			return
		}
		if s.latestHeight.CompareAndSwap(current, height) {
			s.metrics.SetLatestHeight(height)
			return
		}
	}
}

// Run consumes the error sink until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	sink := &errorSink{
		inbox:   s.errs,
		notify:  s.notifyError,
		logger:  s.logger,
		metrics: s.metrics,
	}
	return sink.Run(ctx)
}

// Wait blocks until every dispatched request and every detached relay has
// finished. Relays are started by workers, so workers are joined first.
func (s *Service) Wait() {
	_ = s.work.Wait()
	s.relays.Wait()
}
