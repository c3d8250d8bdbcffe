package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrThrottled is returned when submissions arrive faster than the configured rate.
var ErrThrottled = errors.New("contact: too many submissions, try again later")

// Receipt identifies a delivered submission.
type Receipt struct {
	ID     string
	SentAt time.Time
}

// Submitter forwards forms to a Relay.
type Submitter struct {
	relay    Relay
	limiter  *rate.Limiter
	logger   *zap.Logger
	outcomes *prometheus.CounterVec
	now      func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the submission logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit rejects submissions beyond r per second with bursts of burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Submitter) {
		s.limiter = rate.NewLimiter(r, burst)
	}
}

// WithMetrics counts submissions by outcome in reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Submitter) {
		if reg == nil {
			return
		}
		s.outcomes = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "citysuggest",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions, by outcome (sent, failed, throttled)",
		}, []string{"outcome"})
	}
}

// NewSubmitter creates a Submitter sending through relay.
func NewSubmitter(relay Relay, opts ...Option) *Submitter {
	s := &Submitter{
		relay:  relay,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit forwards form to the relay exactly once.
// On failure the error is meant to be shown to the user as is.
func (s *Submitter) Submit(ctx context.Context, form Form) (Receipt, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.count("throttled")
		return Receipt{}, ErrThrottled
	}

	msg := Message{ID: uuid.NewString(), Params: form.Params()}
	if err := s.relay.Send(ctx, msg); err != nil {
		s.count("failed")
		s.logger.Warn("contact message not sent", zap.String("id", msg.ID), zap.Error(err))
		return Receipt{ID: msg.ID}, fmt.Errorf("sending message: %w", err)
	}

	s.count("sent")
	s.logger.Info("contact message sent", zap.String("id", msg.ID), zap.String("city", form.City))
	return Receipt{ID: msg.ID, SentAt: s.now()}, nil
}

func (s *Submitter) count(outcome string) {
	if s.outcomes != nil {
		s.outcomes.WithLabelValues(outcome).Inc()
	}
}
