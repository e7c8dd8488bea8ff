// Package fetch implements the cancellable fetch controller that backs every
// loader.
//
// A Controller owns at most one current Token. Begin supersedes the previous
// token and aborts its transport through context cancellation. Complete is
// the only place a response may touch state: it checks the token and runs the
// caller's handler under one lock, so a slow response to a superseded request
// can never be applied after a later one, whatever order they arrive in.
package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/tabula/internal/metrics"
	"github.com/five82/tabula/internal/resource"
)

// Status is the tri-state load result plus the idle state before any load.
// The stores carry it; the controller only decides which outcome applies.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Outcome reports what Complete did with a response.
type Outcome int

const (
	// OutcomeStale means the token was superseded or cancelled; nothing ran.
	OutcomeStale Outcome = iota
	OutcomeLoaded
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "stale"
	}
}

// Token identifies one load attempt.
type Token struct {
	seq uint64
	ctx context.Context
}

// Handlers receive a current token's result inside Complete.
type Handlers struct {
	OnLoaded    func()
	OnError     func(err error)
	OnCancelled func()
}

// Controller issues one logical stream of loads. The zero value is not
// usable; call New.
type Controller struct {
	name   string
	logger zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	current uint64
	cancel  context.CancelFunc
}

// New returns an idle controller. name labels logs and metrics.
func New(name string, logger zerolog.Logger) *Controller {
	return &Controller{
		name:   name,
		logger: logger.With().Str("component", "loader").Str("loader", name).Logger(),
	}
}

// Begin starts a load: it cancels the current token, if any, and returns a
// fresh current token with the context the request must run under.
func (c *Controller) Begin(parent context.Context) (Token, context.Context) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.logger.Debug().Uint64("token", c.current).Msg("load superseded")
	}
	c.seq++
	c.current = c.seq
	c.cancel = cancel
	return Token{seq: c.seq, ctx: ctx}, ctx
}

// Complete settles a response. For a current token it classifies err and
// calls the matching handler while holding the controller lock; for a stale
// token it does nothing.
func (c *Controller) Complete(tok Token, err error, h Handlers) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := c.completeLocked(tok, err, h)
	metrics.LoadsTotal.WithLabelValues(c.name, outcome.String()).Inc()
	return outcome
}

func (c *Controller) completeLocked(tok Token, err error, h Handlers) Outcome {
	if tok.seq == 0 || tok.seq != c.current {
		c.logger.Debug().Uint64("token", tok.seq).Msg("discarding stale response")
		return OutcomeStale
	}

	cancelled := err != nil && ownCancellation(tok, err)
	c.release()

	if err == nil {
		if h.OnLoaded != nil {
			h.OnLoaded()
		}
		return OutcomeLoaded
	}

	if cancelled {
		c.logger.Debug().Err(err).Msg("request cancelled")
		if h.OnCancelled != nil {
			h.OnCancelled()
		}
		return OutcomeCancelled
	}

	c.logger.Error().Err(err).Str("class", string(resource.Classify(err))).Msg("load failed")
	if h.OnError != nil {
		h.OnError(err)
	}
	return OutcomeFailed
}

// Cancel invalidates the current token and aborts its request. It is safe
// to call with nothing in flight and safe to call repeatedly.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == 0 {
		return
	}
	c.logger.Debug().Uint64("token", c.current).Msg("load cancelled")
	c.release()
}

func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = 0
}

func ownCancellation(tok Token, err error) bool {
	if !errors.Is(err, context.Canceled) {
		return false
	}
	return tok.ctx != nil && tok.ctx.Err() != nil
}
