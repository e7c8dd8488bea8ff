package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController() *Controller {
	return New("test", zerolog.Nop())
}

func TestBeginAndCompleteLoads(t *testing.T) {
	c := newController()

	tok, ctx := c.Begin(context.Background())
	require.NotNil(t, ctx)
	assert.NoError(t, ctx.Err())

	loaded := false
	outcome := c.Complete(tok, nil, Handlers{OnLoaded: func() { loaded = true }})

	assert.Equal(t, OutcomeLoaded, outcome)
	assert.True(t, loaded)
	assert.Error(t, ctx.Err(), "settled request context should be released")
	assert.Equal(t, OutcomeStale, c.Complete(tok, nil, Handlers{}), "a token settles once")
}

func TestBeginSupersedesAndAbortsPrevious(t *testing.T) {
	c := newController()

	tokA, ctxA := c.Begin(context.Background())
	tokB, ctxB := c.Begin(context.Background())

	assert.ErrorIs(t, ctxA.Err(), context.Canceled, "superseded request should be aborted")
	assert.NoError(t, ctxB.Err())
	assert.Equal(t, OutcomeStale, c.Complete(tokA, nil, Handlers{}))
	assert.Equal(t, OutcomeLoaded, c.Complete(tokB, nil, Handlers{}))
}

func TestLaterResponseWinsRegardlessOfArrivalOrder(t *testing.T) {
	c := newController()
	var applied []string

	tokA, _ := c.Begin(context.Background())
	tokB, _ := c.Begin(context.Background())

	// B arrives first, then the slow A.
	outB := c.Complete(tokB, nil, Handlers{OnLoaded: func() { applied = append(applied, "B") }})
	outA := c.Complete(tokA, nil, Handlers{OnLoaded: func() { applied = append(applied, "A") }})

	assert.Equal(t, OutcomeLoaded, outB)
	assert.Equal(t, OutcomeStale, outA)
	assert.Equal(t, []string{"B"}, applied)
}

func TestStaleErrorsAreDiscarded(t *testing.T) {
	c := newController()
	tokA, _ := c.Begin(context.Background())
	tokB, _ := c.Begin(context.Background())

	called := false
	out := c.Complete(tokA, errors.New("boom"), Handlers{OnError: func(error) { called = true }})

	assert.Equal(t, OutcomeStale, out)
	assert.False(t, called)
	assert.Equal(t, OutcomeLoaded, c.Complete(tokB, nil, Handlers{}), "the current load is unaffected")
}

func TestNetworkErrorSurfaces(t *testing.T) {
	c := newController()
	tok, _ := c.Begin(context.Background())

	var got error
	out := c.Complete(tok, fmt.Errorf("execute request: %w", errors.New("connection refused")), Handlers{
		OnError: func(err error) { got = err },
	})

	assert.Equal(t, OutcomeFailed, out)
	assert.ErrorContains(t, got, "connection refused")
}

func TestOwnCancellationIsSilent(t *testing.T) {
	c := newController()
	parent, cancel := context.WithCancel(context.Background())
	tok, ctx := c.Begin(parent)
	cancel()

	called, abandoned := false, false
	out := c.Complete(tok, fmt.Errorf("execute request: %w", ctx.Err()), Handlers{
		OnLoaded:    func() { called = true },
		OnError:     func(error) { called = true },
		OnCancelled: func() { abandoned = true },
	})

	assert.Equal(t, OutcomeCancelled, out)
	assert.False(t, called)
	assert.True(t, abandoned)
}

func TestForeignCancellationIsNetworkError(t *testing.T) {
	c := newController()
	tok, _ := c.Begin(context.Background())

	// The token's own context is live, so context.Canceled came from elsewhere.
	out := c.Complete(tok, context.Canceled, Handlers{})
	assert.Equal(t, OutcomeFailed, out)
}

func TestCancelWithNothingInFlightIsNoop(t *testing.T) {
	c := newController()
	c.Cancel()
	c.Cancel()

	tok, ctx := c.Begin(context.Background())
	assert.NoError(t, ctx.Err(), "an earlier idle cancel must not affect the next load")
	assert.Equal(t, OutcomeLoaded, c.Complete(tok, nil, Handlers{}))
	c.Cancel()

	next, _ := c.Begin(context.Background())
	assert.Equal(t, OutcomeLoaded, c.Complete(next, nil, Handlers{}))
}

func TestCancelInvalidatesAndAborts(t *testing.T) {
	c := newController()
	tok, ctx := c.Begin(context.Background())
	c.Cancel()
	c.Cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	called := false
	out := c.Complete(tok, nil, Handlers{OnLoaded: func() { called = true }})
	assert.Equal(t, OutcomeStale, out)
	assert.False(t, called)
}

func TestZeroTokenIsNeverCurrent(t *testing.T) {
	c := newController()
	assert.Equal(t, OutcomeStale, c.Complete(Token{}, nil, Handlers{}))
	c.Begin(context.Background())
	assert.Equal(t, OutcomeStale, c.Complete(Token{}, nil, Handlers{}))
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "stale", OutcomeStale.String())
}
