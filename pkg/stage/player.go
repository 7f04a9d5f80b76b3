package stage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vanderheijden86/pitchwalk/pkg/debug"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
)

// ErrPlayerClosed is returned by navigation calls once the player has stopped.
var ErrPlayerClosed = errors.New("stage: player closed")

// Timer is a cancelable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock wraps time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PlayerOption configures a Player.
type PlayerOption func(*playerOptions)

type playerOptions struct {
	clock  Clock
	buffer int
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) PlayerOption {
	return func(o *playerOptions) {
		o.clock = c
	}
}

// WithViewBuffer sets the capacity of the Views channel.
func WithViewBuffer(n int) PlayerOption {
	return func(o *playerOptions) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

type navKind int

const (
	navGoTo navKind = iota
	navNext
	navPrevious
	navReplay
)

type navCmd struct {
	kind  navKind
	index int
}

// Player drives a Walkthrough on its own event loop with real timers.
//
// Run owns the walkthrough; navigation calls are messages to that loop, so
// the walkthrough is only ever touched by one goroutine. On every selection
// change the loop stops the previous selection's timers and the generation
// guard in Apply discards any callback that had already fired.
type Player[R any] struct {
	walk  Walkthrough[R]
	clock Clock

	nav   chan navCmd
	query chan chan View[R]
	fired chan Advance
	views chan View[R]
	done  chan struct{}

	// timers is only touched by the Run goroutine.
	timers []Timer

	runOnce  sync.Once
	stopOnce sync.Once
}

// NewPlayer wraps w. The walkthrough is copied; the caller's value is not
// mutated by playback.
func NewPlayer[R any](w Walkthrough[R], opts ...PlayerOption) *Player[R] {
	o := playerOptions{clock: realClock{}, buffer: 8}
	for _, opt := range opts {
		opt(&o)
	}
	return &Player[R]{
		walk:  w,
		clock: o.clock,
		nav:   make(chan navCmd),
		query: make(chan chan View[R]),
		fired: make(chan Advance),
		views: make(chan View[R], o.buffer),
		done:  make(chan struct{}),
	}
}

// Views delivers the current view after every state change. It is closed
// when Run returns.
func (p *Player[R]) Views() <-chan View[R] {
	return p.views
}

// GoTo asks the loop to select record i.
func (p *Player[R]) GoTo(ctx context.Context, i int) error {
	return p.send(ctx, navCmd{kind: navGoTo, index: i})
}

// Next asks the loop to move forward one record.
func (p *Player[R]) Next(ctx context.Context) error {
	return p.send(ctx, navCmd{kind: navNext})
}

// Previous asks the loop to move back one record.
func (p *Player[R]) Previous(ctx context.Context) error {
	return p.send(ctx, navCmd{kind: navPrevious})
}

// Replay asks the loop to restart the reveal of the current record.
func (p *Player[R]) Replay(ctx context.Context) error {
	return p.send(ctx, navCmd{kind: navReplay})
}

// Current returns the loop's view once every navigation sent before it has
// been processed.
func (p *Player[R]) Current(ctx context.Context) (View[R], error) {
	reply := make(chan View[R], 1)
	select {
	case p.query <- reply:
	case <-p.done:
		return View[R]{}, ErrPlayerClosed
	case <-ctx.Done():
		return View[R]{}, ctx.Err()
	}
	return <-reply, nil
}

func (p *Player[R]) send(ctx context.Context, c navCmd) error {
	select {
	case p.nav <- c:
		return nil
	case <-p.done:
		return ErrPlayerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop. Safe to call more than once.
func (p *Player[R]) Close() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Run is the event loop. It starts the reveal for the initial selection and
// processes navigation and timer events until ctx is done or Close is called.
// Run may only be called once.
func (p *Player[R]) Run(ctx context.Context) error {
	started := false
	p.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("stage: player already running")
	}
	defer close(p.views)
	defer p.Close()
	defer p.stopTimers()

	p.schedule(p.walk.Start())
	if err := p.publish(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case c := <-p.nav:
			var sched []Advance
			before := p.walk.CurrentView()
			switch c.kind {
			case navGoTo:
				sched = p.walk.GoTo(c.index)
			case navNext:
				sched = p.walk.Next()
			case navPrevious:
				sched = p.walk.Previous()
			case navReplay:
				sched = p.walk.Start()
			}
			if p.walk.CurrentView().Gen == before.Gen {
				// Next/Previous at a bound: nothing changed.
				continue
			}
			metrics.Selections.Inc()
			p.schedule(sched)
			if err := p.publish(ctx); err != nil {
				return err
			}
		case reply := <-p.query:
			reply <- p.walk.CurrentView()
		case a := <-p.fired:
			if !p.walk.Apply(a) {
				metrics.AdvancesDropped.Inc()
				debug.Log("stage: dropped advance gen=%d phase=%s (current gen=%d)", a.Gen, a.Phase, p.walk.CurrentView().Gen)
				continue
			}
			metrics.AdvancesApplied.Inc()
			if err := p.publish(ctx); err != nil {
				return err
			}
		}
	}
}

// schedule cancels outstanding timers and arms one per advance.
func (p *Player[R]) schedule(sched []Advance) {
	p.stopTimers()
	for _, a := range sched {
		p.timers = append(p.timers, p.clock.AfterFunc(a.After, func() {
			select {
			case p.fired <- a:
			case <-p.done:
			}
		}))
	}
}

func (p *Player[R]) stopTimers() {
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = p.timers[:0]
}

func (p *Player[R]) publish(ctx context.Context) error {
	select {
	case p.views <- p.walk.CurrentView():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}
