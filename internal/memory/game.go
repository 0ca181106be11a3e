// Package memory implements the Polygon memory-matching game: a grid of
// face-down cards revealed two at a time, with a running clock and score.
//
// A Game owns all mutable state behind a single mutex. Player input, the
// pair-resolution timeout and the clock tick all take that mutex, so state
// changes are applied one at a time in the order they happen. Views are
// notified through a Renderer; timers go through a Scheduler.
package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
)

const (
	// Award is added to the score for every matched pair.
	Award = 2
	// DefaultSize is the grid side used when none is chosen.
	DefaultSize = 4
	// ResolveDelay is how long two revealed cards stay open before comparing.
	ResolveDelay = time.Second
	// TickInterval is the clock resolution.
	TickInterval = time.Second
)

// ErrInvalidSize is returned for grid sides outside Sizes.
var ErrInvalidSize = errors.New("grid size must be 4, 6 or 8")

// Options configure a Game. Zero values select the defaults.
type Options struct {
	ResolveDelay time.Duration
	TickInterval time.Duration
	Scheduler    Scheduler
	Renderer     Renderer
	// Shuffle orders the deck of faces. Defaults to a uniform shuffle.
	Shuffle func([]int)
	Logf    func(format string, v ...any)
}

func (o Options) withDefaults() Options {
	if o.ResolveDelay <= 0 {
		o.ResolveDelay = ResolveDelay
	}
	if o.TickInterval <= 0 {
		o.TickInterval = TickInterval
	}
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler{}
	}
	if o.Renderer == nil {
		o.Renderer = NopRenderer{}
	}
	if o.Shuffle == nil {
		o.Shuffle = defaultShuffle
	}
	if o.Logf == nil {
		o.Logf = func(string, ...any) {}
	}
	return o
}

// Snapshot is a point-in-time copy of a game.
type Snapshot struct {
	Size     int
	Cards    []Card
	Score    int
	Clock    Clock
	Matched  int
	Pairs    int
	Attempts int
	Locked   bool
	Running  bool
	Finished bool
}

// Summary returns the end-of-game result, or false while still playing.
func (s Snapshot) Summary() (Summary, bool) {
	if !s.Finished {
		return Summary{}, false
	}
	return Summary{Score: s.Score, Time: s.Clock, Attempts: s.Attempts, Pairs: s.Pairs}, true
}

// Game is one memory game.
type Game struct {
	mu   sync.Mutex
	opts Options

	size  int
	cards []Card

	pending int // index of the first card of the pair window, -1 if none
	opened  int
	locked  bool

	score    int
	matched  int
	attempts int
	finished bool

	clock   Clock
	running bool

	clockTask   Task
	resolveTask Task

	// epoch changes on every Configure; callbacks scheduled under an older
	// epoch are dropped.
	epoch uint64
}

// New creates a game with a freshly dealt size x size grid.
func New(size int, opts Options) (*Game, error) {
	g := &Game{opts: opts.withDefaults(), pending: -1}
	if err := g.Configure(size); err != nil {
		return nil, err
	}
	return g, nil
}

// Configure sets the grid side, resets all state, deals a new grid and
// renders it. An invalid size leaves the game untouched.
func (g *Game) Configure(size int) error {
	if !ValidSize(size) {
		return ErrInvalidSize
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(size)
	return nil
}

// Restart deals a new grid of the current size.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(g.size)
}

func (g *Game) reset(size int) {
	g.stopClock()
	if g.resolveTask != nil {
		g.resolveTask.Cancel()
		g.resolveTask = nil
	}
	g.epoch++

	g.size = size
	g.cards = NewGrid(size, g.opts.Shuffle)
	g.pending, g.opened, g.locked = -1, 0, false
	g.score, g.matched, g.attempts = 0, 0, 0
	g.finished = false
	g.clock = Clock{}

	g.opts.Logf("Dealt %dx%d grid (%d pairs)", size, size, Pairs(size))
	g.opts.Renderer.RenderGrid(g.size, g.copyCards())
	g.opts.Renderer.RenderScore(g.score)
	g.opts.Renderer.RenderTimer(g.clock)
}

// Select reveals the card at index. It reports false and changes nothing if
// the click is ignored: out of range, already face up, re-clicking the
// pending card, input locked for resolution, or game finished.
//
// The second card of a pair window locks input and schedules the comparison
// after the resolve delay.
func (g *Game) Select(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finished || g.locked || index < 0 || index >= len(g.cards) {
		return false
	}
	card := &g.cards[index]
	if card.Revealed || card.Matched || index == g.pending {
		return false
	}

	if !g.running {
		g.startClock()
	}
	card.Revealed = true
	g.opened++
	g.opts.Renderer.RenderGrid(g.size, g.copyCards())

	if g.pending >= 0 && g.opened == 2 {
		g.locked = true
		a, b, epoch := g.pending, index, g.epoch
		g.resolveTask = g.opts.Scheduler.After(g.opts.ResolveDelay, func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.epoch != epoch {
				return
			}
			g.resolve(a, b)
		})
		return true
	}
	g.pending = index
	return true
}

// resolve compares the two cards of a pair window. Callers hold g.mu.
func (g *Game) resolve(a, b int) {
	g.resolveTask = nil
	first, second := &g.cards[a], &g.cards[b]
	g.attempts++

	if first.Face == second.Face {
		first.Matched, second.Matched = true, true
		g.score += Award
		g.matched++
		g.opts.Logf("Matched face %d (%d/%d pairs)", first.Face, g.matched, Pairs(g.size))
		g.opts.Renderer.RenderScore(g.score)
	} else {
		first.Revealed, second.Revealed = false, false
	}

	g.pending, g.opened, g.locked = -1, 0, false
	g.opts.Renderer.RenderGrid(g.size, g.copyCards())

	if g.matched == Pairs(g.size) {
		g.finish()
	}
}

func (g *Game) finish() {
	g.stopClock()
	g.finished = true
	summary := Summary{Score: g.score, Time: g.clock, Attempts: g.attempts, Pairs: g.matched}
	g.opts.Logf("Game finished: score %d in %s after %d attempts", summary.Score, summary.Time, summary.Attempts)
	g.opts.Renderer.RenderSummary(summary)
}

// Tick advances the clock by one second if the game is running.
func (g *Game) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tick()
}

func (g *Game) tick() {
	if !g.running || g.finished {
		return
	}
	g.clock.Advance()
	g.opts.Renderer.RenderTimer(g.clock)
}

func (g *Game) startClock() {
	g.running = true
	epoch := g.epoch
	g.clockTask = g.opts.Scheduler.Every(g.opts.TickInterval, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.epoch != epoch {
			return
		}
		g.tick()
	})
}

func (g *Game) stopClock() {
	g.running = false
	if g.clockTask != nil {
		g.clockTask.Cancel()
		g.clockTask = nil
	}
}

// Close stops the clock and drops any pending comparison. The game must not
// be used afterwards.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopClock()
	if g.resolveTask != nil {
		g.resolveTask.Cancel()
		g.resolveTask = nil
	}
	g.epoch++
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		Size:     g.size,
		Cards:    g.copyCards(),
		Score:    g.score,
		Clock:    g.clock,
		Matched:  g.matched,
		Pairs:    Pairs(g.size),
		Attempts: g.attempts,
		Locked:   g.locked,
		Running:  g.running,
		Finished: g.finished,
	}
}

// Size returns the current grid side.
func (g *Game) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.size
}

func (g *Game) copyCards() []Card {
	return lo.Map(g.cards, func(c Card, _ int) Card { return c })
}
