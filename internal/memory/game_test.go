package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps every render call for assertions.
type recorder struct {
	grids     int
	scores    []int
	timers    []Clock
	summaries []Summary
}

func (r *recorder) RenderGrid(int, []Card) { r.grids++ }
func (r *recorder) RenderScore(score int) { r.scores = append(r.scores, score) }
func (r *recorder) RenderTimer(clock Clock) { r.timers = append(r.timers, clock) }
func (r *recorder) RenderSummary(s Summary) { r.summaries = append(r.summaries, s) }

// newTestGame deals an unshuffled grid, so card i and card i+pairs match.
func newTestGame(t *testing.T, size int) (*Game, *ManualScheduler, *recorder) {
	t.Helper()
	sched := NewManualScheduler()
	rec := &recorder{}
	g, err := New(size, Options{
		Scheduler: sched,
		Renderer:  rec,
		Shuffle:   func([]int) {},
	})
	require.NoError(t, err)
	return g, sched, rec
}

func TestNewGrid(t *testing.T) {
	for _, size := range Sizes {
		t.Run(fmt.Sprintf("%dx%d", size, size), func(t *testing.T) {
			cards := NewGrid(size, defaultShuffle)
			require.Len(t, cards, size*size)

			counts := map[int]int{}
			for i, c := range cards {
				assert.Equal(t, i, c.Index)
				assert.False(t, c.Revealed)
				assert.False(t, c.Matched)
				counts[c.Face]++
			}
			assert.Len(t, counts, Pairs(size))
			for face, n := range counts {
				assert.GreaterOrEqual(t, face, 1)
				assert.LessOrEqual(t, face, Pairs(size))
				assert.Equal(t, 2, n, "face %d", face)
			}
		})
	}
}

func TestCardImage(t *testing.T) {
	assert.Equal(t, "/static/pics/7.jpg", Card{Face: 7}.Image())
}

func TestConfigureRejectsInvalidSize(t *testing.T) {
	_, err := New(5, Options{})
	assert.ErrorIs(t, err, ErrInvalidSize)

	g, _, _ := newTestGame(t, 4)
	require.True(t, g.Select(0))
	assert.ErrorIs(t, g.Configure(3), ErrInvalidSize)

	snap := g.Snapshot()
	assert.Equal(t, 4, snap.Size)
	assert.True(t, snap.Cards[0].Revealed, "state must survive a rejected size")
}

func TestConfigureResets(t *testing.T) {
	g, sched, rec := newTestGame(t, 4)
	g.Select(0)
	g.Select(8)
	sched.Advance(ResolveDelay)
	require.Equal(t, Award, g.Snapshot().Score)

	require.NoError(t, g.Configure(6))
	snap := g.Snapshot()
	assert.Equal(t, 6, snap.Size)
	assert.Len(t, snap.Cards, 36)
	assert.Zero(t, snap.Score)
	assert.Zero(t, snap.Matched)
	assert.Equal(t, Clock{}, snap.Clock)
	assert.False(t, snap.Running)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, rec.scores[len(rec.scores)-1])
}

func TestSelectRevealedCardIsNoop(t *testing.T) {
	g, _, _ := newTestGame(t, 4)
	require.True(t, g.Select(3))
	before := g.Snapshot()

	assert.False(t, g.Select(3))
	assert.Equal(t, before, g.Snapshot())
}

func TestSelectOutOfRangeIsNoop(t *testing.T) {
	g, _, _ := newTestGame(t, 4)
	assert.False(t, g.Select(-1))
	assert.False(t, g.Select(16))
	assert.False(t, g.Snapshot().Running)
}

func TestSelectWhileLockedIsNoop(t *testing.T) {
	g, sched, _ := newTestGame(t, 4)
	require.True(t, g.Select(0))
	require.True(t, g.Select(1))
	require.True(t, g.Snapshot().Locked)

	before := g.Snapshot()
	assert.False(t, g.Select(2))
	assert.Equal(t, before, g.Snapshot())

	sched.Advance(ResolveDelay)
	assert.False(t, g.Snapshot().Locked)
	assert.True(t, g.Select(2))
}

func TestMatchingPair(t *testing.T) {
	g, sched, rec := newTestGame(t, 4)
	g.Select(2)
	g.Select(10)

	sched.Advance(ResolveDelay - time.Millisecond)
	assert.True(t, g.Snapshot().Locked, "resolution waits for the full delay")

	sched.Advance(time.Millisecond)
	snap := g.Snapshot()
	assert.Equal(t, Award, snap.Score)
	assert.Equal(t, 1, snap.Matched)
	assert.Equal(t, 1, snap.Attempts)
	assert.True(t, snap.Cards[2].Matched)
	assert.True(t, snap.Cards[10].Matched)
	assert.False(t, snap.Locked)
	assert.Contains(t, rec.scores, Award)

	assert.False(t, g.Select(2), "matched cards stay locked open")
	assert.False(t, g.Select(10))
}

func TestNonMatchingPair(t *testing.T) {
	g, sched, _ := newTestGame(t, 4)
	g.Select(0)
	g.Select(1)
	sched.Advance(ResolveDelay)

	snap := g.Snapshot()
	assert.Zero(t, snap.Score)
	assert.Zero(t, snap.Matched)
	assert.Equal(t, 1, snap.Attempts)
	assert.False(t, snap.Cards[0].Revealed)
	assert.False(t, snap.Cards[1].Revealed)
	assert.False(t, snap.Locked)

	assert.True(t, g.Select(0), "hidden cards can be picked again")
}

func TestCompleteGame(t *testing.T) {
	g, sched, rec := newTestGame(t, 4)
	pairs := Pairs(4)
	require.Equal(t, 8, pairs)

	for i := 0; i < pairs; i++ {
		require.True(t, g.Select(i))
		require.True(t, g.Select(i+pairs))
		sched.Advance(ResolveDelay)
	}

	snap := g.Snapshot()
	assert.True(t, snap.Finished)
	assert.False(t, snap.Running)
	assert.Equal(t, pairs*Award, snap.Score)
	assert.Equal(t, pairs, snap.Matched)
	assert.Equal(t, 0, sched.Pending(), "clock stopped")

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, Summary{Score: 16, Time: Clock{Seconds: 8}, Attempts: 8, Pairs: 8}, rec.summaries[0])
	summary, ok := snap.Summary()
	assert.True(t, ok)
	assert.Equal(t, rec.summaries[0], summary)

	sched.Advance(10 * time.Second)
	assert.Equal(t, Clock{Seconds: 8}, g.Snapshot().Clock, "clock stays stopped")
	assert.False(t, g.Select(0))

	g.Restart()
	assert.False(t, g.Snapshot().Finished)
	assert.True(t, g.Select(0))
}

func TestClockStartsOnFirstClick(t *testing.T) {
	g, sched, rec := newTestGame(t, 4)
	sched.Advance(5 * time.Second)
	assert.Equal(t, Clock{}, g.Snapshot().Clock)

	g.Select(0)
	assert.True(t, g.Snapshot().Running)
	sched.Advance(60 * time.Second)
	assert.Equal(t, Clock{Minutes: 1, Seconds: 0}, g.Snapshot().Clock)
	assert.Equal(t, "1:00", rec.timers[len(rec.timers)-1].String())
}

func TestTickIgnoredWhenIdle(t *testing.T) {
	g, _, _ := newTestGame(t, 4)
	g.Tick()
	assert.Equal(t, Clock{}, g.Snapshot().Clock)
}

func TestStaleResolutionIgnored(t *testing.T) {
	sched := NewManualScheduler()
	g, err := New(4, Options{Scheduler: sched, Shuffle: func([]int) {}})
	require.NoError(t, err)

	// Capture the callback without letting Configure cancel it.
	leaky := &leakyScheduler{ManualScheduler: sched}
	g.opts.Scheduler = leaky

	g.Select(0)
	g.Select(8)
	require.NoError(t, g.Configure(4))
	leaky.fire()

	snap := g.Snapshot()
	assert.Zero(t, snap.Score)
	assert.Zero(t, snap.Matched)
	assert.False(t, snap.Cards[0].Revealed)
}

// leakyScheduler hands out tasks whose Cancel does nothing.
type leakyScheduler struct {
	*ManualScheduler
	last func()
}

type noCancel struct{}

func (noCancel) Cancel() {}

func (s *leakyScheduler) After(_ time.Duration, fn func()) Task {
	s.last = fn
	return noCancel{}
}

func (s *leakyScheduler) Every(time.Duration, func()) Task { return noCancel{} }

func (s *leakyScheduler) fire() { s.last() }

func TestClosedGameIgnoresPendingWork(t *testing.T) {
	g, sched, _ := newTestGame(t, 4)
	g.Select(0)
	g.Select(8)
	g.Close()

	assert.Equal(t, 0, sched.Pending())
	sched.Advance(time.Minute)
	assert.Zero(t, g.Snapshot().Score)
}

func TestClockAdvance(t *testing.T) {
	var c Clock
	for i := 0; i < 59; i++ {
		c.Advance()
	}
	assert.Equal(t, Clock{Seconds: 59}, c)
	c.Advance()
	assert.Equal(t, Clock{Minutes: 1}, c)
	assert.Equal(t, "1:00", c.String())
	c.Advance()
	assert.Equal(t, "1:01", c.String())
	assert.Equal(t, 61, c.Total())
}
