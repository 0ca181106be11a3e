package memory

// Summary is shown once every pair has been found.
type Summary struct {
	Score    int
	Time     Clock
	Attempts int
	Pairs    int
}

// Renderer receives view updates from a Game. Calls are made while the game
// is locked, so implementations must not block or call back into the game.
type Renderer interface {
	RenderGrid(size int, cards []Card)
	RenderScore(score int)
	RenderTimer(clock Clock)
	RenderSummary(summary Summary)
}

// NopRenderer discards every update.
type NopRenderer struct{}

func (NopRenderer) RenderGrid(int, []Card) {}
func (NopRenderer) RenderScore(int) {}
func (NopRenderer) RenderTimer(Clock) {}
func (NopRenderer) RenderSummary(Summary) {}
