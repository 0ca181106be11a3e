package types

type CardView struct {
	Index    int    `json:"index"`
	Face     int    `json:"face"`
	Image    string `json:"image"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

type GridView struct {
	Size            int        `json:"size"`
	CardClass       string     `json:"cardClass"`
	PlaygroundClass string     `json:"playgroundClass"`
	Cards           []CardView `json:"cards"`
}

type SummaryView struct {
	Score    int    `json:"score"`
	Time     string `json:"time"`
	Attempts int    `json:"attempts"`
	Pairs    int    `json:"pairs"`
}

type GameSnapshot struct {
	Name     string       `json:"name"`
	Grid     GridView     `json:"grid"`
	Score    int          `json:"score"`
	Time     string       `json:"time"`
	Matched  int          `json:"matched"`
	Pairs    int          `json:"pairs"`
	Attempts int          `json:"attempts"`
	Locked   bool         `json:"locked"`
	Running  bool         `json:"running"`
	Finished bool         `json:"finished"`
	Summary  *SummaryView `json:"summary,omitempty"`
}

// Event is pushed to websocket subscribers. Type is one of the Event*
// constants in the server; Data depends on it.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
