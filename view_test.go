package main

import (
	"testing"

	"polygon/internal/memory"
	"polygon/internal/types"
)

func TestLayoutClasses(t *testing.T) {
	cases := []struct {
		size       int
		card       string
		playground string
	}{
		{4, "card-for-4x4", ""},
		{6, "card-for-6x6", ""},
		{8, "card-for-6x6 card-for-8x8", "big-playground"},
	}
	for _, tc := range cases {
		if got := cardClass(tc.size); got != tc.card {
			t.Errorf("cardClass(%d) = %q, want %q", tc.size, got, tc.card)
		}
		if got := playgroundClass(tc.size); got != tc.playground {
			t.Errorf("playgroundClass(%d) = %q, want %q", tc.size, got, tc.playground)
		}
	}
}

func TestCardClasses(t *testing.T) {
	grid := types.GridView{CardClass: "card-for-4x4"}
	cases := []struct {
		card types.CardView
		want string
	}{
		{types.CardView{}, "card card-for-4x4"},
		{types.CardView{Revealed: true}, "card card-for-4x4 turned"},
		{types.CardView{Revealed: true, Matched: true}, "card card-for-4x4 turned matched"},
	}
	for _, tc := range cases {
		if got := cardClasses(tc.card, grid); got != tc.want {
			t.Errorf("cardClasses(%+v) = %q, want %q", tc.card, got, tc.want)
		}
	}
}

func TestSnapshotView(t *testing.T) {
	snap := memory.Snapshot{
		Size:     4,
		Cards:    memory.NewGrid(4, nil),
		Score:    16,
		Clock:    memory.Clock{Minutes: 2, Seconds: 3},
		Matched:  8,
		Pairs:    8,
		Attempts: 12,
		Finished: true,
	}
	view := snapshotView(snap)
	if view.Name != GameName || view.Time != "2:03" || len(view.Grid.Cards) != 16 {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Grid.Cards[3].Image != "/static/pics/4.jpg" {
		t.Errorf("card image = %q", view.Grid.Cards[3].Image)
	}
	if view.Summary == nil || view.Summary.Score != 16 || view.Summary.Time != "2:03" || view.Summary.Attempts != 12 {
		t.Errorf("summary = %+v", view.Summary)
	}

	snap.Finished = false
	if snapshotView(snap).Summary != nil {
		t.Error("unfinished game should have no summary")
	}
}
