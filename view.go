package main

import (
	"strings"

	"github.com/samber/lo"

	"polygon/internal/memory"
	"polygon/internal/types"
)

// cardClass returns the CSS classes sizing a card for the grid side.
func cardClass(size int) string {
	switch size {
	case 4:
		return "card-for-4x4"
	case 6:
		return "card-for-6x6"
	default:
		return "card-for-6x6 card-for-8x8"
	}
}

// playgroundClass widens the playground for the largest grid.
func playgroundClass(size int) string {
	if size == 8 {
		return "big-playground"
	}
	return ""
}

// cardClasses builds the class attribute of one card element.
func cardClasses(card types.CardView, grid types.GridView) string {
	classes := []string{"card", grid.CardClass}
	if card.Revealed || card.Matched {
		classes = append(classes, "turned")
	}
	if card.Matched {
		classes = append(classes, "matched")
	}
	return strings.Join(classes, " ")
}

func gridView(size int, cards []memory.Card) types.GridView {
	return types.GridView{
		Size:            size,
		CardClass:       cardClass(size),
		PlaygroundClass: playgroundClass(size),
		Cards: lo.Map(cards, func(c memory.Card, _ int) types.CardView {
			return types.CardView{
				Index:    c.Index,
				Face:     c.Face,
				Image:    c.Image(),
				Revealed: c.Revealed,
				Matched:  c.Matched,
			}
		}),
	}
}

func summaryView(s memory.Summary) types.SummaryView {
	return types.SummaryView{
		Score:    s.Score,
		Time:     s.Time.String(),
		Attempts: s.Attempts,
		Pairs:    s.Pairs,
	}
}

func snapshotView(s memory.Snapshot) types.GameSnapshot {
	view := types.GameSnapshot{
		Name:     GameName,
		Grid:     gridView(s.Size, s.Cards),
		Score:    s.Score,
		Time:     s.Clock.String(),
		Matched:  s.Matched,
		Pairs:    s.Pairs,
		Attempts: s.Attempts,
		Locked:   s.Locked,
		Running:  s.Running,
		Finished: s.Finished,
	}
	if summary, ok := s.Summary(); ok {
		sv := summaryView(summary)
		view.Summary = &sv
	}
	return view
}
