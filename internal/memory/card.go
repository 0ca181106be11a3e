package memory

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// Supported grid sides. Each squares to an even card count.
var Sizes = []int{4, 6, 8}

// Card is one cell of the playground.
type Card struct {
	Index    int  // position in the grid
	Face     int  // 1..pairs, shared by exactly two cards
	Revealed bool // face up, either pending or matched
	Matched  bool // permanently open
}

// Image is the asset path for the card's face.
func (c Card) Image() string {
	return fmt.Sprintf("/static/pics/%d.jpg", c.Face)
}

// ValidSize reports whether size is a playable grid side.
func ValidSize(size int) bool {
	return lo.Contains(Sizes, size)
}

// Pairs returns the number of pairs on a size x size grid.
func Pairs(size int) int {
	return size * size / 2
}

// NewGrid deals size*size face-down cards, two of each face, ordered by
// shuffle. A nil shuffle leaves the faces as 1..n,1..n.
func NewGrid(size int, shuffle func([]int)) []Card {
	faces := lo.RangeFrom(1, Pairs(size))
	deck := append(faces, faces...)
	if shuffle != nil {
		shuffle(deck)
	}
	return lo.Map(deck, func(face int, i int) Card {
		return Card{Index: i, Face: face}
	})
}

func defaultShuffle(deck []int) {
	mutable.Shuffle(deck)
}
