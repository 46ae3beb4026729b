package models

// FreeCell is the sentinel value of the card's center cell. It counts
// as marked in every line it belongs to.
const FreeCell = 0

// CardSize is the side length of a bingo card.
const CardSize = 5

// Card is a 5x5 bingo card indexed column-major: Card[c][r] is the cell
// in column c (B, I, N, G, O) and row r. The center cell is FreeCell.
type Card [CardSize][CardSize]int

// Contains reports whether n appears anywhere on the card. The free
// sentinel is never contained.
func (c Card) Contains(n int) bool {
	if n == FreeCell {
		return false
	}
	for col := 0; col < CardSize; col++ {
		for row := 0; row < CardSize; row++ {
			if c[col][row] == n {
				return true
			}
		}
	}
	return false
}

// Numbers returns all non-sentinel values on the card.
func (c Card) Numbers() []int {
	out := make([]int, 0, CardSize*CardSize-1)
	for col := 0; col < CardSize; col++ {
		for row := 0; row < CardSize; row++ {
			if c[col][row] != FreeCell {
				out = append(out, c[col][row])
			}
		}
	}
	return out
}
