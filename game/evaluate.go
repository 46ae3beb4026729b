package game

import "github.com/openbingo/bingo-server/models"

// HasBingo reports whether any row, column, or diagonal of the card is
// fully marked. The free center cell counts as marked everywhere.
func HasBingo(card models.Card, marked []int) bool {
	markedSet := make(map[int]bool, len(marked))
	for _, n := range marked {
		markedSet[n] = true
	}

	satisfied := func(col, row int) bool {
		if card[col][row] == models.FreeCell {
			return true
		}
		return markedSet[card[col][row]]
	}

	checkLine := func(cells [][2]int) bool {
		for _, cell := range cells {
			if !satisfied(cell[0], cell[1]) {
				return false
			}
		}
		return true
	}

	// Columns
	for col := 0; col < models.CardSize; col++ {
		cells := [][2]int{}
		for row := 0; row < models.CardSize; row++ {
			cells = append(cells, [2]int{col, row})
		}
		if checkLine(cells) {
			return true
		}
	}

	// Rows
	for row := 0; row < models.CardSize; row++ {
		cells := [][2]int{}
		for col := 0; col < models.CardSize; col++ {
			cells = append(cells, [2]int{col, row})
		}
		if checkLine(cells) {
			return true
		}
	}

	// Diagonals
	diag1 := [][2]int{}
	diag2 := [][2]int{}
	for i := 0; i < models.CardSize; i++ {
		diag1 = append(diag1, [2]int{i, i})
		diag2 = append(diag2, [2]int{i, models.CardSize - 1 - i})
	}
	return checkLine(diag1) || checkLine(diag2)
}
