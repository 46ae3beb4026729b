package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openbingo/bingo-server/models"
)

// testCard is column-major: testCard[0] is the B column.
var testCard = models.Card{
	{1, 2, 3, 4, 5},
	{16, 17, 18, 19, 20},
	{31, 32, models.FreeCell, 34, 35},
	{46, 47, 48, 49, 50},
	{61, 62, 63, 64, 65},
}

func TestHasBingoColumn(t *testing.T) {
	assert.True(t, HasBingo(testCard, []int{1, 2, 3, 4, 5}))
}

func TestHasBingoColumnThroughFreeCell(t *testing.T) {
	// The N column only needs four marks.
	assert.True(t, HasBingo(testCard, []int{31, 32, 34, 35}))
}

func TestHasBingoRow(t *testing.T) {
	assert.True(t, HasBingo(testCard, []int{2, 17, 32, 47, 62}))
}

func TestHasBingoRowThroughFreeCell(t *testing.T) {
	// The middle row only needs four marks.
	assert.True(t, HasBingo(testCard, []int{3, 18, 48, 63}))
}

func TestHasBingoDiagonals(t *testing.T) {
	// Both diagonals pass through the free center.
	assert.True(t, HasBingo(testCard, []int{1, 17, 49, 65}))
	assert.True(t, HasBingo(testCard, []int{5, 19, 47, 61}))
}

func TestHasBingoNoMarks(t *testing.T) {
	assert.False(t, HasBingo(testCard, nil))
}

func TestHasBingoOneShortOfEveryLine(t *testing.T) {
	// Mark everything except one corner and one center-row cell; the
	// corner blocks its row, column, and diagonal, and the missing
	// cells block everything else.
	marked := []int{}
	for _, n := range testCard.Numbers() {
		if n == 1 || n == 35 || n == 47 || n == 19 || n == 63 {
			continue
		}
		marked = append(marked, n)
	}
	assert.False(t, HasBingo(testCard, marked))
}

func TestHasBingoIgnoresNumbersNotOnCard(t *testing.T) {
	assert.False(t, HasBingo(testCard, []int{6, 7, 8, 9, 10, 21, 22, 36, 51, 66}))
}
