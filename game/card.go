package game

import (
	"github.com/openbingo/bingo-server/models"
	"github.com/openbingo/bingo-server/utils/rng"
)

const (
	// MaxNumber is the highest callable bingo number.
	MaxNumber = 75
	// columnRange is how many numbers belong to each of B, I, N, G, O.
	columnRange = MaxNumber / models.CardSize

	freeRow = models.CardSize / 2
	freeCol = models.CardSize / 2
)

// GenerateCard draws a fresh 5x5 card. Column c holds 5 distinct
// numbers from [15c+1, 15c+15]; the center cell is the free sentinel.
func GenerateCard(r rng.Source) models.Card {
	var card models.Card
	for col := 0; col < models.CardSize; col++ {
		// Partial Fisher-Yates over the column's 15 candidates, so no
		// retry loop is ever needed.
		pool := make([]int, columnRange)
		for i := range pool {
			pool[i] = col*columnRange + i + 1
		}
		for row := 0; row < models.CardSize; row++ {
			pick := row + r.Intn(columnRange-row)
			pool[row], pool[pick] = pool[pick], pool[row]
			card[col][row] = pool[row]
		}
	}
	card[freeCol][freeRow] = models.FreeCell
	return card
}

// GenerateGameCode builds a human-readable game id: two uppercase
// letters followed by four digits, e.g. "YW9403".
func GenerateGameCode(r rng.Source) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := 0; i < 2; i++ {
		code[i] = letters[r.Intn(len(letters))]
	}
	for i := 2; i < 6; i++ {
		code[i] = digits[r.Intn(len(digits))]
	}
	return string(code)
}

// GenerateBoardNumber picks the random 3-digit card identifier shown
// to the player.
func GenerateBoardNumber(r rng.Source) int {
	return r.Intn(900) + 100
}
