package protocol

import "math"

// Wallets are stored in integer cents; the wire carries dollars. These
// two functions are the only conversion point, and they round-trip
// exactly for integer cent amounts.

// Dollars converts cents to the wire representation.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}

// Cents converts a wire dollar amount to cents.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
