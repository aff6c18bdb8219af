package dietary

import "strings"

// gramsPerUnit converts weight units to grams. Volume and count units are not
// listed and pass through unconverted.
var gramsPerUnit = map[string]float64{
	"kg": 1000,
	"mg": 0.001,
	"oz": 28.35,
	"lb": 453.592,
}

// ToGrams converts an amount to grams using the fixed weight table.
// Unknown units, including "g", "cup" and "tbsp", return the amount unchanged.
func ToGrams(amount float64, unit string) float64 {
	factor, ok := gramsPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return amount
	}
	return amount * factor
}
