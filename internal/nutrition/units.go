package nutrition

// kJPerKcal is the thermochemical conversion factor between the two
// energy units printed on European labels.
const kJPerKcal = 4.184

// kJToKcal converts kilojoules to kilocalories, rounded to one decimal.
func kJToKcal(kj float64) float64 {
	return round1(kj / kJPerKcal)
}

// sodiumMgToSaltG converts milligrams of sodium to grams of salt using the
// standard 2.5 sodium-to-salt factor, rounded to two decimals.
func sodiumMgToSaltG(mg float64) float64 {
	return round2(mg * 2.5 / 1000)
}
