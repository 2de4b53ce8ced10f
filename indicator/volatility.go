package indicator

import "github.com/montanaflynn/stats"

// Change calculates the percent change between consecutive values.
// The first element is always zero.
func Change(input []float64) []float64 {
	output := make([]float64, len(input))

	for i := 1; i < len(input); i++ {
		if input[i-1] == 0 {
			continue
		}
		output[i] = (input[i] - input[i-1]) / input[i-1]
	}

	return output
}

// Volatility calculates the rolling sample standard deviation of percent
// changes over the given period, expressed in percent. Positions before a
// full window is available are zero.
func Volatility(input []float64, period int) []float64 {
	output := make([]float64, len(input))
	changes := Change(input)

	for i := period; i < len(changes); i++ {
		window := changes[i-period+1 : i+1]

		sd, err := stats.StandardDeviationSample(window)
		if err != nil {
			continue
		}

		output[i] = sd * 100
	}

	return output
}
