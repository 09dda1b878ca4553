package detector

// Window is the number of raw samples averaged by WeightedAverage.
const Window = 2

// WeightedAverage smooths the most recent one or two samples of an axis,
// weighting the newer sample 2:1. A single sample is returned unchanged.
// Values beyond the last two are ignored; an empty slice yields 0.
func WeightedAverage(values []int16) float64 {
	switch n := len(values); {
	case n == 0:
		return 0
	case n == 1:
		return float64(values[0])
	default:
		v0, v1 := int(values[n-2]), int(values[n-1])
		return float64(2*v1+v0) / 3
	}
}
