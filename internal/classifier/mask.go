package classifier

// argmax returns the index of the first maximum, or -1 for an empty slice.
func argmax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// MaskedArgmax picks the defect by arg-max and the location by arg-max over
// the locations scope allows for that defect. When the allow-list is empty
// the unmasked arg-max is returned and unmasked is true.
func MaskedArgmax(defectLogits, locationLogits []float32, scope map[int][]int) (defect, location int, unmasked bool) {
	defect = argmax(defectLogits)

	allowed := scope[defect]
	if len(allowed) == 0 {
		return defect, argmax(locationLogits), true
	}

	masked := make([]float32, len(locationLogits))
	for i := range masked {
		masked[i] = MaskValue
	}
	for _, i := range allowed {
		if i >= 0 && i < len(locationLogits) {
			masked[i] = locationLogits[i]
		}
	}
	return defect, argmax(masked), false
}
