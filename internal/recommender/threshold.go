package recommender

// Threshold is the minimum safety probability at which a requested food is
// approved outright. Low glucose is permissive because restricting
// carbohydrates then is contraindicated.
func Threshold(glucose int) float64 {
	switch {
	case glucose < 90:
		return 0.05
	case glucose < 120:
		return 0.25
	default:
		return 0.35
	}
}
