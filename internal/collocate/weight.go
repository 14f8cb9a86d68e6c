package collocate

// Weight is the triangular distance taper applied to every neighbour inside
// the influence radius: 1 at the target, falling linearly towards 0 at the
// cutoff. It never goes negative. Neighbours beyond the radius are excluded
// by the index and never reach Weight.
func Weight(d, radius float64) float64 {
	w := 1 - d/(radius+1)
	if w < 0 {
		return 0
	}
	return w
}
