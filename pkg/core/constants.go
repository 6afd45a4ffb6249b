package core

const (
	// VerySmallNumber guards divisions and degenerate directions. Shadow rays
	// are aimed at lights that may be ~1e10 units away, so ray parameters of
	// nearby occluders are ~1e-10 and this must stay well below that.
	VerySmallNumber = 1e-12

	// Delta is the minimum distance a ray must travel before a hit counts.
	// It keeps reflected and shadow rays from hitting their own origin.
	Delta = 1e-6
)
