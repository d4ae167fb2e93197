package domain

// Landing is the top-level destination a user is routed to after sign-in.
type Landing string

const (
	// LandingSelector is shown when the user holds both admin and coach
	// roles and must pick one.
	LandingSelector Landing = "selector"
	LandingAdmin    Landing = "admin"
	LandingCoach    Landing = "coach"
	// LandingCoachee is the implicit default when neither admin nor coach
	// is held, including when no role rows exist at all.
	LandingCoachee Landing = "coachee"
)
