package models

// SpinOutcome reports a resolved wheel spin (returned to the user)
type SpinOutcome struct {
	Prize  float64
	Sector int
}
