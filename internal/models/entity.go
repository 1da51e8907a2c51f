package models

// MajorNetworkPrevalence is the prevalence above which an entity counts as a
// major tracker network.
const MajorNetworkPrevalence = 7.0

// Entity identifies the company or network behind a tracker.
type Entity struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Prevalence  float64 `json:"prevalence"`
}

// IsMajor reports whether the entity is prevalent enough to be named in
// onboarding messages.
func (e *Entity) IsMajor() bool {
	return e != nil && e.Prevalence > MajorNetworkPrevalence
}
