package models

import "github.com/samber/lo"

// TrackingEvent is a single tracker request observed on a page.
// Entity is nil when the tracker could not be attributed to a known network.
type TrackingEvent struct {
	DocumentURL string   `json:"document_url"`
	TrackerURL  string   `json:"tracker_url"`
	Categories  []string `json:"categories,omitempty"`
	Entity      *Entity  `json:"entity,omitempty"`
	Blocked     bool     `json:"blocked"`
}

// BlockedEvents returns the events that were blocked, in their original order.
func BlockedEvents(events []TrackingEvent) []TrackingEvent {
	return lo.Filter(events, func(ev TrackingEvent, _ int) bool {
		return ev.Blocked
	})
}
