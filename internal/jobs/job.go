// Package jobs serves the careers page: it fetches open positions from the
// external ATS and fronts them with a time-windowed read-through cache.
package jobs

import "time"

// Job is a normalised open position as served to the careers page.
// Fields the ATS does not provide are left empty rather than omitted, so the
// frontend can rely on the shape.
type Job struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Department       string    `json:"department"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	Requirements     []string  `json:"requirements"`
	Responsibilities []string  `json:"responsibilities"`
	Benefits         []string  `json:"benefits"`
	Posted           time.Time `json:"posted"`
	ATSURL           string    `json:"atsUrl"`
}
