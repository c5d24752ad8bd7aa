package models

import "time"

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ReadingFilter narrows a per-device reading query. Zero values mean
// "no constraint"; Limit 0 means unlimited.
type ReadingFilter struct {
	Status     Status
	SoilHealth SoilHealth
	AlertsOnly bool // status warning|critical or health Poor|Critical
	RequireNPK bool // nitrogen, phosphorus and potassium all non-null
	Start      time.Time
	End        time.Time
	Sort       SortOrder
	Limit      int64
}

// Match applies every non-time-ordering constraint of f to r.
func (f ReadingFilter) Match(r Reading) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.SoilHealth != "" && r.SoilHealth != f.SoilHealth {
		return false
	}
	if f.AlertsOnly && !r.IsAlert() {
		return false
	}
	if f.RequireNPK && !r.HasNPK() {
		return false
	}
	if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && r.Timestamp.After(f.End) {
		return false
	}
	return true
}
