package visited

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/searchstate/model"
)

// AuditReport counts how the approximate set deviated from exact membership.
type AuditReport struct {
	// Checks is the number of CheckAndSet calls.
	Checks int
	// Redundant counts ids reported unseen although they were checked before.
	Redundant int
	// IncorrectPrunes counts ids reported AlreadySeen that were never checked.
	// Any non-zero value is a bug in Set.
	IncorrectPrunes int
}

// RedundantRate returns Redundant / Checks.
func (r AuditReport) RedundantRate() float64 {
	if r.Checks == 0 {
		return 0
	}
	return float64(r.Redundant) / float64(r.Checks)
}

// Auditor wraps a Set and records every id in an exact roaring bitmap.
// It allocates as the query grows and is meant for recall investigations,
// not the serving path.
type Auditor struct {
	set    *Set
	exact  *roaring.Bitmap
	report AuditReport
}

// NewAuditor returns an auditor over s.
func NewAuditor(s *Set) *Auditor {
	return &Auditor{
		set:   s,
		exact: roaring.New(),
	}
}

// CheckAndSet forwards to the wrapped set and compares its answer with the
// exact bitmap.
func (a *Auditor) CheckAndSet(id model.NodeID) Outcome {
	o := a.set.CheckAndSet(id)
	a.report.Checks++
	if id < 0 {
		return o
	}

	added := a.exact.CheckedAdd(uint32(id))
	switch {
	case added && o == AlreadySeen:
		a.report.IncorrectPrunes++
	case !added && o != AlreadySeen:
		a.report.Redundant++
	}
	return o
}

// Clear clears the wrapped set, the bitmap and the report.
func (a *Auditor) Clear() {
	a.set.Clear()
	a.exact.Clear()
	a.report = AuditReport{}
}

// Distinct returns the exact number of distinct ids checked since Clear.
func (a *Auditor) Distinct() uint64 {
	return a.exact.GetCardinality()
}

// Report returns the counters accumulated since the last Clear.
func (a *Auditor) Report() AuditReport {
	return a.report
}
