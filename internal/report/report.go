package report

import (
	"time"

	"github.com/pramath6095/dark-web-leak-ai/internal/model"
)

// LeakReport aggregates the verdicts collected for one monitored
// target into a printable report.
type LeakReport struct {
	// TargetName is the monitored company or organization.
	TargetName string `json:"target_name"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Verdicts holds every verdict included in the report.
	Verdicts []model.PageVerdict `json:"verdicts"`
}

// NewLeakReport builds a report over the given verdicts.
func NewLeakReport(targetName string, verdicts []model.PageVerdict) *LeakReport {
	return &LeakReport{
		TargetName:  targetName,
		GeneratedAt: time.Now().UTC(),
		Verdicts:    verdicts,
	}
}

// TotalPages returns how many pages the report covers.
func (r *LeakReport) TotalPages() int {
	return len(r.Verdicts)
}

// RelevantCount returns how many verdicts were relevant.
func (r *LeakReport) RelevantCount() int {
	count := 0
	for _, v := range r.Verdicts {
		if v.IsRelevant {
			count++
		}
	}
	return count
}

// Relevant returns only the relevant verdicts, in report order.
func (r *LeakReport) Relevant() []model.PageVerdict {
	var relevant []model.PageVerdict
	for _, v := range r.Verdicts {
		if v.IsRelevant {
			relevant = append(relevant, v)
		}
	}
	return relevant
}

// LabelCounts returns how many relevant verdicts carry each
// classification label.
func (r *LeakReport) LabelCounts() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Verdicts {
		if v.IsRelevant {
			counts[v.ClassificationLabel]++
		}
	}
	return counts
}

// LanguageCounts returns how many pages were detected per language.
func (r *LeakReport) LanguageCounts() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Verdicts {
		counts[v.Language]++
	}
	return counts
}
