package periodization

import (
	"fmt"
	"strings"

	"alcyxob/planforge/internal/domain"
)

// WeekRange is the 1-based inclusive week span a phase occupies within its
// plan.
type WeekRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Label renders the range the way the app displays it, e.g. "Weeks 1-3" or
// "Week 4" for a single week.
func (r WeekRange) Label() string {
	if r.Start == r.End {
		return fmt.Sprintf("Week %d", r.Start)
	}
	return fmt.Sprintf("Weeks %d-%d", r.Start, r.End)
}

// WeekRanges computes each phase's week span by cumulative offset. The
// explanation below consumes the same computation, so the two can never
// drift apart.
func WeekRanges(phases []domain.Phase) []WeekRange {
	ranges := make([]WeekRange, len(phases))
	offset := 0
	for i, p := range phases {
		ranges[i] = WeekRange{Start: offset + 1, End: offset + p.Weeks}
		offset += p.Weeks
	}
	return ranges
}

// Explain renders a human-readable description of the phase sequence, one
// line per phase. Presentation only.
func Explain(phases []domain.Phase) string {
	ranges := WeekRanges(phases)
	var b strings.Builder
	for i, p := range phases {
		fmt.Fprintf(&b, "%s: %s (%.0f-%.0f%%)", ranges[i].Label(), PhaseTitle(p.Focus),
			p.Intensity.Lower*100, p.Intensity.Upper*100)
		if p.Rationale != "" {
			fmt.Fprintf(&b, " - %s", p.Rationale)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// PhaseTitle is the display name for a phase focus.
func PhaseTitle(focus domain.PhaseFocus) string {
	switch focus {
	case domain.FocusFoundation:
		return "Foundation"
	case domain.FocusDevelopment:
		return "Development"
	case domain.FocusPeak:
		return "Peak"
	case domain.FocusMaintenance:
		return "Maintenance"
	case domain.FocusDeload:
		return "Deload"
	default:
		return string(focus)
	}
}
