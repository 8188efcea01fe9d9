package periodization

import "alcyxob/planforge/internal/domain"

// Inserted deload weeks use a fixed recovery window.
var deloadWindow = domain.IntensityRange{Lower: 0.50, Upper: 0.60}

func deloadWeek() domain.Phase {
	return domain.Phase{
		Focus:       domain.FocusDeload,
		Weeks:       1,
		Intensity:   deloadWindow,
		Progression: domain.ProgressionStatic,
		Rationale:   deloadRationale,
	}
}

// InsertDeloads walks the phase sequence accumulating elapsed weeks and
// inserts a one-week deload at each phase boundary where the accumulated
// count has crossed a multiple of frequencyWeeks. The deload week is carved
// out of the following phase so the total week count is unchanged; if the
// following phase is down to a single week the insertion is skipped.
//
// Idempotent: a list that already carries any deload phase (the annual path
// emits its own) is returned untouched.
func InsertDeloads(phases []domain.Phase, frequencyWeeks int) []domain.Phase {
	if frequencyWeeks <= 0 {
		return phases
	}
	for _, p := range phases {
		if p.Focus == domain.FocusDeload {
			return phases
		}
	}

	out := make([]domain.Phase, 0, len(phases)+len(phases)/2)
	remaining := make([]domain.Phase, len(phases))
	copy(remaining, phases)

	elapsed := 0
	crossed := 0
	for i := range remaining {
		out = append(out, remaining[i])
		elapsed += remaining[i].Weeks
		if elapsed/frequencyWeeks > crossed && i < len(remaining)-1 && remaining[i+1].Weeks > 1 {
			remaining[i+1].Weeks--
			out = append(out, deloadWeek())
			elapsed++
		}
		crossed = elapsed / frequencyWeeks
	}
	return out
}
