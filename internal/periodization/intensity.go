package periodization

import "alcyxob/planforge/internal/domain"

// Width of the recovery window a remapped deload keeps below the new start.
const (
	deloadDropBelowStart = 0.15
	deloadWindowWidth    = 0.10
)

// applyCustomIntensity remaps the template's intensity progression onto the
// caller's bounds. Three mutually exclusive strategies:
//
//   - both bounds: every non-deload window is linearly rescaled from the
//     observed [min, max] onto [start, end]; deloads are rebuilt relative to
//     the new start. A zero-width template range short-circuits unchanged.
//   - start only: a uniform shift anchors the first non-deload lower bound
//     at start.
//   - end only: a uniform shift anchors the last non-deload upper bound
//     at end.
//
// All results are clamped to [0.40, 0.95]. The rescale is order-preserving.
func applyCustomIntensity(phases []domain.Phase, start, end *float64) []domain.Phase {
	switch {
	case start != nil && end != nil:
		return rescaleIntensity(phases, *start, *end)
	case start != nil:
		return shiftIntensity(phases, shiftForStart(phases, *start))
	case end != nil:
		return shiftIntensity(phases, shiftForEnd(phases, *end))
	default:
		return phases
	}
}

func rescaleIntensity(phases []domain.Phase, start, end float64) []domain.Phase {
	var min, max float64
	seen := false
	for _, p := range phases {
		if p.Focus == domain.FocusDeload {
			continue
		}
		if !seen || p.Intensity.Lower < min {
			min = p.Intensity.Lower
		}
		if !seen || p.Intensity.Upper > max {
			max = p.Intensity.Upper
		}
		seen = true
	}
	if !seen || max == min {
		// Nothing to map from: degenerate template range.
		return phases
	}

	scale := (end - start) / (max - min)
	out := make([]domain.Phase, len(phases))
	for i, p := range phases {
		if p.Focus == domain.FocusDeload {
			lower := clampTo(start - deloadDropBelowStart)
			p.Intensity = domain.IntensityRange{Lower: lower, Upper: lower + deloadWindowWidth}.Clamped()
		} else {
			p.Intensity = domain.IntensityRange{
				Lower: start + (p.Intensity.Lower-min)*scale,
				Upper: start + (p.Intensity.Upper-min)*scale,
			}.Clamped()
		}
		out[i] = p
	}
	return out
}

func shiftForStart(phases []domain.Phase, start float64) float64 {
	for _, p := range phases {
		if p.Focus != domain.FocusDeload {
			return start - p.Intensity.Lower
		}
	}
	return 0
}

func shiftForEnd(phases []domain.Phase, end float64) float64 {
	for i := len(phases) - 1; i >= 0; i-- {
		if phases[i].Focus != domain.FocusDeload {
			return end - phases[i].Intensity.Upper
		}
	}
	return 0
}

func shiftIntensity(phases []domain.Phase, delta float64) []domain.Phase {
	if delta == 0 {
		return phases
	}
	out := make([]domain.Phase, len(phases))
	for i, p := range phases {
		p.Intensity = domain.IntensityRange{
			Lower: p.Intensity.Lower + delta,
			Upper: p.Intensity.Upper + delta,
		}.Clamped()
		out[i] = p
	}
	return out
}

func clampTo(v float64) float64 {
	if v < domain.IntensityFloor {
		return domain.IntensityFloor
	}
	if v > domain.IntensityCeiling {
		return domain.IntensityCeiling
	}
	return v
}
