package periodization

import (
	"math"

	"alcyxob/planforge/internal/domain"
)

// Per-family intensity windows by focus. Deload windows are fixed and live in
// deload.go; maintenance reuses the foundation window at static progression.
var familyIntensities = map[domain.GoalFamily]map[domain.PhaseFocus]domain.IntensityRange{
	domain.FamilyStrength: {
		domain.FocusFoundation:  {Lower: 0.60, Upper: 0.72},
		domain.FocusDevelopment: {Lower: 0.70, Upper: 0.85},
		domain.FocusPeak:        {Lower: 0.85, Upper: 0.95},
	},
	domain.FamilyHypertrophy: {
		domain.FocusFoundation:  {Lower: 0.55, Upper: 0.65},
		domain.FocusDevelopment: {Lower: 0.65, Upper: 0.75},
		domain.FocusPeak:        {Lower: 0.72, Upper: 0.82},
	},
	domain.FamilyFatLoss: {
		domain.FocusFoundation:  {Lower: 0.50, Upper: 0.60},
		domain.FocusDevelopment: {Lower: 0.55, Upper: 0.70},
		domain.FocusPeak:        {Lower: 0.65, Upper: 0.75},
	},
	domain.FamilyEndurance: {
		domain.FocusFoundation:  {Lower: 0.40, Upper: 0.50},
		domain.FocusDevelopment: {Lower: 0.45, Upper: 0.60},
		domain.FocusPeak:        {Lower: 0.55, Upper: 0.70},
	},
	domain.FamilyGeneralFitness: {
		domain.FocusFoundation:  {Lower: 0.50, Upper: 0.60},
		domain.FocusDevelopment: {Lower: 0.55, Upper: 0.70},
		domain.FocusPeak:        {Lower: 0.65, Upper: 0.75},
	},
	domain.FamilyAthletic: {
		domain.FocusFoundation:  {Lower: 0.55, Upper: 0.68},
		domain.FocusDevelopment: {Lower: 0.65, Upper: 0.80},
		domain.FocusPeak:        {Lower: 0.78, Upper: 0.90},
	},
}

var familyProgressions = map[domain.GoalFamily]domain.ProgressionType{
	domain.FamilyStrength:       domain.ProgressionLinear,
	domain.FamilyHypertrophy:    domain.ProgressionLinear,
	domain.FamilyFatLoss:        domain.ProgressionUndulating,
	domain.FamilyEndurance:      domain.ProgressionLinear,
	domain.FamilyGeneralFitness: domain.ProgressionLinear,
	domain.FamilyAthletic:       domain.ProgressionUndulating,
}

var familyRationales = map[domain.GoalFamily]map[domain.PhaseFocus]string{
	domain.FamilyStrength: {
		domain.FocusFoundation:  "Build movement quality and work capacity before heavy loading.",
		domain.FocusDevelopment: "Progressive overload on the main lifts in the 70-85% range.",
		domain.FocusPeak:        "Heavy singles and doubles to express maximal strength.",
		domain.FocusMaintenance: "Hold current strength with reduced volume.",
	},
	domain.FamilyHypertrophy: {
		domain.FocusFoundation:  "Technique groove and moderate volume to prepare for accumulation.",
		domain.FocusDevelopment: "High-volume accumulation in the moderate-intensity range.",
		domain.FocusPeak:        "Intensification block with heavier loads and lower volume.",
		domain.FocusMaintenance: "Maintain muscle with reduced training stress.",
	},
	domain.FamilyFatLoss: {
		domain.FocusFoundation:  "Establish training habit and conditioning base at easy loads.",
		domain.FocusDevelopment: "Density-focused training to maximize energy expenditure.",
		domain.FocusPeak:        "Highest sustainable workload before the plan closes out.",
		domain.FocusMaintenance: "Keep activity high while holding intensity steady.",
	},
	domain.FamilyEndurance: {
		domain.FocusFoundation:  "Aerobic base building at low intensity.",
		domain.FocusDevelopment: "Tempo and threshold work on top of the aerobic base.",
		domain.FocusPeak:        "Race-specific intensity with tapering volume.",
		domain.FocusMaintenance: "Easy aerobic volume to hold fitness.",
	},
	domain.FamilyGeneralFitness: {
		domain.FocusFoundation:  "Learn the movements and build a consistent routine.",
		domain.FocusDevelopment: "Balanced strength and conditioning progression.",
		domain.FocusPeak:        "Consolidate gains with slightly heavier loading.",
		domain.FocusMaintenance: "Keep moving; hold the routine without added stress.",
	},
	domain.FamilyAthletic: {
		domain.FocusFoundation:  "General physical preparation across strength and speed qualities.",
		domain.FocusDevelopment: "Sport-transferable strength and power development.",
		domain.FocusPeak:        "Convert strength to explosive power close to competition.",
		domain.FocusMaintenance: "In-season maintenance of power output.",
	},
}

const deloadRationale = "Planned recovery week at reduced intensity."

// buildPhase assembles one phase from the family tables, shifting the
// intensity window upward by offset (used by the annual path) and clamping.
func buildPhase(family domain.GoalFamily, focus domain.PhaseFocus, weeks int, offset float64) domain.Phase {
	window, ok := familyIntensities[family][focus]
	if !ok {
		// Maintenance reuses the foundation window.
		window = familyIntensities[family][domain.FocusFoundation]
	}
	progression := familyProgressions[family]
	if focus == domain.FocusPeak || focus == domain.FocusMaintenance {
		progression = domain.ProgressionStatic
	}
	return domain.Phase{
		Focus:       focus,
		Weeks:       weeks,
		Intensity:   domain.IntensityRange{Lower: window.Lower + offset, Upper: window.Upper + offset}.Clamped(),
		Progression: progression,
		Rationale:   familyRationales[family][focus],
	}
}

// singlePhase covers the trivial case: the whole plan as one development
// block with the family's default window.
func singlePhase(family domain.GoalFamily, weeks int) domain.Phase {
	return buildPhase(family, domain.FocusDevelopment, weeks, 0)
}

// roundWeeks computes round(fraction * totalWeeks) with a floor of zero.
func roundWeeks(fraction float64, totalWeeks int) int {
	return int(math.Round(fraction * float64(totalWeeks)))
}

// familyTemplate dispatches on duration brackets to a single-, two-, three-
// or four-phase cascade. Remainder weeks are always absorbed by the
// development phase, so week counts sum to totalWeeks exactly.
func familyTemplate(family domain.GoalFamily, totalWeeks int, style domain.PeriodizationStyle) []domain.Phase {
	switch family {
	case domain.FamilyStrength:
		return strengthTemplate(totalWeeks, style)
	case domain.FamilyHypertrophy:
		return hypertrophyTemplate(totalWeeks)
	default:
		return generalTemplate(family, totalWeeks)
	}
}

// strengthTemplate: a linear plan goes straight to development->peak; only
// block periodization at 13+ weeks earns a dedicated foundation block.
func strengthTemplate(totalWeeks int, style domain.PeriodizationStyle) []domain.Phase {
	switch {
	case totalWeeks <= 4:
		return []domain.Phase{singlePhase(domain.FamilyStrength, totalWeeks)}
	case totalWeeks <= 12 || style != domain.StyleBlock:
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 1)
		return []domain.Phase{
			buildPhase(domain.FamilyStrength, domain.FocusDevelopment, totalWeeks-peak, 0),
			buildPhase(domain.FamilyStrength, domain.FocusPeak, peak, 0),
		}
	default:
		foundation := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		return []domain.Phase{
			buildPhase(domain.FamilyStrength, domain.FocusFoundation, foundation, 0),
			buildPhase(domain.FamilyStrength, domain.FocusDevelopment, totalWeeks-foundation-peak, 0),
			buildPhase(domain.FamilyStrength, domain.FocusPeak, peak, 0),
		}
	}
}

// hypertrophyTemplate splits long development into two accumulation
// sub-phases, the second a notch heavier.
func hypertrophyTemplate(totalWeeks int) []domain.Phase {
	switch {
	case totalWeeks <= 4:
		return []domain.Phase{singlePhase(domain.FamilyHypertrophy, totalWeeks)}
	case totalWeeks <= 8:
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 1)
		return []domain.Phase{
			buildPhase(domain.FamilyHypertrophy, domain.FocusDevelopment, totalWeeks-peak, 0),
			buildPhase(domain.FamilyHypertrophy, domain.FocusPeak, peak, 0),
		}
	default:
		foundation := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		development := totalWeeks - foundation - peak
		first := (development + 1) / 2
		second := development - first
		phases := []domain.Phase{
			buildPhase(domain.FamilyHypertrophy, domain.FocusFoundation, foundation, 0),
			buildPhase(domain.FamilyHypertrophy, domain.FocusDevelopment, first, 0),
		}
		if second > 0 {
			phases = append(phases, buildPhase(domain.FamilyHypertrophy, domain.FocusDevelopment, second, 0.03))
		}
		return append(phases, buildPhase(domain.FamilyHypertrophy, domain.FocusPeak, peak, 0))
	}
}

// generalTemplate is the shared single/two/three-phase cascade used by the
// fat-loss, endurance, general-fitness and athletic families.
func generalTemplate(family domain.GoalFamily, totalWeeks int) []domain.Phase {
	switch {
	case totalWeeks <= 4:
		return []domain.Phase{singlePhase(family, totalWeeks)}
	case totalWeeks <= 8:
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 1)
		return []domain.Phase{
			buildPhase(family, domain.FocusDevelopment, totalWeeks-peak, 0),
			buildPhase(family, domain.FocusPeak, peak, 0),
		}
	default:
		foundation := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		peak := minWeeks(roundWeeks(0.25, totalWeeks), 2)
		return []domain.Phase{
			buildPhase(family, domain.FocusFoundation, foundation, 0),
			buildPhase(family, domain.FocusDevelopment, totalWeeks-foundation-peak, 0),
			buildPhase(family, domain.FocusPeak, peak, 0),
		}
	}
}

func minWeeks(weeks, floor int) int {
	if weeks < floor {
		return floor
	}
	return weeks
}
