// Package periodization generates multi-phase training plan structures from
// goal, duration and style parameters. Everything in here is a pure function
// of its inputs; persistence and scheduling live elsewhere.
package periodization

import (
	"errors"

	"alcyxob/planforge/internal/domain"
)

var (
	ErrInvalidWeeks     = errors.New("total weeks must be at least 1")
	ErrInvalidIntensity = errors.New("custom intensity start must not exceed end")
)

// Params collects the inputs to CalculatePhases.
type Params struct {
	Goal                 domain.Goal
	TotalWeeks           int
	Style                domain.PeriodizationStyle
	IncludeDeloads       bool
	DeloadFrequencyWeeks int

	// Optional remapping of the template's intensity progression.
	CustomIntensityStart *float64
	CustomIntensityEnd   *float64
}

// Weeks beyond this are built from repeating 12-week mesocycles rather than a
// single template cascade.
const annualThreshold = 16

// CalculatePhases produces the ordered phase list for a plan. Phase week
// counts always sum to p.TotalWeeks exactly, and every intensity bound is
// clamped to [0.40, 0.95].
func CalculatePhases(p Params) ([]domain.Phase, error) {
	if p.TotalWeeks < 1 {
		return nil, ErrInvalidWeeks
	}
	if p.CustomIntensityStart != nil && p.CustomIntensityEnd != nil &&
		*p.CustomIntensityStart > *p.CustomIntensityEnd {
		return nil, ErrInvalidIntensity
	}

	family := p.Goal.Family()

	var phases []domain.Phase
	switch {
	case p.TotalWeeks <= 3 || p.Style == domain.StyleNone:
		phases = []domain.Phase{singlePhase(family, p.TotalWeeks)}
	case p.TotalWeeks > annualThreshold:
		phases = annualCycles(family, p.TotalWeeks)
	default:
		style := ResolveStyle(p.Goal, p.Style, p.TotalWeeks)
		phases = familyTemplate(family, p.TotalWeeks, style)
	}

	if p.IncludeDeloads {
		phases = InsertDeloads(phases, p.DeloadFrequencyWeeks)
	}
	phases = applyCustomIntensity(phases, p.CustomIntensityStart, p.CustomIntensityEnd)
	return phases, nil
}

// autoStyles resolves StyleAuto to a concrete style per goal family. Strength
// goals additionally prefer block periodization once the plan is long enough
// to fit distinct blocks.
var autoStyles = map[domain.GoalFamily]domain.PeriodizationStyle{
	domain.FamilyStrength:       domain.StyleLinear, // block at >= 12 weeks, see resolveStyle
	domain.FamilyHypertrophy:    domain.StyleLinear,
	domain.FamilyFatLoss:        domain.StyleLinear,
	domain.FamilyEndurance:      domain.StyleBlock,
	domain.FamilyGeneralFitness: domain.StyleLinear,
	domain.FamilyAthletic:       domain.StyleBlock,
}

const blockStyleMinWeeks = 12

// ResolveStyle turns StyleAuto into a concrete style; explicit styles pass
// through unchanged.
func ResolveStyle(goal domain.Goal, style domain.PeriodizationStyle, totalWeeks int) domain.PeriodizationStyle {
	if style != domain.StyleAuto {
		return style
	}
	family := goal.Family()
	if family == domain.FamilyStrength && totalWeeks >= blockStyleMinWeeks {
		return domain.StyleBlock
	}
	return autoStyles[family]
}

// annualCycles emits fixed 12-week mesocycles (foundation 3 / development 6 /
// peak 2 / deload 1) with each successive cycle's intensity shifted upward by
// a small offset, capped after three cycles. Remainder weeks become a short
// maintenance phase (<= 4 weeks) or a foundation+development pair.
func annualCycles(family domain.GoalFamily, totalWeeks int) []domain.Phase {
	const (
		cycleWeeks       = 12
		cycleOffsetStep  = 0.02
		cycleOffsetCapAt = 3
	)

	cycles := totalWeeks / cycleWeeks
	remainder := totalWeeks % cycleWeeks

	phases := make([]domain.Phase, 0, cycles*4+2)
	for i := 0; i < cycles; i++ {
		capped := i
		if capped > cycleOffsetCapAt {
			capped = cycleOffsetCapAt
		}
		offset := float64(capped) * cycleOffsetStep

		phases = append(phases,
			buildPhase(family, domain.FocusFoundation, 3, offset),
			buildPhase(family, domain.FocusDevelopment, 6, offset),
			buildPhase(family, domain.FocusPeak, 2, offset),
			deloadWeek(),
		)
	}

	switch {
	case remainder == 0:
	case remainder <= 4:
		phases = append(phases, buildPhase(family, domain.FocusMaintenance, remainder, 0))
	default:
		foundation := roundWeeks(0.25, remainder)
		if foundation < 1 {
			foundation = 1
		}
		phases = append(phases,
			buildPhase(family, domain.FocusFoundation, foundation, 0),
			buildPhase(family, domain.FocusDevelopment, remainder-foundation, 0),
		)
	}
	return phases
}
