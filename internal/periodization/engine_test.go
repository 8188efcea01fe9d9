package periodization

import (
	"testing"

	"alcyxob/planforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumWeeks(phases []domain.Phase) int {
	total := 0
	for _, p := range phases {
		total += p.Weeks
	}
	return total
}

var allGoals = []domain.Goal{
	domain.GoalStrength, domain.GoalPowerlifting, domain.GoalOlympicLifting,
	domain.GoalHypertrophy, domain.GoalMuscleGain, domain.GoalBodybuilding,
	domain.GoalFatLoss, domain.GoalWeightLoss, domain.GoalCutting, domain.GoalBodyRecomp,
	domain.GoalEndurance, domain.GoalMarathon, domain.GoalCardiovascular,
	domain.GoalGeneralFitness, domain.GoalHealth, domain.GoalToning,
	domain.GoalAthleticism, domain.GoalSportSpecific, domain.GoalExplosivePower,
}

var allStyles = []domain.PeriodizationStyle{
	domain.StyleNone, domain.StyleAuto, domain.StyleLinear, domain.StyleBlock,
}

func TestCalculatePhases_WeekSumExact(t *testing.T) {
	for _, goal := range allGoals {
		for _, style := range allStyles {
			for weeks := 1; weeks <= 60; weeks++ {
				phases, err := CalculatePhases(Params{
					Goal:                 goal,
					TotalWeeks:           weeks,
					Style:                style,
					IncludeDeloads:       true,
					DeloadFrequencyWeeks: 4,
				})
				require.NoError(t, err)
				require.NotEmpty(t, phases)
				if got := sumWeeks(phases); got != weeks {
					t.Fatalf("goal=%s style=%s weeks=%d: phase weeks sum to %d", goal, style, weeks, got)
				}
			}
		}
	}
}

func TestCalculatePhases_IntensityBounds(t *testing.T) {
	for _, goal := range allGoals {
		for weeks := 1; weeks <= 60; weeks += 3 {
			phases, err := CalculatePhases(Params{
				Goal:                 goal,
				TotalWeeks:           weeks,
				Style:                domain.StyleAuto,
				IncludeDeloads:       true,
				DeloadFrequencyWeeks: 6,
			})
			require.NoError(t, err)
			for i, p := range phases {
				assert.GreaterOrEqual(t, p.Intensity.Lower, domain.IntensityFloor,
					"goal=%s weeks=%d phase=%d", goal, weeks, i)
				assert.LessOrEqual(t, p.Intensity.Lower, p.Intensity.Upper,
					"goal=%s weeks=%d phase=%d", goal, weeks, i)
				assert.LessOrEqual(t, p.Intensity.Upper, domain.IntensityCeiling,
					"goal=%s weeks=%d phase=%d", goal, weeks, i)
				assert.Greater(t, p.Weeks, 0, "goal=%s weeks=%d phase=%d", goal, weeks, i)
			}
		}
	}
}

func TestCalculatePhases_InvalidWeeks(t *testing.T) {
	_, err := CalculatePhases(Params{Goal: domain.GoalStrength, TotalWeeks: 0, Style: domain.StyleAuto})
	assert.ErrorIs(t, err, ErrInvalidWeeks)
}

func TestCalculatePhases_TrivialCases(t *testing.T) {
	t.Run("three weeks or fewer collapse to one development phase", func(t *testing.T) {
		phases, err := CalculatePhases(Params{Goal: domain.GoalHypertrophy, TotalWeeks: 2, Style: domain.StyleAuto})
		require.NoError(t, err)
		require.Len(t, phases, 1)
		assert.Equal(t, domain.FocusDevelopment, phases[0].Focus)
		assert.Equal(t, 2, phases[0].Weeks)
		assert.NotEmpty(t, phases[0].Rationale)
	})

	t.Run("style none collapses regardless of duration", func(t *testing.T) {
		phases, err := CalculatePhases(Params{Goal: domain.GoalStrength, TotalWeeks: 14, Style: domain.StyleNone})
		require.NoError(t, err)
		require.Len(t, phases, 1)
		assert.Equal(t, domain.FocusDevelopment, phases[0].Focus)
		assert.Equal(t, 14, phases[0].Weeks)
	})
}

func TestCalculatePhases_StrengthTenWeekScenario(t *testing.T) {
	// strength + auto below 12 weeks resolves to linear and yields a
	// development -> peak pair.
	assert.Equal(t, domain.StyleLinear, ResolveStyle(domain.GoalStrength, domain.StyleAuto, 10))

	phases, err := CalculatePhases(Params{
		Goal:       domain.GoalStrength,
		TotalWeeks: 10,
		Style:      domain.StyleAuto,
	})
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, domain.FocusDevelopment, phases[0].Focus)
	assert.Equal(t, domain.FocusPeak, phases[1].Focus)
	assert.Equal(t, 10, sumWeeks(phases))
	assert.InDelta(t, 0.70, phases[0].Intensity.Lower, 1e-9)
}

func TestResolveStyle(t *testing.T) {
	assert.Equal(t, domain.StyleBlock, ResolveStyle(domain.GoalStrength, domain.StyleAuto, 12))
	assert.Equal(t, domain.StyleBlock, ResolveStyle(domain.GoalPowerlifting, domain.StyleAuto, 16))
	assert.Equal(t, domain.StyleLinear, ResolveStyle(domain.GoalHypertrophy, domain.StyleAuto, 16))
	assert.Equal(t, domain.StyleBlock, ResolveStyle(domain.GoalEndurance, domain.StyleAuto, 8))
	assert.Equal(t, domain.StyleLinear, ResolveStyle(domain.GoalEndurance, domain.StyleLinear, 8))
}

func TestCalculatePhases_AnnualCycles(t *testing.T) {
	t.Run("40 weeks gives three mesocycles plus maintenance", func(t *testing.T) {
		phases, err := CalculatePhases(Params{Goal: domain.GoalStrength, TotalWeeks: 40, Style: domain.StyleAuto})
		require.NoError(t, err)
		assert.Equal(t, 40, sumWeeks(phases))

		// 3 cycles of foundation/development/peak/deload, then a 4-week
		// maintenance remainder.
		require.Len(t, phases, 13)
		for c := 0; c < 3; c++ {
			assert.Equal(t, domain.FocusFoundation, phases[c*4].Focus)
			assert.Equal(t, 3, phases[c*4].Weeks)
			assert.Equal(t, domain.FocusDevelopment, phases[c*4+1].Focus)
			assert.Equal(t, 6, phases[c*4+1].Weeks)
			assert.Equal(t, domain.FocusPeak, phases[c*4+2].Focus)
			assert.Equal(t, 2, phases[c*4+2].Weeks)
			assert.Equal(t, domain.FocusDeload, phases[c*4+3].Focus)
			assert.Equal(t, 1, phases[c*4+3].Weeks)
		}
		assert.Equal(t, domain.FocusMaintenance, phases[12].Focus)
		assert.Equal(t, 4, phases[12].Weeks)
	})

	t.Run("successive cycles shift intensity upward", func(t *testing.T) {
		phases, err := CalculatePhases(Params{Goal: domain.GoalHypertrophy, TotalWeeks: 36, Style: domain.StyleAuto})
		require.NoError(t, err)
		first := phases[1].Intensity.Lower  // cycle 0 development
		second := phases[5].Intensity.Lower // cycle 1 development
		third := phases[9].Intensity.Lower  // cycle 2 development
		assert.InDelta(t, first+0.02, second, 1e-9)
		assert.InDelta(t, first+0.04, third, 1e-9)
	})

	t.Run("large remainder becomes foundation plus development", func(t *testing.T) {
		phases, err := CalculatePhases(Params{Goal: domain.GoalGeneralFitness, TotalWeeks: 17, Style: domain.StyleAuto})
		require.NoError(t, err)
		assert.Equal(t, 17, sumWeeks(phases))
		tail := phases[len(phases)-2:]
		assert.Equal(t, domain.FocusFoundation, tail[0].Focus)
		assert.Equal(t, domain.FocusDevelopment, tail[1].Focus)
		assert.Equal(t, 5, tail[0].Weeks+tail[1].Weeks)
	})
}

func TestCalculatePhases_HypertrophySplitsDevelopment(t *testing.T) {
	phases, err := CalculatePhases(Params{Goal: domain.GoalMuscleGain, TotalWeeks: 12, Style: domain.StyleAuto})
	require.NoError(t, err)
	require.Len(t, phases, 4)
	assert.Equal(t, domain.FocusFoundation, phases[0].Focus)
	assert.Equal(t, domain.FocusDevelopment, phases[1].Focus)
	assert.Equal(t, domain.FocusDevelopment, phases[2].Focus)
	assert.Equal(t, domain.FocusPeak, phases[3].Focus)
	// Second accumulation block runs heavier than the first.
	assert.Greater(t, phases[2].Intensity.Lower, phases[1].Intensity.Lower)
	assert.Equal(t, 12, sumWeeks(phases))
}
