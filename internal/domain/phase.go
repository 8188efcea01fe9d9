// internal/domain/phase.go
package domain

// Goal identifies what the user is training for. The UI exposes the full list;
// the periodization engine only dispatches on the family a goal belongs to.
type Goal string

const (
	GoalStrength        Goal = "strength"
	GoalPowerlifting    Goal = "powerlifting"
	GoalOlympicLifting  Goal = "olympic_lifting"
	GoalHypertrophy     Goal = "hypertrophy"
	GoalMuscleGain      Goal = "muscle_gain"
	GoalBodybuilding    Goal = "bodybuilding"
	GoalFatLoss         Goal = "fat_loss"
	GoalWeightLoss      Goal = "weight_loss"
	GoalCutting         Goal = "cutting"
	GoalBodyRecomp      Goal = "body_recomposition"
	GoalEndurance       Goal = "endurance"
	GoalMarathon        Goal = "marathon_prep"
	GoalCardiovascular  Goal = "cardiovascular_health"
	GoalGeneralFitness  Goal = "general_fitness"
	GoalHealth          Goal = "health_longevity"
	GoalToning          Goal = "toning"
	GoalAthleticism     Goal = "athleticism"
	GoalSportSpecific   Goal = "sport_specific"
	GoalExplosivePower  Goal = "explosive_power"
)

// GoalFamily groups the goal values into the six template families.
type GoalFamily string

const (
	FamilyStrength       GoalFamily = "strength"
	FamilyHypertrophy    GoalFamily = "hypertrophy"
	FamilyFatLoss        GoalFamily = "fat_loss"
	FamilyEndurance      GoalFamily = "endurance"
	FamilyGeneralFitness GoalFamily = "general_fitness"
	FamilyAthletic       GoalFamily = "athletic"
)

// goalFamilies maps every goal onto its template family. Unknown goals fall
// back to general fitness via Family().
var goalFamilies = map[Goal]GoalFamily{
	GoalStrength:       FamilyStrength,
	GoalPowerlifting:   FamilyStrength,
	GoalOlympicLifting: FamilyStrength,
	GoalHypertrophy:    FamilyHypertrophy,
	GoalMuscleGain:     FamilyHypertrophy,
	GoalBodybuilding:   FamilyHypertrophy,
	GoalFatLoss:        FamilyFatLoss,
	GoalWeightLoss:     FamilyFatLoss,
	GoalCutting:        FamilyFatLoss,
	GoalBodyRecomp:     FamilyFatLoss,
	GoalEndurance:      FamilyEndurance,
	GoalMarathon:       FamilyEndurance,
	GoalCardiovascular: FamilyEndurance,
	GoalGeneralFitness: FamilyGeneralFitness,
	GoalHealth:         FamilyGeneralFitness,
	GoalToning:         FamilyGeneralFitness,
	GoalAthleticism:    FamilyAthletic,
	GoalSportSpecific:  FamilyAthletic,
	GoalExplosivePower: FamilyAthletic,
}

// Family returns the template family for the goal.
func (g Goal) Family() GoalFamily {
	if f, ok := goalFamilies[g]; ok {
		return f
	}
	return FamilyGeneralFitness
}

// PeriodizationStyle selects the macro structure of a plan.
type PeriodizationStyle string

const (
	StyleNone   PeriodizationStyle = "none"
	StyleAuto   PeriodizationStyle = "auto"
	StyleLinear PeriodizationStyle = "linear"
	StyleBlock  PeriodizationStyle = "block"
)

// PhaseFocus is the training emphasis of a single phase.
type PhaseFocus string

const (
	FocusFoundation  PhaseFocus = "foundation"
	FocusDevelopment PhaseFocus = "development"
	FocusPeak        PhaseFocus = "peak"
	FocusMaintenance PhaseFocus = "maintenance"
	FocusDeload      PhaseFocus = "deload"
)

// ProgressionType describes how load progresses within a phase.
type ProgressionType string

const (
	ProgressionLinear     ProgressionType = "linear"
	ProgressionUndulating ProgressionType = "undulating"
	ProgressionStatic     ProgressionType = "static"
)

// Intensity bounds every phase is clamped into, as fractions of 1RM.
const (
	IntensityFloor   = 0.40
	IntensityCeiling = 0.95
)

// IntensityRange is a closed interval of 1RM fractions.
type IntensityRange struct {
	Lower float64 `bson:"lower" json:"lower"`
	Upper float64 `bson:"upper" json:"upper"`
}

// Clamped returns the range with both bounds forced into
// [IntensityFloor, IntensityCeiling]. Degenerate (lower == upper) results
// are permitted.
func (r IntensityRange) Clamped() IntensityRange {
	return IntensityRange{
		Lower: clampIntensity(r.Lower),
		Upper: clampIntensity(r.Upper),
	}
}

func clampIntensity(v float64) float64 {
	if v < IntensityFloor {
		return IntensityFloor
	}
	if v > IntensityCeiling {
		return IntensityCeiling
	}
	return v
}

// Phase is the periodization engine's output unit. Persisting a Phase turns
// it into a Program.
type Phase struct {
	Focus       PhaseFocus      `bson:"focus" json:"focus"`
	Weeks       int             `bson:"weeks" json:"weeks"`
	Intensity   IntensityRange  `bson:"intensity" json:"intensity"`
	Progression ProgressionType `bson:"progression" json:"progression"`
	Rationale   string          `bson:"rationale" json:"rationale"`
}
