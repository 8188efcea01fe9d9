// Package schedule provides the default implementations of the workout
// generation pipeline: laying out sessions on the calendar, filling them
// with exercises, and prescribing set protocols.
package schedule

import (
	"context"
	"errors"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/service"
)

var ErrInvalidWindow = errors.New("schedule window end precedes start")

// defaultLiftingDays maps a weekly frequency to the weekdays used when
// the plan has no preferred days. Rest days are spread out rather than
// stacked.
var defaultLiftingDays = map[int][]time.Weekday{
	1: {time.Monday},
	2: {time.Monday, time.Thursday},
	3: {time.Monday, time.Wednesday, time.Friday},
	4: {time.Monday, time.Tuesday, time.Thursday, time.Friday},
	5: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	6: {time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	7: {time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
}

// splitRotations name the lifting sessions cycled through across a
// program, per split type.
var splitRotations = map[domain.SplitType][]string{
	domain.SplitFullBody:     {"Full Body A", "Full Body B"},
	domain.SplitUpperLower:   {"Upper Body", "Lower Body"},
	domain.SplitPushPullLegs: {"Push", "Pull", "Legs"},
	domain.SplitBodyPart:     {"Chest & Triceps", "Back & Biceps", "Legs", "Shoulders & Core"},
}

const cardioSessionName = "Conditioning"

// WeekdayGenerator lays workouts onto the calendar by walking the
// program window day by day. Lifting sessions land on the preferred
// weekdays (or a sensible default spread) and rotate through the split's
// session names; cardio sessions fill otherwise free weekdays.
type WeekdayGenerator struct{}

func NewWeekdayGenerator() *WeekdayGenerator {
	return &WeekdayGenerator{}
}

var _ service.ScheduleGenerator = (*WeekdayGenerator)(nil)

func (g *WeekdayGenerator) GenerateWorkouts(ctx context.Context, req service.GenerateRequest) ([]domain.Workout, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidWindow
	}

	liftingDays := g.liftingDays(req)
	cardioDays := g.cardioDays(req, liftingDays)
	rotation := splitRotations[req.Split]
	if len(rotation) == 0 {
		rotation = splitRotations[domain.SplitFullBody]
	}

	var workouts []domain.Workout
	sequence := 0
	liftIndex := 0
	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		weekday := day.Weekday()
		switch {
		case liftingDays[weekday]:
			name := rotation[liftIndex%len(rotation)]
			if pinned, ok := req.DayAssignments[int(weekday)]; ok && pinned != "" {
				name = pinned
			}
			sequence++
			liftIndex++
			workouts = append(workouts, g.workout(req, name, day, sequence, false))
		case cardioDays[weekday]:
			sequence++
			workouts = append(workouts, g.workout(req, cardioSessionName, day, sequence, true))
		}
	}
	return workouts, nil
}

func (g *WeekdayGenerator) workout(req service.GenerateRequest, name string, day time.Time, sequence int, cardio bool) domain.Workout {
	return domain.Workout{
		ProgramID:     req.ProgramID,
		PlanID:        req.PlanID,
		OwnerID:       req.OwnerID,
		Name:          name,
		Status:        domain.WorkoutStatusScheduled,
		ScheduledDate: day,
		Sequence:      sequence,
		IsCardio:      cardio,
	}
}

func (g *WeekdayGenerator) liftingDays(req service.GenerateRequest) map[time.Weekday]bool {
	days := make(map[time.Weekday]bool)
	perWeek := req.DaysPerWeek
	if perWeek < 1 {
		perWeek = 1
	}
	if perWeek > 7 {
		perWeek = 7
	}

	if len(req.PreferredDays) > 0 {
		for _, d := range req.PreferredDays {
			if d < 0 || d > 6 || len(days) == perWeek {
				continue
			}
			days[time.Weekday(d)] = true
		}
	}
	if len(days) < perWeek {
		for _, d := range defaultLiftingDays[perWeek] {
			if len(days) == perWeek {
				break
			}
			days[d] = true
		}
	}
	// Preferred days may collide with the defaults; top up from the full
	// week if the frequency is still short.
	for d := time.Sunday; d <= time.Saturday && len(days) < perWeek; d++ {
		days[d] = true
	}
	return days
}

func (g *WeekdayGenerator) cardioDays(req service.GenerateRequest, lifting map[time.Weekday]bool) map[time.Weekday]bool {
	days := make(map[time.Weekday]bool)
	// Fill weekend first, then weekdays, so cardio lands on likely free
	// days.
	order := []time.Weekday{time.Saturday, time.Sunday, time.Tuesday, time.Thursday, time.Wednesday, time.Friday, time.Monday}
	for _, d := range order {
		if len(days) == req.CardioDays {
			break
		}
		if lifting[d] {
			continue
		}
		days[d] = true
	}
	return days
}
