package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories. They preserve insertion order so tests can
// assert on ordering without caring about Mongo sort specs.

type memUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *user
	c.ID = id
	r.users[id] = &c
	return id, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) AddExercisesToLibrary(ctx context.Context, ownerID primitive.ObjectID, exerciseIDs []primitive.ObjectID) error {
	u, ok := r.users[ownerID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ExerciseLibraryIDs = appendMissing(u.ExerciseLibraryIDs, exerciseIDs)
	return nil
}

func (r *memUserRepo) AddProtocolsToLibrary(ctx context.Context, ownerID primitive.ObjectID, protocolIDs []primitive.ObjectID) error {
	u, ok := r.users[ownerID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProtocolLibraryIDs = appendMissing(u.ProtocolLibraryIDs, protocolIDs)
	return nil
}

func appendMissing(existing, add []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range add {
		if _, ok := seen[id]; !ok {
			existing = append(existing, id)
			seen[id] = struct{}{}
		}
	}
	return existing
}

type memPlanRepo struct {
	order []primitive.ObjectID
	plans map[primitive.ObjectID]*domain.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *plan
	c.ID = id
	if c.Status == "" {
		c.Status = domain.PlanStatusDraft
	}
	r.plans[id] = &c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memPlanRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, id := range r.order {
		if p, ok := r.plans[id]; ok && p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, id := range r.order {
		if p, ok := r.plans[id]; ok && p.TrainerID != nil && *p.TrainerID == trainerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *plan
	r.plans[plan.ID] = &c
	return nil
}

func (r *memPlanRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memProgramRepo struct {
	order    []primitive.ObjectID
	programs map[primitive.ObjectID]*domain.Program
}

func newMemProgramRepo() *memProgramRepo {
	return &memProgramRepo{programs: make(map[primitive.ObjectID]*domain.Program)}
}

func (r *memProgramRepo) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *program
	c.ID = id
	r.programs[id] = &c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memProgramRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProgramRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Program, error) {
	var out []domain.Program
	for _, id := range r.order {
		if p, ok := r.programs[id]; ok && p.PlanID == planID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProgramRepo) Update(ctx context.Context, program *domain.Program) error {
	if _, ok := r.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *program
	r.programs[program.ID] = &c
	return nil
}

func (r *memProgramRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.programs, id)
	return nil
}

type memWorkoutRepo struct {
	order    []primitive.ObjectID
	workouts map[primitive.ObjectID]*domain.Workout
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
}

func (r *memWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *workout
	c.ID = id
	if c.Status == "" {
		c.Status = domain.WorkoutStatusScheduled
	}
	r.workouts[id] = &c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (r *memWorkoutRepo) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, id := range r.order {
		if w, ok := r.workouts[id]; ok && w.ProgramID == programID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memWorkoutRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, id := range r.order {
		if w, ok := r.workouts[id]; ok && w.PlanID == planID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *workout
	r.workouts[workout.ID] = &c
	return nil
}

func (r *memWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type memInstanceRepo struct {
	order     []primitive.ObjectID
	instances map[primitive.ObjectID]*domain.ExerciseInstance
}

func newMemInstanceRepo() *memInstanceRepo {
	return &memInstanceRepo{instances: make(map[primitive.ObjectID]*domain.ExerciseInstance)}
}

func (r *memInstanceRepo) Create(ctx context.Context, instance *domain.ExerciseInstance) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *instance
	c.ID = id
	r.instances[id] = &c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memInstanceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *inst
	return &c, nil
}

func (r *memInstanceRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.ExerciseInstance, error) {
	var out []domain.ExerciseInstance
	for _, id := range r.order {
		if inst, ok := r.instances[id]; ok && inst.WorkoutID == workoutID {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (r *memInstanceRepo) Update(ctx context.Context, instance *domain.ExerciseInstance) error {
	if _, ok := r.instances[instance.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *instance
	r.instances[instance.ID] = &c
	return nil
}

func (r *memInstanceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.instances[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.instances, id)
	return nil
}

type memSetRepo struct {
	order []primitive.ObjectID
	sets  map[primitive.ObjectID]*domain.ExerciseSet
}

func newMemSetRepo() *memSetRepo {
	return &memSetRepo{sets: make(map[primitive.ObjectID]*domain.ExerciseSet)}
}

func (r *memSetRepo) Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	c := *set
	c.ID = id
	r.sets[id] = &c
	r.order = append(r.order, id)
	return id, nil
}

func (r *memSetRepo) GetByInstanceID(ctx context.Context, instanceID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	var out []domain.ExerciseSet
	for _, id := range r.order {
		if s, ok := r.sets[id]; ok && s.InstanceID == instanceID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSetRepo) Update(ctx context.Context, set *domain.ExerciseSet) error {
	if _, ok := r.sets[set.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *set
	r.sets[set.ID] = &c
	return nil
}

func (r *memSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.sets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sets, id)
	return nil
}

// Generation stubs.

type stubGenerator struct {
	requests   []GenerateRequest
	perRequest int // workouts emitted per call, default 1
	offsetDays int // days between the window start and the first workout
}

func (g *stubGenerator) GenerateWorkouts(ctx context.Context, req GenerateRequest) ([]domain.Workout, error) {
	g.requests = append(g.requests, req)
	n := g.perRequest
	if n == 0 {
		n = 1
	}
	var out []domain.Workout
	for i := 0; i < n; i++ {
		out = append(out, domain.Workout{
			ProgramID:     req.ProgramID,
			PlanID:        req.PlanID,
			OwnerID:       req.OwnerID,
			Name:          fmt.Sprintf("Session %d", i+1),
			Status:        domain.WorkoutStatusScheduled,
			ScheduledDate: req.StartDate.AddDate(0, 0, g.offsetDays+i),
			Sequence:      i + 1,
		})
	}
	return out, nil
}

func (g *stubGenerator) lastRequest() GenerateRequest {
	return g.requests[len(g.requests)-1]
}

type stubPopulator struct {
	perWorkout int
	setsPer    int
}

func (p *stubPopulator) PopulateWorkout(ctx context.Context, plan *domain.Plan, program *domain.Program, workout *domain.Workout) ([]PopulatedInstance, error) {
	var out []PopulatedInstance
	for i := 0; i < p.perWorkout; i++ {
		inst := PopulatedInstance{
			Instance: domain.ExerciseInstance{
				WorkoutID:  workout.ID,
				ExerciseID: primitive.NewObjectID(),
				Sequence:   i + 1,
			},
		}
		for s := 0; s < p.setsPer; s++ {
			inst.Sets = append(inst.Sets, domain.ExerciseSet{Sequence: s + 1, TargetReps: 8})
		}
		out = append(out, inst)
	}
	return out, nil
}

type stubProtocols struct {
	protocolID *primitive.ObjectID
}

func (a *stubProtocols) AssignProtocols(ctx context.Context, plan *domain.Plan, program *domain.Program, instances []PopulatedInstance) error {
	if a.protocolID == nil {
		return nil
	}
	for i := range instances {
		instances[i].Instance.ProtocolID = a.protocolID
	}
	return nil
}

// fixture wires every service against the in-memory repos with a frozen
// clock.
type fixture struct {
	ctx       context.Context
	now       time.Time
	users     *memUserRepo
	plans     *memPlanRepo
	programs  *memProgramRepo
	workouts  *memWorkoutRepo
	instances *memInstanceRepo
	sets      *memSetRepo
	generator *stubGenerator
	populator *stubPopulator
	protocols *stubProtocols
	cascade   *CascadeService
	lifecycle *LifecycleService
	planSvc   *PlanService
	ownerID   primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		now:       time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		users:     newMemUserRepo(),
		plans:     newMemPlanRepo(),
		programs:  newMemProgramRepo(),
		workouts:  newMemWorkoutRepo(),
		instances: newMemInstanceRepo(),
		sets:      newMemSetRepo(),
		generator: &stubGenerator{},
		populator: &stubPopulator{},
		protocols: &stubProtocols{},
	}
	clock := func() time.Time { return f.now }
	locks := NewOwnerLocks()

	f.cascade = NewCascadeService(f.plans, f.programs, f.workouts, f.instances, f.sets,
		f.generator, f.populator, f.protocols, locks, nil)
	f.cascade.now = clock

	f.lifecycle = NewLifecycleService(f.plans, f.programs, f.workouts, f.instances, f.users,
		f.cascade, locks, nil)
	f.lifecycle.now = clock

	f.planSvc = NewPlanService(f.plans, f.programs, f.workouts, f.users,
		f.generator, f.populator, f.protocols, f.cascade, nil)
	f.planSvc.now = clock

	owner := &domain.User{Name: "Test Owner", Email: "owner@example.com", Role: domain.RoleClient}
	ownerID, err := f.users.Create(f.ctx, owner)
	require.NoError(t, err)
	f.ownerID = ownerID
	return f
}

func (f *fixture) seedTrainer(t *testing.T) primitive.ObjectID {
	t.Helper()
	trainer := &domain.User{Name: "Coach", Email: "coach@example.com", Role: domain.RoleTrainer}
	id, err := f.users.Create(f.ctx, trainer)
	require.NoError(t, err)
	return id
}

func (f *fixture) day(offset int) time.Time {
	return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func (f *fixture) seedPlan(t *testing.T, status domain.PlanStatus, start, end time.Time) *domain.Plan {
	t.Helper()
	plan := &domain.Plan{
		OwnerID:           f.ownerID,
		Name:              "Seeded Plan",
		Goal:              domain.GoalStrength,
		Status:            status,
		StartDate:         start,
		EndDate:           end,
		WeightliftingDays: 3,
		Split:             domain.SplitFullBody,
	}
	id, err := f.plans.Create(f.ctx, plan)
	require.NoError(t, err)
	plan.ID = id
	return plan
}

func (f *fixture) seedProgram(t *testing.T, plan *domain.Plan, start, end time.Time) *domain.Program {
	t.Helper()
	program := &domain.Program{
		PlanID:    plan.ID,
		OwnerID:   plan.OwnerID,
		Name:      "Phase 1: Development",
		Sequence:  1,
		Focus:     domain.FocusDevelopment,
		Weeks:     int(end.Sub(start).Hours()/24/7) + 1,
		StartDate: start,
		EndDate:   end,
	}
	id, err := f.programs.Create(f.ctx, program)
	require.NoError(t, err)
	program.ID = id
	return program
}

func (f *fixture) seedWorkout(t *testing.T, program *domain.Program, status domain.WorkoutStatus, date time.Time) *domain.Workout {
	t.Helper()
	workout := &domain.Workout{
		ProgramID:     program.ID,
		PlanID:        program.PlanID,
		OwnerID:       program.OwnerID,
		Name:          "Session",
		Status:        status,
		ScheduledDate: date,
	}
	id, err := f.workouts.Create(f.ctx, workout)
	require.NoError(t, err)
	workout.ID = id
	return workout
}

func (f *fixture) seedInstance(t *testing.T, workout *domain.Workout, protocolID *primitive.ObjectID) *domain.ExerciseInstance {
	t.Helper()
	inst := &domain.ExerciseInstance{
		WorkoutID:  workout.ID,
		ExerciseID: primitive.NewObjectID(),
		ProtocolID: protocolID,
		Sequence:   1,
	}
	id, err := f.instances.Create(f.ctx, inst)
	require.NoError(t, err)
	inst.ID = id
	return inst
}

func (f *fixture) seedSet(t *testing.T, inst *domain.ExerciseInstance, sequence int) *domain.ExerciseSet {
	t.Helper()
	set := &domain.ExerciseSet{InstanceID: inst.ID, Sequence: sequence, TargetReps: 8}
	id, err := f.sets.Create(f.ctx, set)
	require.NoError(t, err)
	set.ID = id
	return set
}
