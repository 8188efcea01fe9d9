package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/periodization"
	"alcyxob/planforge/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler exposes the plan lifecycle over HTTP: creation, preview,
// activation, cascades, and schedule diagnosis.
type PlanHandler struct {
	plans     *service.PlanService
	lifecycle *service.LifecycleService
	cascade   *service.CascadeService
	analyzer  *service.ScheduleAnalyzer
	mirror    *service.SnapshotMirror
}

func NewPlanHandler(
	plans *service.PlanService,
	lifecycle *service.LifecycleService,
	cascade *service.CascadeService,
	analyzer *service.ScheduleAnalyzer,
	mirror *service.SnapshotMirror,
) *PlanHandler {
	return &PlanHandler{
		plans:     plans,
		lifecycle: lifecycle,
		cascade:   cascade,
		analyzer:  analyzer,
		mirror:    mirror,
	}
}

// --- Request/Response Structs ---

type CreatePlanRequest struct {
	Name                 string             `json:"name" binding:"required"`
	Goal                 domain.Goal        `json:"goal" binding:"required"`
	TotalWeeks           int                `json:"totalWeeks" binding:"required,min=1"`
	PeriodizationStyle   string             `json:"periodizationStyle"`
	IncludeDeloads       bool               `json:"includeDeloads"`
	DeloadFrequencyWeeks int                `json:"deloadFrequencyWeeks"`
	CustomIntensityStart *float64           `json:"customIntensityStart"`
	CustomIntensityEnd   *float64           `json:"customIntensityEnd"`
	StartDate            string             `json:"startDate" binding:"required"`
	WeightliftingDays    int                `json:"weightliftingDays" binding:"required,min=1,max=7"`
	CardioDays           int                `json:"cardioDays" binding:"min=0,max=7"`
	Split                domain.SplitType   `json:"split"`
	PreferredDays        []int              `json:"preferredDays"`
	DayAssignments       map[int]string     `json:"dayAssignments"`
	EmphasizedGroups     []string           `json:"emphasizedMuscleGroups"`
	ExcludedGroups       []string           `json:"excludedMuscleGroups"`
	GoalWeight           *float64           `json:"goalWeight"`
	ExperienceOverride   string             `json:"experienceOverride"`
	TrainerID            *string            `json:"trainerId"`
	SingleWorkout        bool               `json:"singleWorkout"`
}

type RescheduleRequest struct {
	WeightliftingDays *int              `json:"weightliftingDays"`
	CardioDays        *int              `json:"cardioDays"`
	Split             *domain.SplitType `json:"split"`
	PreferredDays     []int             `json:"preferredDays"`
	DayAssignments    map[int]string    `json:"dayAssignments"`
}

type PlanDetailResponse struct {
	Plan            *domain.Plan      `json:"plan"`
	EffectiveStatus domain.PlanStatus `json:"effectiveStatus"`
	Programs        []domain.Program  `json:"programs,omitempty"`
	Workouts        []domain.Workout  `json:"workouts,omitempty"`
}

type ActivateResponse struct {
	Plan              *domain.Plan `json:"plan"`
	DeactivatedPlanID *string      `json:"deactivatedPlanId,omitempty"`
	CancelledWorkouts int          `json:"cancelledWorkouts,omitempty"`
}

// --- Handler Methods ---

// CreatePlan handles POST /plans.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	params, err := req.toParams()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.plans.CreatePlan(c.Request.Context(), ownerID, params)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// PreviewPhases handles POST /plans/preview. Dry run of the phase
// engine; nothing is stored.
func (h *PlanHandler) PreviewPhases(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	params, err := req.toParams()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := h.plans.PreviewPhases(params)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// ListPlans handles GET /plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// ListCoachedPlans handles GET /coached-plans for trainer accounts. The
// route is role-gated; the service re-checks the account's role itself.
func (h *PlanHandler) ListCoachedPlans(c *gin.Context) {
	trainerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	plans, err := h.plans.ListCoachedPlans(c.Request.Context(), trainerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan handles GET /plans/:planId with the full program and workout
// tree.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	withStatus, err := h.plans.GetPlan(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	programs, err := h.plans.GetPrograms(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	workouts, err := h.plans.GetWorkouts(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, PlanDetailResponse{
		Plan:            withStatus.Plan,
		EffectiveStatus: withStatus.EffectiveStatus,
		Programs:        programs,
		Workouts:        workouts,
	})
}

// Activate handles POST /plans/:planId/activate. With
// ?autoDeactivate=true an overlapping active plan is abandoned instead
// of failing the request.
func (h *PlanHandler) Activate(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}

	if c.Query("autoDeactivate") == "true" {
		result, err := h.lifecycle.ActivateWithAutoDeactivate(c.Request.Context(), planID, ownerID)
		if err != nil {
			h.respondPlanError(c, err)
			return
		}
		resp := ActivateResponse{Plan: result.Plan, CancelledWorkouts: result.CancelledWorkouts}
		if result.DeactivatedPlanID != nil {
			hex := result.DeactivatedPlanID.Hex()
			resp.DeactivatedPlanID = &hex
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	plan, err := h.lifecycle.Activate(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, ActivateResponse{Plan: plan})
}

// Complete handles POST /plans/:planId/complete.
func (h *PlanHandler) Complete(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	plan, err := h.lifecycle.Deactivate(c.Request.Context(), planID, ownerID, domain.PlanStatusCompleted)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Abandon handles POST /plans/:planId/abandon.
func (h *PlanHandler) Abandon(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	cancelled, err := h.cascade.Abandon(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelledWorkouts": cancelled})
}

// Reschedule handles POST /plans/:planId/reschedule.
func (h *PlanHandler) Reschedule(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	result, err := h.cascade.Reschedule(c.Request.Context(), planID, ownerID, service.ScheduleParams{
		WeightliftingDays: req.WeightliftingDays,
		CardioDays:        req.CardioDays,
		Split:             req.Split,
		PreferredDays:     req.PreferredDays,
		DayAssignments:    req.DayAssignments,
	})
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeletePreview handles GET /plans/:planId/delete-preview.
func (h *PlanHandler) DeletePreview(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	summary, err := h.cascade.PreviewDelete(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Delete handles DELETE /plans/:planId.
func (h *PlanHandler) Delete(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	summary, err := h.cascade.Delete(c.Request.Context(), planID, ownerID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ScheduleStatus handles GET /plans/:planId/schedule-status.
func (h *PlanHandler) ScheduleStatus(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	// Ownership check before reading workouts.
	if _, err := h.plans.GetPlan(c.Request.Context(), planID, ownerID); err != nil {
		h.respondPlanError(c, err)
		return
	}
	diagnosis, err := h.analyzer.Analyze(c.Request.Context(), planID)
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, diagnosis)
}

// SnapshotURL handles GET /plans/:planId/snapshot-url, returning a
// presigned link to the latest archived copy of the plan.
func (h *PlanHandler) SnapshotURL(c *gin.Context) {
	ownerID, planID, ok := h.ownerAndPlanID(c)
	if !ok {
		return
	}
	if _, err := h.plans.GetPlan(c.Request.Context(), planID, ownerID); err != nil {
		h.respondPlanError(c, err)
		return
	}
	url, err := h.mirror.SnapshotDownloadURL(c.Request.Context(), planID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not generate snapshot download URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// --- Helpers ---

func (r *CreatePlanRequest) toParams() (service.CreatePlanParams, error) {
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return service.CreatePlanParams{}, fmt.Errorf("invalid startDate: %v", err)
	}

	params := service.CreatePlanParams{
		Name:                 r.Name,
		Goal:                 r.Goal,
		TotalWeeks:           r.TotalWeeks,
		Style:                domain.PeriodizationStyle(r.PeriodizationStyle),
		IncludeDeloads:       r.IncludeDeloads,
		DeloadFrequencyWeeks: r.DeloadFrequencyWeeks,
		CustomIntensityStart: r.CustomIntensityStart,
		CustomIntensityEnd:   r.CustomIntensityEnd,
		StartDate:            startDate,
		WeightliftingDays:    r.WeightliftingDays,
		CardioDays:           r.CardioDays,
		Split:                r.Split,
		PreferredDays:        r.PreferredDays,
		DayAssignments:       r.DayAssignments,
		EmphasizedGroups:     r.EmphasizedGroups,
		ExcludedGroups:       r.ExcludedGroups,
		GoalWeight:           r.GoalWeight,
		ExperienceOverride:   r.ExperienceOverride,
		SingleWorkout:        r.SingleWorkout,
	}
	if r.PeriodizationStyle == "" {
		params.Style = domain.StyleAuto
	}
	if r.TrainerID != nil {
		trainerID, err := primitive.ObjectIDFromHex(*r.TrainerID)
		if err != nil {
			return service.CreatePlanParams{}, fmt.Errorf("invalid trainerId: %v", err)
		}
		params.TrainerID = &trainerID
	}
	return params, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (h *PlanHandler) ownerID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "User identity missing from request context")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user identity in request context")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *PlanHandler) ownerAndPlanID(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return ownerID, planID, true
}

// respondPlanError maps service sentinels onto HTTP statuses. Overlap
// failures carry the conflicting plan so clients can offer the
// auto-deactivate retry.
func (h *PlanHandler) respondPlanError(c *gin.Context, err error) {
	var overlap *service.OverlapError
	switch {
	case errors.As(err, &overlap):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":             overlap.Error(),
			"conflictingPlanId": overlap.ConflictingPlanID.Hex(),
			"conflictingName":   overlap.ConflictingName,
			"startDate":         overlap.StartDate.Format("2006-01-02"),
			"endDate":           overlap.EndDate.Format("2006-01-02"),
		})
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyActive),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCannotActivate),
		errors.Is(err, service.ErrNotActive),
		errors.Is(err, service.ErrCannotDeleteActive):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidPlanParams),
		errors.Is(err, periodization.ErrInvalidWeeks),
		errors.Is(err, periodization.ErrInvalidIntensity):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPersistence):
		abortWithError(c, http.StatusInternalServerError, "Failed to persist changes")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
