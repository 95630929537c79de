// File: internal/usecase/aiplan_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/domain/ports/repository"
)

var _ AIPlanUseCase = (*aiPlanUC)(nil)

// AIPlanUseCase generates weekly training plans. The generator is a
// deterministic template keyed on goal and level; every request and its
// result are persisted for a later real generator to learn from.
type AIPlanUseCase interface {
	Generate(ctx context.Context, userID, goal, level string, daysCount int) (*model.AIPlan, error)
	Latest(ctx context.Context, userID string) (*model.AIPlan, error)
}

type aiPlanUC struct {
	plans repository.AIPlanRepository
}

func NewAIPlanUseCase(plans repository.AIPlanRepository) *aiPlanUC {
	return &aiPlanUC{plans: plans}
}

var planFocusRotation = map[string][]string{
	"lose_weight": {"cardio", "full_body", "rest", "cardio", "core", "full_body", "rest"},
	"gain_muscle": {"upper_body", "lower_body", "rest", "push", "pull", "legs", "rest"},
	"keep_fit":    {"full_body", "rest", "cardio", "rest", "full_body", "mobility", "rest"},
}

var planItemsByLevel = map[string]map[string][]string{
	"beginner": {
		"cardio":     {"20 min brisk walk", "5 min cooldown stretch"},
		"full_body":  {"2x10 squats", "2x8 push-ups (knees ok)", "2x10 crunches"},
		"core":       {"2x20s plank", "2x10 crunches", "2x10 leg raises"},
		"upper_body": {"2x8 push-ups", "2x10 band rows", "2x10 shoulder taps"},
		"lower_body": {"2x10 squats", "2x10 lunges", "2x12 glute bridges"},
		"push":       {"2x8 push-ups", "2x10 dips on chair", "2x10 pike push-ups"},
		"pull":       {"2x10 band rows", "2x8 doorway rows", "2x10 reverse flys"},
		"legs":       {"2x10 squats", "2x10 lunges", "2x15 calf raises"},
		"mobility":   {"10 min yoga flow", "5 min hip openers"},
		"rest":       {"light stretching, 10 min walk"},
	},
	"intermediate": {
		"cardio":     {"30 min run", "4x30s sprints", "cooldown stretch"},
		"full_body":  {"3x15 squats", "3x12 push-ups", "3x15 crunches", "3x30s plank"},
		"core":       {"3x45s plank", "3x15 leg raises", "3x20 bicycle crunches"},
		"upper_body": {"3x12 push-ups", "3x12 rows", "3x12 shoulder press"},
		"lower_body": {"3x15 squats", "3x12 lunges per leg", "3x15 glute bridges"},
		"push":       {"3x12 push-ups", "3x12 dips", "3x10 pike push-ups"},
		"pull":       {"3x10 pull-ups or rows", "3x12 band pulls", "3x12 reverse flys"},
		"legs":       {"3x15 squats", "3x12 jump lunges", "3x20 calf raises"},
		"mobility":   {"20 min yoga flow", "10 min deep stretch"},
		"rest":       {"20 min easy walk, foam rolling"},
	},
	"advanced": {
		"cardio":     {"40 min tempo run", "6x45s hill sprints", "cooldown stretch"},
		"full_body":  {"4x20 squats", "4x15 push-ups", "4x60s plank", "3x10 burpees"},
		"core":       {"4x60s plank", "4x20 hanging leg raises", "4x25 bicycle crunches"},
		"upper_body": {"4x15 push-ups", "4x10 pull-ups", "4x12 pike push-ups"},
		"lower_body": {"4x20 squats", "4x15 jump lunges", "4x20 single-leg bridges"},
		"push":       {"4x15 push-ups", "4x12 dips", "4x8 handstand push-up progressions"},
		"pull":       {"4x10 pull-ups", "4x12 archer rows", "4x15 band pulls"},
		"legs":       {"4x20 squats", "4x15 pistol squat progressions", "4x25 calf raises"},
		"mobility":   {"30 min yoga flow", "15 min deep stretch"},
		"rest":       {"30 min easy walk, foam rolling"},
	},
}

func (u *aiPlanUC) Generate(ctx context.Context, userID, goal, level string, daysCount int) (*model.AIPlan, error) {
	rotation, ok := planFocusRotation[goal]
	if !ok {
		return nil, domain.ErrInvalidArgument
	}
	items, ok := planItemsByLevel[level]
	if !ok {
		return nil, domain.ErrInvalidArgument
	}
	if daysCount < 1 || daysCount > 7 {
		daysCount = 7
	}

	now := time.Now().UTC()
	req := &model.AIPlanRequest{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      model.AIRequestGeneratePlan,
		Goal:      goal,
		Level:     level,
		DaysCount: daysCount,
		Status:    model.AIRequestStatusOK,
		CreatedAt: now,
	}

	plan := &model.AIPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		RequestID: req.ID,
		Goal:      goal,
		Level:     level,
		CreatedAt: now,
	}
	for i := 0; i < daysCount; i++ {
		focus := rotation[i%len(rotation)]
		plan.Days = append(plan.Days, model.AIPlanDay{
			Day:   i + 1,
			Focus: focus,
			Items: items[focus],
		})
	}

	if err := u.plans.SaveRequest(ctx, nil, req); err != nil {
		return nil, err
	}
	if err := u.plans.SavePlan(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (u *aiPlanUC) Latest(ctx context.Context, userID string) (*model.AIPlan, error) {
	return u.plans.FindLatestPlan(ctx, nil, userID)
}
