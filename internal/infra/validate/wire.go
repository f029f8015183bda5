package validate

import "github.com/vietddude/fitlink/internal/core/domain"

// Wire structs use pointers so that "present but zero" and "absent" differ.

type wireKeypoint struct {
	X          *float64 `json:"x" validate:"required"`
	Y          *float64 `json:"y" validate:"required"`
	Z          *float64 `json:"z"`
	Visibility *float64 `json:"visibility"`
	Name       *string  `json:"name" validate:"required"`
}

type wireAnalysisResult struct {
	SessionID       *string               `json:"sessionId" validate:"required"`
	ExerciseType    *string               `json:"exerciseType" validate:"required"`
	TotalReps       *float64              `json:"totalReps" validate:"required"`
	Accuracy        *float64              `json:"accuracy" validate:"required"`
	FormFeedback    []domain.FormFeedback `json:"formFeedback" validate:"required"`
	Keypoints       []wireKeypoint        `json:"keypoints" validate:"required,dive"`
	Duration        *float64              `json:"duration" validate:"required"`
	Calories        *float64              `json:"calories" validate:"required"`
	Recommendations []string              `json:"recommendations" validate:"required"`
}

type wirePoseData struct {
	Keypoints  []wireKeypoint `json:"keypoints" validate:"required,dive"`
	Confidence *float64       `json:"confidence" validate:"required"`
	FormScore  *float64       `json:"formScore" validate:"required"`
	CurrentRep *float64       `json:"currentRep" validate:"required"`
	Stage      *string        `json:"stage" validate:"required,oneof=up down hold rest"`
	Warnings   []string       `json:"warnings" validate:"required"`
}

type wireExerciseConfig struct {
	ExerciseType    *string               `json:"exerciseType" validate:"required"`
	TargetKeypoints []string              `json:"targetKeypoints" validate:"required"`
	Thresholds      *domain.Thresholds    `json:"thresholds" validate:"required"`
	Feedback        *domain.FeedbackFlags `json:"feedback" validate:"required"`
	Parameters      *domain.Parameters    `json:"parameters"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Difficulty      string                `json:"difficulty"`
	DefaultReps     float64               `json:"defaultReps"`
	DefaultSets     float64               `json:"defaultSets"`
	Instructions    []string              `json:"instructions"`
	FormChecks      []string              `json:"formChecks"`
}

type wireSessionSummary struct {
	SessionID *string        `json:"sessionId" validate:"required"`
	Summary   map[string]any `json:"summary" validate:"required"`
}

func toKeypoints(in []wireKeypoint) []domain.PoseKeypoint {
	out := make([]domain.PoseKeypoint, len(in))
	for i, k := range in {
		out[i] = domain.PoseKeypoint{
			X:          *k.X,
			Y:          *k.Y,
			Z:          k.Z,
			Visibility: k.Visibility,
			Name:       *k.Name,
		}
	}
	return out
}
