package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/vietddude/fitlink/internal/core/domain"
)

// Shape names an expected payload type.
type Shape string

const (
	ShapeAnalysisResult Shape = "analysis result"
	ShapePoseData       Shape = "pose data"
	ShapeExerciseConfig Shape = "exercise config"
	ShapeSessionSummary Shape = "session summary"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator, reporting JSON field names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
				return jsonName(f)
		})
	})
	return validate
}

// Validate checks raw against shape and returns the typed value
// (*domain.AnalysisResult, *domain.PoseData, *domain.ExerciseConfig or *domain.SessionSummary).
func Validate(raw []byte, shape Shape) (any, error) {
	switch shape {
	case ShapeAnalysisResult:
		return AnalysisResult(raw)
	case ShapePoseData:
		return PoseData(raw)
	case ShapeExerciseConfig:
		return ExerciseConfig(raw)
	case ShapeSessionSummary:
		return SessionSummary(raw)
	default:
		return nil, fmt.Errorf("validate: unknown shape %q", shape)
	}
}

// AnalysisResult validates a video analysis payload.
func AnalysisResult(raw []byte) (*domain.AnalysisResult, error) {
	var w wireAnalysisResult
	if err := decode(raw, ShapeAnalysisResult, &w); err != nil {
		return nil, err
	}
	return &domain.AnalysisResult{
		SessionID:       *w.SessionID,
		ExerciseType:    *w.ExerciseType,
		TotalReps:       int(*w.TotalReps),
		Accuracy:        *w.Accuracy,
		FormFeedback:    w.FormFeedback,
		Keypoints:       toKeypoints(w.Keypoints),
		Duration:        *w.Duration,
		Calories:        *w.Calories,
		Recommendations: w.Recommendations,
	}, nil
}

// PoseData validates a single-frame analysis payload.
func PoseData(raw []byte) (*domain.PoseData, error) {
	var w wirePoseData
	if err := decode(raw, ShapePoseData, &w); err != nil {
		return nil, err
	}
	return &domain.PoseData{
		Keypoints:  toKeypoints(w.Keypoints),
		Confidence: *w.Confidence,
		FormScore:  *w.FormScore,
		CurrentRep: int(*w.CurrentRep),
		Stage:      domain.Stage(*w.Stage),
		Warnings:   w.Warnings,
		Source:     domain.SourceBackend,
	}, nil
}

// ExerciseConfig validates an exercise configuration payload.
func ExerciseConfig(raw []byte) (*domain.ExerciseConfig, error) {
	var w wireExerciseConfig
	if err := decode(raw, ShapeExerciseConfig, &w); err != nil {
		return nil, err
	}

	cfg := &domain.ExerciseConfig{
		ExerciseType:    *w.ExerciseType,
		Name:            w.Name,
		Description:     w.Description,
		TargetKeypoints: w.TargetKeypoints,
		Difficulty:      w.Difficulty,
		DefaultReps:     int(w.DefaultReps),
		DefaultSets:     int(w.DefaultSets),
		Instructions:    w.Instructions,
		FormChecks:      w.FormChecks,
		Thresholds:      *w.Thresholds,
		Feedback:        *w.Feedback,
		Source:          domain.SourceBackend,
	}
	if w.Parameters != nil {
		cfg.Parameters = *w.Parameters
	}
	return cfg, nil
}

// SessionSummary validates the session-summary acknowledgement.
func SessionSummary(raw []byte) (*domain.SessionSummary, error) {
	var w wireSessionSummary
	if err := decode(raw, ShapeSessionSummary, &w); err != nil {
		return nil, err
	}
	return &domain.SessionSummary{SessionID: *w.SessionID, Summary: w.Summary}, nil
}

// decode unwraps raw, conforms it to dst's layout (key spelling and JSON types),
// decodes it into dst and then applies the struct rules.
func decode(raw []byte, shape Shape, dst any) error {
	payload, err := Unwrap(raw)
	if err != nil {
		return err
	}

	var tree any
	if err := json.Unmarshal(payload, &tree); err != nil {
		return &domain.ShapeError{Shape: string(shape), Field: "payload", Reason: "is not valid JSON"}
	}
	if _, ok := tree.(map[string]any); !ok {
		return &domain.ShapeError{Shape: string(shape), Field: "payload", Reason: "must be an object"}
	}

	conformed, field, ok := conform(tree, reflect.TypeOf(dst), "")
	if !ok {
		return &domain.ShapeError{Shape: string(shape), Field: field, Reason: "has the wrong type"}
	}

	normalized, err := json.Marshal(conformed)
	if err != nil {
		return fmt.Errorf("re-encode %s: %w", shape, err)
	}

	if err := json.Unmarshal(normalized, dst); err != nil {
		return typeError(shape, err)
	}

	if err := getValidator().Struct(dst); err != nil {
		return fieldError(shape, err)
	}
	return nil
}

func typeError(shape Shape, err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		field := te.Field
		if field == "" {
			field = "payload"
		}
		return &domain.ShapeError{Shape: string(shape), Field: field, Reason: "has the wrong type"}
	}
	return &domain.ShapeError{Shape: string(shape), Field: "payload", Reason: err.Error()}
}

func fieldError(shape Shape, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ShapeError{Shape: string(shape), Field: "payload", Reason: err.Error()}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "oneof":
		reason = "must be one of: " + fe.Param()
	default:
		reason = "failed " + fe.Tag()
	}
	return &domain.ShapeError{Shape: string(shape), Field: field, Reason: reason}
}
