package domain

// ExerciseType is the closed set of exercises the client ships built-in tables for.
// Requests still carry the wire name, so backends may support types outside this set.
type ExerciseType uint8

const (
	ExerciseUnknown ExerciseType = iota
	ExerciseSquat
	ExercisePushUp
	ExerciseHammerCurl
	ExerciseChairYoga
	ExerciseBreathing

	exerciseTypeCount
)

// NumExerciseTypes sizes lookup tables indexed by ExerciseType.
const NumExerciseTypes = int(exerciseTypeCount)

var exerciseNames = [exerciseTypeCount]string{
	ExerciseUnknown:    "generic",
	ExerciseSquat:      "squat",
	ExercisePushUp:     "push_up",
	ExerciseHammerCurl: "hammer_curl",
	ExerciseChairYoga:  "chair_yoga",
	ExerciseBreathing:  "breathing_exercise",
}

// String returns the wire name of the exercise type.
func (e ExerciseType) String() string {
	if e >= exerciseTypeCount {
		return exerciseNames[ExerciseUnknown]
	}
	return exerciseNames[e]
}

// ParseExerciseType maps a wire name to the enum. Unknown names return ExerciseUnknown, false.
func ParseExerciseType(name string) (ExerciseType, bool) {
	for i := ExerciseSquat; i < exerciseTypeCount; i++ {
		if exerciseNames[i] == name {
			return i, true
		}
	}
	return ExerciseUnknown, false
}

// KnownExerciseTypes lists every supported exercise, in declaration order.
func KnownExerciseTypes() []ExerciseType {
	out := make([]ExerciseType, 0, exerciseTypeCount-1)
	for i := ExerciseSquat; i < exerciseTypeCount; i++ {
		out = append(out, i)
	}
	return out
}

// Thresholds bound the joint angles used for rep detection.
type Thresholds struct {
	MinAngle float64 `json:"minAngle"`
	MaxAngle float64 `json:"maxAngle"`
	HoldTime float64 `json:"holdTime"`
}

// Parameters tune the on-device tracker.
type Parameters struct {
	Sensitivity         float64 `json:"sensitivity"`
	Smoothing           float64 `json:"smoothing"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
}

// FeedbackFlags toggles feedback channels.
type FeedbackFlags struct {
	RealTimeEnabled bool `json:"realTimeEnabled"`
	AudioEnabled    bool `json:"audioEnabled"`
	VisualEnabled   bool `json:"visualEnabled"`
}

// ExerciseConfig holds the parameters for one exercise type.
type ExerciseConfig struct {
	ExerciseType    string        `json:"exerciseType"`
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description,omitempty"`
	TargetKeypoints []string      `json:"targetKeypoints"`
	Difficulty      string        `json:"difficulty,omitempty"`
	DefaultReps     int           `json:"defaultReps,omitempty"`
	DefaultSets     int           `json:"defaultSets,omitempty"`
	Instructions    []string      `json:"instructions,omitempty"`
	FormChecks      []string      `json:"formChecks,omitempty"`
	Thresholds      Thresholds    `json:"thresholds"`
	Parameters      Parameters    `json:"parameters"`
	Feedback        FeedbackFlags `json:"feedback"`

	Source Source `json:"-"`
}
