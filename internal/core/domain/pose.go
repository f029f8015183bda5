package domain

// Source tells whether a value came from the backend or was synthesized locally.
type Source uint8

const (
	SourceBackend Source = iota
	SourceSynthetic
)

func (s Source) String() string {
	if s == SourceSynthetic {
		return "synthetic"
	}
	return "backend"
}

// Stage is the movement phase of a repetition.
type Stage string

const (
	StageUp   Stage = "up"
	StageDown Stage = "down"
	StageHold Stage = "hold"
	StageRest Stage = "rest"
)

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageUp, StageDown, StageHold, StageRest:
		return true
	}
	return false
}

// PoseKeypoint is one tracked body landmark in normalized image coordinates.
type PoseKeypoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          *float64 `json:"z,omitempty"`
	Visibility *float64 `json:"visibility,omitempty"`
	Name       string   `json:"name"`
}

// PoseData is the analysis of a single frame.
type PoseData struct {
	Keypoints  []PoseKeypoint `json:"keypoints"`
	Confidence float64        `json:"confidence"`
	FormScore  float64        `json:"formScore"`
	CurrentRep int            `json:"currentRep"`
	Stage      Stage          `json:"stage"`
	Warnings   []string       `json:"warnings"`

	Source Source `json:"-"`
}

// FormFeedback is a timestamped coaching note from video analysis.
type FormFeedback struct {
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type"`
	Message   string  `json:"message"`
	BodyPart  string  `json:"bodyPart,omitempty"`
	Severity  string  `json:"severity,omitempty"`
}

// AnalysisResult is the outcome of a full video analysis.
type AnalysisResult struct {
	SessionID       string         `json:"sessionId"`
	ExerciseType    string         `json:"exerciseType"`
	TotalReps       int            `json:"totalReps"`
	Accuracy        float64        `json:"accuracy"`
	FormFeedback    []FormFeedback `json:"formFeedback"`
	Keypoints       []PoseKeypoint `json:"keypoints"`
	Duration        float64        `json:"duration"`
	Calories        float64        `json:"calories"`
	Recommendations []string       `json:"recommendations"`
}
