package fallback

import (
	"strings"

	"github.com/vietddude/fitlink/internal/core/domain"
)

type landmark struct {
	name string
	x, y float64
}

// landmarks is the 33-point pose model in a neutral standing position,
// normalized to the frame (0,0 top left).
var landmarks = [33]landmark{
	{"nose", 0.50, 0.15},
	{"left_eye_inner", 0.51, 0.13},
	{"left_eye", 0.52, 0.13},
	{"left_eye_outer", 0.53, 0.13},
	{"right_eye_inner", 0.49, 0.13},
	{"right_eye", 0.48, 0.13},
	{"right_eye_outer", 0.47, 0.13},
	{"left_ear", 0.54, 0.14},
	{"right_ear", 0.46, 0.14},
	{"mouth_left", 0.51, 0.17},
	{"mouth_right", 0.49, 0.17},
	{"left_shoulder", 0.58, 0.25},
	{"right_shoulder", 0.42, 0.25},
	{"left_elbow", 0.61, 0.37},
	{"right_elbow", 0.39, 0.37},
	{"left_wrist", 0.62, 0.48},
	{"right_wrist", 0.38, 0.48},
	{"left_pinky", 0.63, 0.51},
	{"right_pinky", 0.37, 0.51},
	{"left_index", 0.62, 0.52},
	{"right_index", 0.38, 0.52},
	{"left_thumb", 0.61, 0.50},
	{"right_thumb", 0.39, 0.50},
	{"left_hip", 0.55, 0.52},
	{"right_hip", 0.45, 0.52},
	{"left_knee", 0.56, 0.70},
	{"right_knee", 0.44, 0.70},
	{"left_ankle", 0.56, 0.88},
	{"right_ankle", 0.44, 0.88},
	{"left_heel", 0.55, 0.90},
	{"right_heel", 0.45, 0.90},
	{"left_foot_index", 0.58, 0.92},
	{"right_foot_index", 0.42, 0.92},
}

// movement displaces a landmark for a given movement depth in [0,1].
type movement func(name string, depth float64) (dx, dy float64)

func movementFor(t domain.ExerciseType) movement {
	switch t {
	case domain.ExercisePushUp:
		return pushUpMovement
	case domain.ExerciseHammerCurl:
		return curlMovement
	case domain.ExerciseChairYoga:
		return armRaiseMovement
	case domain.ExerciseBreathing:
		return breathingMovement
	default:
		return squatMovement
	}
}

func side(name string) float64 {
	if strings.HasPrefix(name, "left_") {
		return 1
	}
	if strings.HasPrefix(name, "right_") {
		return -1
	}
	return 0
}

func isUpperBody(name string) bool {
	for _, part := range []string{"eye", "ear", "nose", "mouth", "shoulder", "elbow", "wrist", "pinky", "index", "thumb"} {
		if strings.Contains(name, part) && !strings.Contains(name, "foot") {
			return true
		}
	}
	return false
}

func isHand(name string) bool {
	for _, part := range []string{"wrist", "pinky", "index", "thumb"} {
		if strings.Contains(name, part) && !strings.Contains(name, "foot") {
			return true
		}
	}
	return false
}

func squatMovement(name string, depth float64) (float64, float64) {
	switch {
	case isUpperBody(name):
		return 0, 0.18 * depth
	case strings.Contains(name, "hip"):
		return 0, 0.16 * depth
	case strings.Contains(name, "knee"):
		return side(name) * 0.03 * depth, 0.04 * depth
	}
	return 0, 0
}

func pushUpMovement(name string, depth float64) (float64, float64) {
	switch {
	case isHand(name):
		return 0, 0
	case strings.Contains(name, "elbow"):
		return side(name) * 0.05 * depth, 0.03 * depth
	case isUpperBody(name):
		return 0, 0.12 * depth
	case strings.Contains(name, "hip"):
		return 0, 0.08 * depth
	}
	return 0, 0
}

func curlMovement(name string, depth float64) (float64, float64) {
	if isHand(name) {
		return -side(name) * 0.02 * depth, -0.18 * depth
	}
	return 0, 0
}

func armRaiseMovement(name string, depth float64) (float64, float64) {
	switch {
	case isHand(name):
		return side(name) * 0.04 * depth, -0.38 * depth
	case strings.Contains(name, "elbow"):
		return side(name) * 0.02 * depth, -0.2 * depth
	}
	return 0, 0
}

func breathingMovement(name string, depth float64) (float64, float64) {
	if strings.Contains(name, "shoulder") {
		return 0, -0.015 * depth
	}
	return 0, 0
}
