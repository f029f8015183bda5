package fallback

import "github.com/vietddude/fitlink/internal/core/domain"

var defaultParameters = domain.Parameters{
	Sensitivity:         0.8,
	Smoothing:           0.3,
	ConfidenceThreshold: 0.5,
}

// configTable holds one builder per ExerciseType; builders return fresh slices
// so callers may modify what they receive.
var configTable = [domain.NumExerciseTypes]func() domain.ExerciseConfig{
	domain.ExerciseUnknown: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExerciseUnknown.String(),
			Name:            "General Exercise",
			Description:     "General movement tracking",
			TargetKeypoints: []string{"left_shoulder", "right_shoulder", "left_hip", "right_hip", "left_knee", "right_knee"},
			Difficulty:      "beginner",
			DefaultReps:     10,
			DefaultSets:     3,
			Instructions:    []string{"Follow your trainer's guidance", "Move slowly and with control"},
			FormChecks:      []string{"Maintain good posture", "Breathe steadily"},
			Thresholds:      domain.Thresholds{MinAngle: 0, MaxAngle: 180, HoldTime: 1.0},
			Parameters:      defaultParameters,
			Feedback:        domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: true, VisualEnabled: true},
		}
	},
	domain.ExerciseSquat: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExerciseSquat.String(),
			Name:            "Squat",
			Description:     "A fundamental lower body exercise that targets quadriceps, hamstrings, and glutes",
			TargetKeypoints: []string{"left_hip", "right_hip", "left_knee", "right_knee", "left_ankle", "right_ankle"},
			Difficulty:      "beginner",
			DefaultReps:     15,
			DefaultSets:     3,
			Instructions: []string{
				"Stand with feet shoulder-width apart",
				"Lower your body by bending knees and hips",
				"Keep your chest up and back straight",
				"Lower until thighs are parallel to ground",
				"Push through heels to return to starting position",
			},
			FormChecks: []string{
				"Keep knees aligned with toes",
				"Don't let knees cave inward",
				"Maintain neutral spine",
				"Control the descent",
			},
			Thresholds: domain.Thresholds{MinAngle: 90, MaxAngle: 170, HoldTime: 1.0},
			Parameters: defaultParameters,
			Feedback:   domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: true, VisualEnabled: true},
		}
	},
	domain.ExercisePushUp: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExercisePushUp.String(),
			Name:            "Push Up",
			Description:     "Upper body exercise targeting chest, shoulders, and triceps",
			TargetKeypoints: []string{"left_shoulder", "right_shoulder", "left_elbow", "right_elbow", "left_wrist", "right_wrist"},
			Difficulty:      "beginner",
			DefaultReps:     10,
			DefaultSets:     3,
			Instructions: []string{
				"Start in plank position with hands shoulder-width apart",
				"Lower body until chest nearly touches ground",
				"Keep body in straight line from head to heels",
				"Push back up to starting position",
			},
			FormChecks: []string{
				"Keep core engaged",
				"Don't let hips sag",
				"Full range of motion",
				"Control both up and down phases",
			},
			Thresholds: domain.Thresholds{MinAngle: 45, MaxAngle: 160, HoldTime: 0.5},
			Parameters: domain.Parameters{Sensitivity: 0.7, Smoothing: 0.4, ConfidenceThreshold: 0.6},
			Feedback:   domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: true, VisualEnabled: true},
		}
	},
	domain.ExerciseHammerCurl: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExerciseHammerCurl.String(),
			Name:            "Hammer Curl",
			Description:     "Bicep exercise using neutral grip to target biceps and forearms",
			TargetKeypoints: []string{"left_shoulder", "right_shoulder", "left_elbow", "right_elbow", "left_wrist", "right_wrist"},
			Difficulty:      "beginner",
			DefaultReps:     12,
			DefaultSets:     3,
			Instructions: []string{
				"Hold dumbbells with neutral grip (palms facing each other)",
				"Keep elbows close to your sides",
				"Curl weights up by flexing biceps",
				"Lower with control to starting position",
			},
			FormChecks: []string{
				"Don't swing the weights",
				"Keep elbows stationary",
				"Control the negative",
				"Full range of motion",
			},
			Thresholds: domain.Thresholds{MinAngle: 30, MaxAngle: 150, HoldTime: 0.3},
			Parameters: defaultParameters,
			Feedback:   domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: true, VisualEnabled: true},
		}
	},
	domain.ExerciseChairYoga: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExerciseChairYoga.String(),
			Name:            "Chair Yoga",
			Description:     "Gentle yoga poses performed while seated, suitable for all mobility levels",
			TargetKeypoints: []string{"left_shoulder", "right_shoulder", "left_hip", "right_hip"},
			Difficulty:      "beginner",
			DefaultReps:     8,
			DefaultSets:     2,
			Instructions: []string{
				"Sit tall in chair with feet flat on floor",
				"Perform gentle stretches and poses",
				"Focus on breathing and alignment",
				"Move slowly and mindfully",
			},
			FormChecks: []string{
				"Keep spine straight",
				"Breathe deeply",
				"Don't force movements",
				"Listen to your body",
			},
			Thresholds: domain.Thresholds{MinAngle: 0, MaxAngle: 180, HoldTime: 2.0},
			Parameters: defaultParameters,
			Feedback:   domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: false, VisualEnabled: true},
		}
	},
	domain.ExerciseBreathing: func() domain.ExerciseConfig {
		return domain.ExerciseConfig{
			ExerciseType:    domain.ExerciseBreathing.String(),
			Name:            "Breathing Exercise",
			Description:     "Mindful breathing techniques for relaxation and stress relief",
			TargetKeypoints: []string{"nose", "left_shoulder", "right_shoulder"},
			Difficulty:      "beginner",
			DefaultReps:     10,
			DefaultSets:     1,
			Instructions: []string{
				"Sit or lie in comfortable position",
				"Place one hand on chest, one on belly",
				"Breathe in slowly through nose",
				"Exhale slowly through mouth",
			},
			FormChecks: []string{
				"Focus on belly breathing",
				"Keep shoulders relaxed",
				"Count breaths if helpful",
				"Practice regularly",
			},
			Thresholds: domain.Thresholds{MinAngle: 0, MaxAngle: 180, HoldTime: 4.0},
			Parameters: defaultParameters,
			Feedback:   domain.FeedbackFlags{RealTimeEnabled: true, AudioEnabled: false, VisualEnabled: true},
		}
	},
}
