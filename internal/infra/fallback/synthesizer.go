// Package fallback synthesizes placeholder results when the backend cannot answer.
//
// Output depends only on the exercise type and the instant passed in, so two
// calls with the same arguments return identical values.
package fallback

import (
	"math"
	"time"

	"github.com/vietddude/fitlink/internal/core/domain"
)

const (
	// CyclePeriod is the length of one synthetic repetition.
	CyclePeriod = 8 * time.Second

	phaseLength = CyclePeriod / 4
	jitterAmp   = 0.004
)

// Stages in cycle order.
var cycleStages = [4]domain.Stage{domain.StageRest, domain.StageDown, domain.StageHold, domain.StageUp}

// Synthesizer produces synthetic pose data and exercise configs.
type Synthesizer struct {
	epoch time.Time
}

// New creates a synthesizer whose rep counter starts at epoch.
func New(epoch time.Time) *Synthesizer {
	return &Synthesizer{epoch: epoch}
}

// Epoch returns the instant rep counting starts from.
func (s *Synthesizer) Epoch() time.Time {
	return s.epoch
}

// ExerciseConfig returns the built-in config for t. Unknown types get the generic entry.
func (s *Synthesizer) ExerciseConfig(t domain.ExerciseType) *domain.ExerciseConfig {
	if int(t) >= domain.NumExerciseTypes {
		t = domain.ExerciseUnknown
	}
	cfg := configTable[t]()
	cfg.Source = domain.SourceSynthetic
	return &cfg
}

// PoseData returns the synthetic frame analysis for t at now.
func (s *Synthesizer) PoseData(t domain.ExerciseType, now time.Time) *domain.PoseData {
	elapsed := now.Sub(s.epoch)
	if elapsed < 0 {
		elapsed = 0
	}

	rep := int(elapsed / CyclePeriod)
	pos := elapsed % CyclePeriod
	phase := int(pos / phaseLength)
	progress := float64(pos%phaseLength) / float64(phaseLength)
	stage := cycleStages[phase]

	depth := 0.0
	switch stage {
	case domain.StageDown:
		depth = progress
	case domain.StageHold:
		depth = 1
	case domain.StageUp:
		depth = 1 - progress
	}

	// Phase angle within the cycle drives all jitter; it repeats every period.
	theta := 2 * math.Pi * float64(pos) / float64(CyclePeriod)

	move := movementFor(t)
	keypoints := make([]domain.PoseKeypoint, len(landmarks))
	for i, lm := range landmarks {
		dx, dy := move(lm.name, depth)
		fi := float64(i + 1)
		x := lm.x + dx + jitterAmp*math.Sin(theta*3+fi)
		y := lm.y + dy + jitterAmp*math.Cos(theta*5+fi*0.7)
		z := round3(-0.1 + 0.02*math.Sin(theta+fi*0.3))
		vis := round3(0.93 + 0.05*math.Sin(theta*2+fi))

		keypoints[i] = domain.PoseKeypoint{
			X:          round3(x),
			Y:          round3(y),
			Z:          &z,
			Visibility: &vis,
			Name:       lm.name,
		}
	}

	return &domain.PoseData{
		Keypoints:  keypoints,
		Confidence: round3(0.85 + 0.05*math.Sin(theta)),
		FormScore:  round3(stageScore[phase] + 3*math.Sin(theta*2)),
		CurrentRep: rep,
		Stage:      stage,
		Warnings:   warningsFor(t, stage),
		Source:     domain.SourceSynthetic,
	}
}

var stageScore = [4]float64{92, 84, 80, 88}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func warningsFor(t domain.ExerciseType, stage domain.Stage) []string {
	switch stage {
	case domain.StageDown:
		switch t {
		case domain.ExerciseSquat:
			return []string{"Keep your chest up", "Don't let knees cave inward"}
		case domain.ExercisePushUp:
			return []string{"Keep your body in a straight line"}
		case domain.ExerciseHammerCurl:
			return []string{"Keep elbows close to your sides"}
		case domain.ExerciseBreathing:
			return []string{"Breathe in slowly through your nose"}
		default:
			return []string{"Control the movement"}
		}
	case domain.StageHold:
		if t == domain.ExerciseBreathing {
			return []string{"Hold gently, keep shoulders relaxed"}
		}
		return []string{"Hold steady"}
	case domain.StageUp:
		if t == domain.ExerciseSquat {
			return []string{"Push through your heels"}
		}
		return []string{"Return with control"}
	default:
		return []string{}
	}
}
