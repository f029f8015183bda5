package domain

import "time"

// SessionSummaryRequest is the body of a session summary submission.
type SessionSummaryRequest struct {
	ExerciseType    string    `json:"exerciseType"`
	Duration        float64   `json:"duration"`
	TotalReps       int       `json:"totalReps"`
	AverageAccuracy float64   `json:"averageAccuracy"`
	UserID          string    `json:"userId"`
	Timestamp       time.Time `json:"timestamp"`
}

// SessionSummary is the backend's answer to a summary submission.
type SessionSummary struct {
	SessionID string         `json:"sessionId"`
	Summary   map[string]any `json:"summary"`
}

// VideoUpload is the deferred form of an upload call.
type VideoUpload struct {
	Path         string `json:"path"`
	ExerciseType string `json:"exerciseType"`
}

// FrameRequest is the deferred form of a frame analysis call.
type FrameRequest struct {
	FrameData    string `json:"frameData"`
	ExerciseType string `json:"exerciseType"`
}

// UploadProgress reports bytes streamed so far for a video upload.
type UploadProgress struct {
	Sent  int64
	Total int64
}

// Fraction returns progress in [0,1]; zero when the total is unknown.
func (p UploadProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Sent) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}
