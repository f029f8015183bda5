package client

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/infra/backend/retry"
	"github.com/vietddude/fitlink/internal/infra/backend/transport"
	"github.com/vietddude/fitlink/internal/infra/validate"
)

const (
	opUploadVideo    = "upload_video"
	opAnalyzeFrame   = "analyze_frame"
	opExerciseConfig = "exercise_config"
	opSessionSummary = "session_summary"
)

// frameBody is the analyze-frame request body.
type frameBody struct {
	FrameData    string `json:"frame_data"`
	ExerciseType string `json:"exercise_type"`
}

// UploadVideo uploads a recorded session for full analysis. While offline the
// upload is deferred and a *domain.DeferredError carrying the queue id is returned.
func (c *Client) UploadVideo(
	ctx context.Context,
	path string,
	exerciseType string,
	onProgress func(domain.UploadProgress),
) (*domain.AnalysisResult, error) {
	if _, err := os.Stat(path); err != nil {
		c.record(opUploadVideo, domain.StateFailed, err)
		return nil, fmt.Errorf("upload video: %w", err)
	}

	payload := domain.VideoUpload{Path: path, ExerciseType: exerciseType}
	if !c.online() {
		return nil, c.deferRequest(opUploadVideo, domain.KindVideo, payload)
	}

	res, err := c.uploadVideo(ctx, payload, onProgress)
	if err != nil {
		c.record(opUploadVideo, domain.StateFailed, err)
		return nil, err
	}
	c.record(opUploadVideo, domain.StateSucceeded, nil)
	return res, nil
}

func (c *Client) uploadVideo(
	ctx context.Context,
	p domain.VideoUpload,
	onProgress func(domain.UploadProgress),
) (*domain.AnalysisResult, error) {
	op := transport.UploadOperation{
		Name:      opUploadVideo,
		Path:      "/api/analyze-video",
		FileField: "video",
		FilePath:  p.Path,
		Fields: map[string]string{
			"exerciseType": p.ExerciseType,
			"timestamp":    c.clock.Now().UTC().Format(time.RFC3339),
		},
	}

	var body []byte
	err := c.retry.Execute(ctx, opUploadVideo, func(ctx context.Context) error {
		var err error
		body, err = c.backend.Upload(ctx, op, onProgress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return validate.AnalysisResult(body)
}

// AnalyzeFrame analyzes one camera frame. Offline it fails fast with
// domain.ErrNetworkUnavailable; frames are never queued. Online it retries at
// most once and, when fallback is enabled, answers failures with synthetic pose data.
func (c *Client) AnalyzeFrame(ctx context.Context, frameData, exerciseType string) (*domain.PoseData, error) {
	if !c.online() {
		c.record(opAnalyzeFrame, domain.StateFailed, domain.ErrNetworkUnavailable)
		return nil, domain.ErrNetworkUnavailable
	}

	pose, err := c.analyzeFrame(ctx, frameData, exerciseType)
	if err == nil {
		c.record(opAnalyzeFrame, domain.StateSucceeded, nil)
		return pose, nil
	}

	if c.cfg.FrameFallback && canDegrade(ctx, err) {
		c.record(opAnalyzeFrame, domain.StateDegraded, err)
		et, _ := domain.ParseExerciseType(exerciseType)
		return c.synth.PoseData(et, c.clock.Now()), nil
	}

	c.record(opAnalyzeFrame, domain.StateFailed, err)
	return nil, err
}

func (c *Client) analyzeFrame(ctx context.Context, frameData, exerciseType string) (*domain.PoseData, error) {
	op := transport.NewJSONOperation(opAnalyzeFrame, "/api/analyze-frame", frameBody{
		FrameData:    frameData,
		ExerciseType: exerciseType,
	})

	var body []byte
	err := c.retry.Execute(ctx, opAnalyzeFrame, func(ctx context.Context) error {
		var err error
		body, err = c.backend.Do(ctx, op)
		return err
	}, retry.MaxRetries(1))
	if err != nil {
		return nil, err
	}
	return validate.PoseData(body)
}

// GetExerciseConfig returns the config for exerciseType, from cache when fresh.
// On a miss while offline the fetch is deferred. Online misses are coalesced per
// type, fetched with the full retry policy and, when fallback is enabled,
// answered from the built-in table on failure. Whatever is returned is cached.
func (c *Client) GetExerciseConfig(ctx context.Context, exerciseType string) (*domain.ExerciseConfig, error) {
	if cfg, ok := c.configs.Get(exerciseType); ok {
		c.record(opExerciseConfig, domain.StateSucceeded, nil)
		return &cfg, nil
	}

	if !c.online() {
		return nil, c.deferRequest(opExerciseConfig, domain.KindConfig, exerciseType)
	}

	cfg, state, err := c.loadConfig(ctx, exerciseType)
	c.record(opExerciseConfig, state, err)
	return cfg, err
}

type configResult struct {
	cfg   *domain.ExerciseConfig
	state domain.OperationState
}

// loadConfig fetches (or synthesizes) and caches a config, sharing the work
// between concurrent callers asking for the same type.
func (c *Client) loadConfig(ctx context.Context, exerciseType string) (*domain.ExerciseConfig, domain.OperationState, error) {
	v, err, _ := c.group.Do(exerciseType, func() (any, error) {
		if cfg, ok := c.configs.Get(exerciseType); ok {
			return configResult{cfg: &cfg, state: domain.StateSucceeded}, nil
		}

		state := domain.StateSucceeded
		cfg, err := c.fetchConfig(ctx, exerciseType)
		if err != nil {
			if !c.cfg.ConfigFallback || !canDegrade(ctx, err) {
				return nil, err
			}
			c.log.Debug("Config fetch failed, using built-in table", "exercise", exerciseType, "error", err)
			et, _ := domain.ParseExerciseType(exerciseType)
			cfg = c.synth.ExerciseConfig(et)
			cfg.ExerciseType = exerciseType
			state = domain.StateDegraded
		}

		c.configs.Set(exerciseType, *cfg, c.cfg.ConfigTTL)
		return configResult{cfg: cfg, state: state}, nil
	})
	if err != nil {
		return nil, domain.StateFailed, err
	}

	res := v.(configResult)
	out := *res.cfg
	return &out, res.state, nil
}

func (c *Client) fetchConfig(ctx context.Context, exerciseType string) (*domain.ExerciseConfig, error) {
	op := transport.NewGetOperation(opExerciseConfig, "/api/exercise-config/"+url.PathEscape(exerciseType))

	var body []byte
	err := c.retry.Execute(ctx, opExerciseConfig, func(ctx context.Context) error {
		var err error
		body, err = c.backend.Do(ctx, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return validate.ExerciseConfig(body)
}

// SubmitSessionSummary records a finished session. Offline it is deferred;
// failures online are returned as is.
func (c *Client) SubmitSessionSummary(ctx context.Context, req domain.SessionSummaryRequest) (*domain.SessionSummary, error) {
	if req.Timestamp.IsZero() {
		req.Timestamp = c.clock.Now().UTC()
	}

	if !c.online() {
		return nil, c.deferRequest(opSessionSummary, domain.KindSummary, req)
	}

	res, err := c.submitSummary(ctx, req)
	if err != nil {
		c.record(opSessionSummary, domain.StateFailed, err)
		return nil, err
	}
	c.record(opSessionSummary, domain.StateSucceeded, nil)
	return res, nil
}

func (c *Client) submitSummary(ctx context.Context, req domain.SessionSummaryRequest) (*domain.SessionSummary, error) {
	op := transport.NewJSONOperation(opSessionSummary, "/api/session-summary", req)

	var body []byte
	err := c.retry.Execute(ctx, opSessionSummary, func(ctx context.Context) error {
		var err error
		body, err = c.backend.Do(ctx, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return validate.SessionSummary(body)
}
