package pipeline

import (
	"context"
	"sync"
	"time"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type TopicSource interface {
	Next() (types.Topic, error)
}

type ScriptWriter interface {
	Generate(ctx context.Context, topic types.Topic) (types.Script, error)
}

type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, script types.Script) (types.AudioAsset, error)
}

type VideoRenderer interface {
	Render(ctx context.Context, script types.Script, audio types.AudioAsset) (types.RenderedVideo, error)
}

type MetadataBuilder interface {
	Build(topic types.Topic) types.VideoMetadata
}

type Publisher interface {
	Publish(ctx context.Context, video types.RenderedVideo, md types.VideoMetadata) (types.UploadResult, error)
}

// Stages are the components one run walks through, in order
type Stages struct {
	Topics   TopicSource
	Script   ScriptWriter
	Voice    VoiceSynthesizer
	Render   VideoRenderer
	Metadata MetadataBuilder
	Publish  Publisher
}

// Orchestrator drives one topic at a time from selection to upload
type Orchestrator struct {
	cfg    *config.Config
	stages Stages

	mu    sync.Mutex
	state types.State

	newRunID func() string
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates an Orchestrator in the Idle state
func New(cfg *config.Config, stages Stages) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		stages:   stages,
		state:    types.StateIdle,
		newRunID: func() string { return uuid.NewString()[:8] },
		now:      time.Now,
		logger:   log.With().Str("stage", "pipeline").Logger(),
	}
}

// State reports where the orchestrator currently is
func (o *Orchestrator) State() types.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s types.State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run performs one full pipeline run. It never returns an error and never
// panics: failures of any kind end up in the result. Audio and video files
// created by the run are removed before Run returns, and the orchestrator is
// back in the Idle state.
func (o *Orchestrator) Run(ctx context.Context) (res types.RunResult) {
	res = types.RunResult{
		RunID:     o.newRunID(),
		State:     types.StateIdle,
		StartedAt: o.now(),
	}
	logger := o.logger.With().Str("run_id", res.RunID).Logger()
	assets := newRunAssets(res.RunID, logger)

	defer func() {
		if p := recover(); p != nil {
			o.fail(&res, types.Errorf(types.KindInternal, "pipeline", "panic: %v", p))
		}
		assets.Release()
		res.FinishedAt = o.now()
		o.report(logger, res)
		o.setState(types.StateIdle)
	}()

	logger.Info().Msg("run started")

	topic, err := o.stages.Topics.Next()
	if err != nil {
		o.fail(&res, err)
		return res
	}
	res.Topic = topic
	o.advance(&res, types.StateTopicSelected)

	var script types.Script
	err = o.step(ctx, func(ctx context.Context) (err error) {
		script, err = o.stages.Script.Generate(ctx, topic)
		return err
	})
	if err != nil {
		o.fail(&res, err)
		return res
	}
	o.advance(&res, types.StateScripted)

	var audio types.AudioAsset
	err = o.step(ctx, func(ctx context.Context) (err error) {
		audio, err = o.stages.Voice.Synthesize(ctx, script)
		return err
	})
	assets.Track(audio.Path)
	if err != nil {
		o.fail(&res, err)
		return res
	}
	o.advance(&res, types.StateVoiced)

	var video types.RenderedVideo
	err = o.step(ctx, func(ctx context.Context) (err error) {
		video, err = o.stages.Render.Render(ctx, script, audio)
		return err
	})
	assets.Track(video.Path)
	if err != nil {
		o.fail(&res, err)
		return res
	}
	o.advance(&res, types.StateRendered)

	md := o.stages.Metadata.Build(topic)
	var upload types.UploadResult
	err = o.step(ctx, func(ctx context.Context) (err error) {
		upload, err = o.stages.Publish.Publish(ctx, video, md)
		return err
	})
	if err != nil {
		o.fail(&res, err)
		return res
	}
	res.Upload = &upload
	o.advance(&res, types.StatePublished)
	return res
}

// step runs one stage under the per-stage timeout
func (o *Orchestrator) step(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return types.NewError(types.KindInternal, "pipeline", err)
	}
	if o.cfg.Pipeline.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Pipeline.StageTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func (o *Orchestrator) advance(res *types.RunResult, s types.State) {
	o.setState(s)
	res.State = s
}

func (o *Orchestrator) fail(res *types.RunResult, err error) {
	res.FailedAt = o.State()
	res.State = types.StateFailed
	res.Kind = types.KindOf(err)
	res.Err = err
	o.setState(types.StateFailed)
}

func (o *Orchestrator) report(logger zerolog.Logger, res types.RunResult) {
	elapsed := res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)
	if res.OK() {
		logger.Info().
			Str("topic", string(res.Topic)).
			Str("video_id", res.Upload.VideoID).
			Str("url", res.Upload.URL).
			Dur("elapsed", elapsed).
			Msgf("✅ Uploaded: %s", res.Topic)
		return
	}
	logger.Error().
		Err(res.Err).
		Str("topic", string(res.Topic)).
		Str("failed_at", string(res.FailedAt)).
		Str("kind", string(res.Kind)).
		Dur("elapsed", elapsed).
		Msg("❌ Pipeline failed")
}
