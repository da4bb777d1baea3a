package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	footage "shorts-factory/04_footage"
	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// TempFootageName is the fixed scratch file the downloaded clip is written to
const TempFootageName = "temp_video.mp4"

// FootageSource downloads the clip for a search query
type FootageSource interface {
	Fetch(ctx context.Context, query string) ([]byte, error)
}

// Renderer composes footage, caption and narration into the final Short
type Renderer struct {
	cfg     *config.Config
	footage FootageSource
	probe   func(path string) (float64, error)
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates a new Renderer
func New(cfg *config.Config, src FootageSource) *Renderer {
	return &Renderer{
		cfg:     cfg,
		footage: src,
		probe:   probeDuration,
		now:     time.Now,
		logger:  log.With().Str("stage", "render").Logger(),
	}
}

// Render fetches footage for the script, trims it to the clip window, burns
// the caption in and attaches the narration. Audio and video lengths are not
// reconciled; the output is cut to the clip window.
func (r *Renderer) Render(ctx context.Context, script types.Script, audio types.AudioAsset) (types.RenderedVideo, error) {
	query := footage.QueryFromScript(script)
	r.logger.Info().Str("query", query).Msg("fetching footage")

	data, err := r.footage.Fetch(ctx, query)
	if err != nil {
		return types.RenderedVideo{}, err
	}

	workDir := r.cfg.Paths.WorkDir
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return types.RenderedVideo{}, types.NewError(types.KindRender, "create work dir", err)
	}

	clip := types.FootageAsset{Path: filepath.Join(workDir, TempFootageName), Data: data}
	if err := os.WriteFile(clip.Path, clip.Data, 0644); err != nil {
		return types.RenderedVideo{}, types.NewError(types.KindRender, "write temp footage", err)
	}
	defer func() {
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("file", clip.Path).Msg("could not remove temp footage")
		}
	}()

	window := r.cfg.Render.ClipSeconds
	srcDur, err := r.probe(clip.Path)
	if err != nil {
		return types.RenderedVideo{}, types.NewError(types.KindRender, "probe footage", err)
	}
	if srcDur < window {
		return types.RenderedVideo{}, types.Errorf(types.KindClipTooShort, "trim footage",
			"clip is %.2fs, need at least %.0fs", srcDur, window)
	}

	captionFile, err := writeCaptionFile(workDir, script.Text, r.cfg.Render.MaxCharsPerLine)
	if err != nil {
		return types.RenderedVideo{}, types.NewError(types.KindRender, "write caption", err)
	}
	defer os.Remove(captionFile)

	outFile := filepath.Join(workDir, fmt.Sprintf("short_%d.mp4", r.now().Unix()))
	r.logger.Info().
		Float64("source_seconds", srcDur).
		Float64("window_seconds", window).
		Str("output", outFile).
		Msg("encoding short")

	if err := r.encode(ctx, clip.Path, audio.Path, captionFile, outFile); err != nil {
		os.Remove(outFile)
		return types.RenderedVideo{}, types.NewError(types.KindRender, "encode short", err)
	}

	outDur := window
	if d, err := r.probe(outFile); err == nil {
		outDur = d
	} else {
		r.logger.Debug().Err(err).Msg("could not probe output; assuming clip window")
	}

	r.logger.Info().Str("file", outFile).Float64("seconds", outDur).Msg("short rendered")
	return types.RenderedVideo{
		Path:     outFile,
		Duration: time.Duration(outDur * float64(time.Second)),
	}, nil
}

// buildStream describes the single ffmpeg invocation: trimmed and cropped
// footage with the caption drawn over it, muxed with the narration
func (r *Renderer) buildStream(footagePath, audioPath, captionFile, outFile string) *ffmpeg.Stream {
	rc := r.cfg.Render
	window := strconv.FormatFloat(rc.ClipSeconds, 'f', -1, 64)

	video := ffmpeg.Input(footagePath, ffmpeg.KwArgs{"t": window}).Video().
		Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w":                           rc.Width,
			"h":                           rc.Height,
			"force_original_aspect_ratio": "increase",
		}).
		Filter("crop", ffmpeg.Args{strconv.Itoa(rc.Width), strconv.Itoa(rc.Height)}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("drawtext", ffmpeg.Args{}, captionKwArgs(rc, captionFile))

	narration := ffmpeg.Input(audioPath).Audio()

	return ffmpeg.Output([]*ffmpeg.Stream{video, narration}, outFile, ffmpeg.KwArgs{
		"t":        window,
		"r":        rc.FPS,
		"c:v":      rc.VideoCodec,
		"c:a":      rc.AudioCodec,
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	}).OverWriteOutput()
}

func (r *Renderer) encode(ctx context.Context, footagePath, audioPath, captionFile, outFile string) error {
	stream := r.buildStream(footagePath, audioPath, captionFile, outFile)
	args := stream.GetArgs()
	r.logger.Debug().Strs("args", args).Msg("ffmpeg command")

	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, r.cfg.Render.FFmpegPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "ffmpeg interrupted")
		}
		return errors.Wrapf(err, "ffmpeg: %s", lastLines(stderr.String(), 5))
	}
	return nil
}

// probeDuration reads the container duration reported by ffprobe
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, errors.Wrapf(err, "ffprobe %s", filepath.Base(path))
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, errors.WithStack(err)
	}
	if probe.Format.Duration == "" {
		return 0, errors.New("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse duration")
	}
	return d, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
