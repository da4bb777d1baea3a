package pipeline

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	render "shorts-factory/05_render"
	"shorts-factory/types"
)

type clipFootage []byte

func (c clipFootage) Fetch(context.Context, string) ([]byte, error) { return c, nil }

func ffmpegFixture(t *testing.T, path string, args ...string) {
	t.Helper()
	cmd := exec.Command("ffmpeg", append(append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...), path)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg %s: %v\n%s", filepath.Base(path), err, out)
	}
}

// TestEndToEndWithRealRenderer runs the full state machine with stubbed
// network stages and the default config: 25s narration, 35s footage, real
// ffmpeg composition.
func TestEndToEndWithRealRenderer(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not on PATH", bin)
		}
	}
	if out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").Output(); err != nil || !strings.Contains(string(out), "drawtext") {
		t.Skip("ffmpeg built without drawtext")
	}
	if out, err := exec.Command("ffmpeg", "-hide_banner", "-version").Output(); err != nil || !strings.Contains(string(out), "fontconfig") {
		t.Skip("ffmpeg built without fontconfig")
	}

	f := newFixture(t, "AI news")
	f.stages.Script = scriptFunc(func(_ context.Context, topic types.Topic) (types.Script, error) {
		return types.Script{Topic: topic, Text: `Hook... 90% of people never notice this! Fact1 C:\path Fact2 Fact3 CTA`}, nil
	})

	fixtures := t.TempDir()
	clipPath := filepath.Join(fixtures, "clip.mp4")
	ffmpegFixture(t, clipPath, "-f", "lavfi", "-i", "testsrc=size=1280x720:rate=24:duration=35", "-c:v", "libx264", "-pix_fmt", "yuv420p")
	clip, err := os.ReadFile(clipPath)
	if err != nil {
		t.Fatal(err)
	}

	f.stages.Voice = voiceFunc(func(_ context.Context, s types.Script) (types.AudioAsset, error) {
		ffmpegFixture(t, f.audioPath, "-f", "lavfi", "-i", "sine=frequency=440:duration=25")
		return types.AudioAsset{Path: f.audioPath}, nil
	})
	f.stages.Render = render.New(f.cfg, clipFootage(clip))

	var rendered types.RenderedVideo
	f.stages.Publish = publishFunc(func(_ context.Context, v types.RenderedVideo, md types.VideoMetadata) (types.UploadResult, error) {
		rendered = v
		if _, err := os.Stat(v.Path); err != nil {
			t.Errorf("rendered file missing at publish time: %v", err)
		}
		return types.UploadResult{VideoID: "abc123"}, nil
	})

	o := f.orchestrator()
	res := o.Run(context.Background())

	if !res.OK() || res.Upload.VideoID != "abc123" {
		t.Fatalf("result = %+v", res)
	}
	if math.Abs(rendered.Duration.Seconds()-30) > 0.25 {
		t.Fatalf("rendered duration = %v, want 30s", rendered.Duration)
	}
	if o.State() != types.StateIdle {
		t.Fatalf("state = %s", o.State())
	}
	for _, p := range []string{f.audioPath, rendered.Path, filepath.Join(f.dir, render.TempFootageName)} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s left behind", filepath.Base(p))
		}
	}
}
