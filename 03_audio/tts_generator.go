package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const op = "text to speech"

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesizer turns script text into narration via ElevenLabs
type Synthesizer struct {
	cfg        *config.Config
	httpClient *http.Client
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates a new Synthesizer
func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Audio.Timeout},
		now:        time.Now,
		logger:     log.With().Str("stage", "audio").Logger(),
	}
}

// Synthesize sends the full script to the TTS service and writes the audio
// to voiceover_<unix>.mp3 in the work directory
func (s *Synthesizer) Synthesize(ctx context.Context, script types.Script) (types.AudioAsset, error) {
	s.logger.Info().Str("voice", s.cfg.Audio.VoiceID).Str("model", s.cfg.Audio.ModelID).Msg("synthesizing voiceover")

	data, err := s.fetchAudio(ctx, script.Text)
	if err != nil {
		return types.AudioAsset{}, err
	}

	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0755); err != nil {
		return types.AudioAsset{}, types.NewError(types.KindSynthesis, "create work dir", err)
	}
	outFile := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("voiceover_%d.mp3", s.now().Unix()))
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return types.AudioAsset{}, types.NewError(types.KindSynthesis, "write voiceover", err)
	}

	event := s.logger.Info().Str("file", outFile).Int("bytes", len(data))
	if dur, err := s.audioDuration(outFile); err == nil {
		event = event.Float64("seconds", dur)
	}
	event.Msg("voiceover ready")

	return types.AudioAsset{Path: outFile, Data: data}, nil
}

func (s *Synthesizer) fetchAudio(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{Text: text, ModelID: s.cfg.Audio.ModelID})
	if err != nil {
		return nil, types.NewError(types.KindSynthesis, op, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", strings.TrimRight(s.cfg.Audio.BaseURL, "/"), s.cfg.Audio.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.KindSynthesis, op, err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.cfg.Secrets.ElevenLabsAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, types.NewError(types.KindSynthesis, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.Errorf(types.KindSynthesis, op, "elevenlabs HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.KindSynthesis, op, err)
	}
	if len(data) == 0 {
		return nil, types.Errorf(types.KindSynthesis, op, "elevenlabs returned no audio")
	}
	return data, nil
}

// audioDuration probes the file for logging only; nothing validates it
func (s *Synthesizer) audioDuration(path string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, err
	}
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, err
	}
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
}
