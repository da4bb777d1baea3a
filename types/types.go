package types

import (
	"strings"
	"time"
)

// Topic is a short label a Short is produced about
type Topic string

// Script is the narration text produced for one Short
type Script struct {
	Topic Topic  `json:"topic"`
	Text  string `json:"text"`
}

// Words returns the whitespace-delimited tokens of the script
func (s Script) Words() []string {
	return strings.Fields(s.Text)
}

// FirstWord returns the first token, or "" for an empty script
func (s Script) FirstWord() string {
	words := s.Words()
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// AudioAsset is the synthesized narration written to disk
type AudioAsset struct {
	Path string `json:"path"`
	Data []byte `json:"-"`
}

// FootageAsset is the stock clip persisted for the renderer
type FootageAsset struct {
	Path string `json:"path"`
	Data []byte `json:"-"`
}

// RenderedVideo is the composed output of the renderer
type RenderedVideo struct {
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
}

// UploadResult is the platform's answer to an upload
type UploadResult struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
	URL     string `json:"url"`
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Privacy     string   `json:"privacy"`
	MadeForKids bool     `json:"made_for_kids"`
}

// State is a step of the pipeline state machine
type State string

const (
	StateIdle          State = "idle"
	StateTopicSelected State = "topic_selected"
	StateScripted      State = "scripted"
	StateVoiced        State = "voiced"
	StateRendered      State = "rendered"
	StatePublished     State = "published"
	StateFailed        State = "failed"
)

// RunResult is what one pipeline run reports back to the scheduler.
// State is the terminal state reached: StatePublished or StateFailed.
// FailedAt is the last state reached before the failure.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Topic      Topic         `json:"topic,omitempty"`
	State      State         `json:"state"`
	FailedAt   State         `json:"failed_at,omitempty"`
	Kind       ErrorKind     `json:"kind,omitempty"`
	Err        error         `json:"-"`
	Upload     *UploadResult `json:"upload,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// OK reports whether the run reached StatePublished
func (r RunResult) OK() bool {
	return r.State == StatePublished && r.Err == nil
}
