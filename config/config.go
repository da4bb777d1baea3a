package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Topics   TopicsConfig   `yaml:"topics"`
	Script   ScriptConfig   `yaml:"script"`
	Audio    AudioConfig    `yaml:"audio"`
	Footage  FootageConfig  `yaml:"footage"`
	Render   RenderConfig   `yaml:"render"`
	Metadata MetadataConfig `yaml:"metadata"`
	Upload   UploadConfig   `yaml:"upload"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Paths    PathsConfig    `yaml:"paths"`

	// Secrets come from the environment, never from config.yaml
	Secrets Secrets `yaml:"-"`
}

type TopicsConfig struct {
	List   []string     `yaml:"list"`
	Reddit RedditConfig `yaml:"reddit"`
}

type RedditConfig struct {
	Subreddit string `yaml:"subreddit"`
	Limit     int    `yaml:"limit"`
	Time      string `yaml:"time"`
}

type ScriptConfig struct {
	Model         string        `yaml:"model"`
	SystemPersona string        `yaml:"system_persona"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

type AudioConfig struct {
	BaseURL string        `yaml:"base_url"`
	VoiceID string        `yaml:"voice_id"`
	ModelID string        `yaml:"model_id"`
	Timeout time.Duration `yaml:"timeout"`
}

type FootageConfig struct {
	BaseURL string        `yaml:"base_url"`
	PerPage int           `yaml:"per_page"`
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes caps a clip download
	MaxBytes int64 `yaml:"max_bytes"`
}

type RenderConfig struct {
	FFmpegPath  string  `yaml:"ffmpeg_path"`
	ClipSeconds float64 `yaml:"clip_seconds"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         int     `yaml:"fps"`
	VideoCodec  string  `yaml:"video_codec"`
	AudioCodec  string  `yaml:"audio_codec"`
	Font        string  `yaml:"font"`
	FontFile    string  `yaml:"font_file"`
	FontSize    int     `yaml:"font_size"`
	FontColor   string  `yaml:"font_color"`
	// MaxCharsPerLine wraps the caption to the frame width
	MaxCharsPerLine int `yaml:"max_chars_per_line"`
}

type MetadataConfig struct {
	TitleTemplate       string   `yaml:"title_template"`
	DescriptionTemplate string   `yaml:"description_template"`
	TitleMaxChars       int      `yaml:"title_max_chars"`
	Tags                []string `yaml:"tags"`
}

type UploadConfig struct {
	CategoryID  string        `yaml:"category_id"`
	Visibility  string        `yaml:"visibility"`
	MadeForKids bool          `yaml:"made_for_kids"`
	Resumable   bool          `yaml:"resumable"`
	ChunkSize   int           `yaml:"chunk_size"`
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

type ScheduleConfig struct {
	Interval     time.Duration `yaml:"interval"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type PathsConfig struct {
	WorkDir string `yaml:"work_dir"`
}

// Load reads config.yaml and returns a Config struct with defaults filled in.
// A missing file is not an error: the defaults describe the stock pipeline.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration of the stock pipeline
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Topics.List) == 0 {
		c.Topics.List = []string{
			"AI news", "Space facts", "Psychology tricks",
			"Business hacks", "History mysteries",
		}
	}
	if c.Topics.Reddit.Limit <= 0 {
		c.Topics.Reddit.Limit = 5
	}
	if c.Topics.Reddit.Time == "" {
		c.Topics.Reddit.Time = "day"
	}

	setString(&c.Script.Model, "gpt-4-1106-preview")
	setString(&c.Script.SystemPersona, "You're a viral content creator with 10M+ YouTube subscribers.")
	setDuration(&c.Script.Timeout, 2*time.Minute)

	setString(&c.Audio.BaseURL, "https://api.elevenlabs.io")
	setString(&c.Audio.VoiceID, "21m00Tcm4TlvDq8ikWAM") // Rachel
	setString(&c.Audio.ModelID, "eleven_turbo_v2")
	setDuration(&c.Audio.Timeout, 2*time.Minute)

	setString(&c.Footage.BaseURL, "https://api.pexels.com")
	if c.Footage.PerPage <= 0 {
		c.Footage.PerPage = 1
	}
	setDuration(&c.Footage.Timeout, 5*time.Minute)
	if c.Footage.MaxBytes <= 0 {
		c.Footage.MaxBytes = 512 << 20
	}

	setString(&c.Render.FFmpegPath, "ffmpeg")
	if c.Render.ClipSeconds <= 0 {
		c.Render.ClipSeconds = 30
	}
	setInt(&c.Render.Width, 720)
	setInt(&c.Render.Height, 1280)
	setInt(&c.Render.FPS, 24)
	setString(&c.Render.VideoCodec, "libx264")
	setString(&c.Render.AudioCodec, "aac")
	setString(&c.Render.Font, "Arial:style=Bold")
	setInt(&c.Render.FontSize, 35)
	setString(&c.Render.FontColor, "white")
	setInt(&c.Render.MaxCharsPerLine, 32)

	setString(&c.Metadata.TitleTemplate, "{{.Topic}} 🤯 #shorts")
	setString(&c.Metadata.DescriptionTemplate, "⚠️ Mind-blowing {{.Topic}} facts! Like & Subscribe!\n\n#shorts #viral #trending")
	setInt(&c.Metadata.TitleMaxChars, 100)

	setString(&c.Upload.CategoryID, "22")
	setString(&c.Upload.Visibility, "public")
	setInt(&c.Upload.ChunkSize, 16<<20)
	setDuration(&c.Upload.Timeout, 10*time.Minute)

	setDuration(&c.Pipeline.StageTimeout, 10*time.Minute)

	setDuration(&c.Schedule.Interval, 6*time.Hour)
	setDuration(&c.Schedule.PollInterval, time.Second)

	setString(&c.Paths.WorkDir, ".")
}

func setString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func setInt(dst *int, fallback int) {
	if *dst <= 0 {
		*dst = fallback
	}
}

func setDuration(dst *time.Duration, fallback time.Duration) {
	if *dst <= 0 {
		*dst = fallback
	}
}
