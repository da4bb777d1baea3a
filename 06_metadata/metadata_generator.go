package metadata

import (
	"strings"
	"text/template"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultTitle       = "{{.Topic}} 🤯 #shorts"
	defaultDescription = "⚠️ Mind-blowing {{.Topic}} facts! Like & Subscribe!\n\n#shorts #viral #trending"
)

// Builder renders the title and description of a Short from its topic
type Builder struct {
	cfg         *config.Config
	title       *template.Template
	description *template.Template
	logger      zerolog.Logger
}

// New creates a new Builder. A template that does not parse is replaced by
// the stock one so a bad config line cannot stop uploads.
func New(cfg *config.Config) *Builder {
	b := &Builder{
		cfg:    cfg,
		logger: log.With().Str("stage", "metadata").Logger(),
	}
	b.title = b.parse("title", cfg.Metadata.TitleTemplate, defaultTitle)
	b.description = b.parse("description", cfg.Metadata.DescriptionTemplate, defaultDescription)
	return b
}

func (b *Builder) parse(name, text, fallback string) *template.Template {
	t, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		b.logger.Warn().Err(err).Str("template", name).Msg("invalid template, using default")
		return template.Must(template.New(name).Parse(fallback))
	}
	return t
}

// Build returns the upload metadata for topic
func (b *Builder) Build(topic types.Topic) types.VideoMetadata {
	data := struct{ Topic string }{Topic: string(topic)}

	title := b.execute(b.title, data, defaultTitle)
	if limit := b.cfg.Metadata.TitleMaxChars; limit > 0 {
		title = truncateRunes(title, limit)
	}

	tags := make([]string, 0, len(b.cfg.Metadata.Tags)+1)
	tags = append(tags, b.cfg.Metadata.Tags...)
	if topic != "" {
		tags = append(tags, string(topic))
	}

	return types.VideoMetadata{
		Title:       title,
		Description: b.execute(b.description, data, defaultDescription),
		Tags:        tags,
		CategoryID:  b.cfg.Upload.CategoryID,
		Privacy:     b.cfg.Upload.Visibility,
		MadeForKids: b.cfg.Upload.MadeForKids,
	}
}

func (b *Builder) execute(t *template.Template, data any, fallback string) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		b.logger.Warn().Err(err).Str("template", t.Name()).Msg("template failed, using default")
		sb.Reset()
		if err := template.Must(template.New(t.Name()).Parse(fallback)).Execute(&sb, data); err != nil {
			b.logger.Error().Err(err).Str("template", t.Name()).Msg("default template failed")
		}
	}
	return sb.String()
}

// truncateRunes cuts s to at most n runes, marking the cut with "..."
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
