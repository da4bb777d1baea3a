package script

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const promptTemplate = `Create an ultra-engaging 30-second YouTube Short about %s with:
1. Shocking hook
2. 3 fast facts
3. Call-to-action

Use emojis and write for 9th grade level.`

// Writer generates Short scripts with an OpenAI chat model
type Writer struct {
	cfg    *config.Config
	client *openai.Client
	logger zerolog.Logger
}

// New creates a new script Writer
func New(cfg *config.Config) *Writer {
	clientCfg := openai.DefaultConfig(cfg.Secrets.OpenAIAPIKey)
	if cfg.Script.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Script.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Script.Timeout}

	return &Writer{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: log.With().Str("stage", "script").Logger(),
	}
}

// BuildPrompt returns the user prompt sent for a topic
func BuildPrompt(topic types.Topic) string {
	return fmt.Sprintf(promptTemplate, topic)
}

// Generate asks the model for a script and returns its text untouched
func (w *Writer) Generate(ctx context.Context, topic types.Topic) (types.Script, error) {
	w.logger.Info().Str("topic", string(topic)).Str("model", w.cfg.Script.Model).Msg("generating script")

	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.cfg.Script.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: w.cfg.Script.SystemPersona},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(topic)},
		},
	})
	if err != nil {
		return types.Script{}, classify(err)
	}

	if len(resp.Choices) == 0 {
		return types.Script{}, types.Errorf(types.KindGeneration, "chat completion", "model returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return types.Script{}, types.Errorf(types.KindGeneration, "chat completion", "model returned empty content")
	}

	w.logger.Info().Int("words", len(strings.Fields(content))).Msg("script ready")
	return types.Script{Topic: topic, Text: content}, nil
}

// classify maps client errors onto the pipeline taxonomy: anything that says
// the service is unreachable or refusing us is upstream, the rest is generation
func classify(err error) error {
	const op = "chat completion"

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return types.NewError(statusKind(apiErr.HTTPStatusCode), op, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return types.NewError(statusKind(reqErr.HTTPStatusCode), op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewError(types.KindUpstreamUnavailable, op, err)
	}
	return types.NewError(types.KindGeneration, op, err)
}

func statusKind(status int) types.ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return types.KindUpstreamUnavailable
	}
	return types.KindGeneration
}
