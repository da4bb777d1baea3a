package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher finds and downloads stock clips from Pexels
type Fetcher struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new Fetcher
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Footage.Timeout},
		logger:     log.With().Str("stage", "footage").Logger(),
	}
}

type searchResponse struct {
	TotalResults int `json:"total_results"`
	Videos       []struct {
		ID         int `json:"id"`
		Duration   int `json:"duration"`
		VideoFiles []struct {
			Quality  string `json:"quality"`
			FileType string `json:"file_type"`
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			Link     string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

// QueryFromScript derives the search query from the script's first word.
// It is a deliberately crude topic proxy.
func QueryFromScript(script types.Script) string {
	return script.FirstWord()
}

// Fetch searches for one clip matching query and returns the bytes of its first file
func (f *Fetcher) Fetch(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.Errorf(types.KindNoResults, "footage search", "empty query")
	}

	link, err := f.search(ctx, query)
	if err != nil {
		return nil, err
	}

	f.logger.Info().Str("query", query).Str("link", truncate(link, 80)).Msg("downloading clip")
	data, err := f.download(ctx, link)
	if err != nil {
		return nil, types.NewError(types.KindDownload, "footage download", err)
	}
	f.logger.Info().Int("bytes", len(data)).Msg("clip downloaded")
	return data, nil
}

func (f *Fetcher) search(ctx context.Context, query string) (string, error) {
	const op = "footage search"

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(f.cfg.Footage.PerPage))
	searchURL := fmt.Sprintf("%s/videos/search?%s", strings.TrimRight(f.cfg.Footage.BaseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", types.NewError(types.KindDownload, op, err)
	}
	req.Header.Set("Authorization", f.cfg.Secrets.PexelsAPIKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", types.NewError(types.KindDownload, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", types.Errorf(types.KindDownload, op, "HTTP %d from Pexels: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", types.NewError(types.KindDownload, op, fmt.Errorf("decode search response: %w", err))
	}

	if len(result.Videos) == 0 {
		return "", types.Errorf(types.KindNoResults, op, "no videos for %q", query)
	}
	first := result.Videos[0]
	if len(first.VideoFiles) == 0 || first.VideoFiles[0].Link == "" {
		return "", types.Errorf(types.KindNoResults, op, "video %d for %q has no files", first.ID, query)
	}
	return first.VideoFiles[0].Link, nil
}

func (f *Fetcher) download(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d downloading clip", resp.StatusCode)
	}

	limit := f.cfg.Footage.MaxBytes
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("clip is %d bytes, limit %d", resp.ContentLength, limit)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("clip exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clip download was empty")
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
