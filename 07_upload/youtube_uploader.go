package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// authorizedUser is the token file written by the one-time consent flow
type authorizedUser struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	RefreshToken string    `json:"refresh_token"`
	Token        string    `json:"token"`
	TokenURI     string    `json:"token_uri"`
	Expiry       time.Time `json:"expiry"`
}

// Uploader publishes rendered Shorts through the YouTube Data API v3
type Uploader struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates a new Uploader
func New(cfg *config.Config) *Uploader {
	return &Uploader{
		cfg:    cfg,
		logger: log.With().Str("stage", "upload").Logger(),
	}
}

// Publish uploads the video with its title and description. Credential
// problems and API 401/403 answers are auth failures; everything else is an
// upload failure.
func (u *Uploader) Publish(ctx context.Context, video types.RenderedVideo, md types.VideoMetadata) (types.UploadResult, error) {
	if u.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Upload.Timeout)
		defer cancel()
	}

	u.logger.Info().Msg("authenticating with YouTube API")
	client, err := u.oauthClient(ctx)
	if err != nil {
		return types.UploadResult{}, types.NewError(types.KindAuth, "youtube auth", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if u.cfg.Upload.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(u.cfg.Upload.Endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return types.UploadResult{}, types.NewError(types.KindUpload, "youtube service", err)
	}

	f, err := os.Open(video.Path)
	if err != nil {
		return types.UploadResult{}, types.NewError(types.KindUpload, "open video", err)
	}
	defer f.Close()

	event := u.logger.Info().Str("title", md.Title).Str("file", video.Path)
	if fi, err := f.Stat(); err == nil {
		event = event.Float64("size_mb", float64(fi.Size())/1024/1024)
	}
	event.Msg("uploading")

	body := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       md.Title,
			Description: md.Description,
			Tags:        md.Tags,
			CategoryId:  md.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           md.Privacy,
			SelfDeclaredMadeForKids: md.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	// files that fit in one chunk still go out as a single multipart request
	chunk := googleapi.ChunkSize(0)
	if u.cfg.Upload.Resumable {
		chunk = googleapi.ChunkSize(u.cfg.Upload.ChunkSize)
	}
	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, body).
		Media(f, chunk).
		Context(ctx).
		Do()
	if err != nil {
		return types.UploadResult{}, classify(err)
	}

	result := types.UploadResult{
		VideoID: uploaded.Id,
		URL:     fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	if uploaded.Status != nil {
		result.Status = uploaded.Status.UploadStatus
	}
	u.logger.Info().Str("video_id", result.VideoID).Str("url", result.URL).Msg("uploaded")
	return result, nil
}

// oauthClient builds an authorized client from the token file and refreshes
// the access token up front so bad credentials fail before the upload starts
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	creds, err := loadAuthorizedUser(u.cfg.Secrets.YouTubeTokenFile)
	if err != nil {
		return nil, err
	}

	endpoint := google.Endpoint
	if creds.TokenURI != "" {
		endpoint.TokenURL = creds.TokenURI
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}

	// A zero expiry would make a stored access token look valid forever
	expiry := creds.Expiry
	if creds.Token == "" || expiry.IsZero() {
		expiry = time.Now().Add(-time.Hour)
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.Token,
		RefreshToken: creds.RefreshToken,
		Expiry:       expiry,
	})
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}
	return oauth2.NewClient(ctx, ts), nil
}

func loadAuthorizedUser(path string) (*authorizedUser, error) {
	if path == "" {
		return nil, errors.New("YOUTUBE_CLIENT_SECRET not set")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var creds authorizedUser
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	switch {
	case creds.RefreshToken == "":
		return nil, fmt.Errorf("token file %s has no refresh_token", path)
	case creds.ClientID == "" || creds.ClientSecret == "":
		return nil, fmt.Errorf("token file %s has no client_id/client_secret", path)
	}
	return &creds, nil
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return types.NewError(types.KindAuth, "videos.insert", err)
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return types.NewError(types.KindAuth, "videos.insert", err)
	}
	return types.NewError(types.KindUpload, "videos.insert", err)
}
