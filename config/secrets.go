package config

import "os"

// Secrets are the process-wide credentials, read once at start-up
type Secrets struct {
	OpenAIAPIKey     string
	ElevenLabsAPIKey string
	PexelsAPIKey     string
	// YouTubeTokenFile is the path of the authorized-user token file
	YouTubeTokenFile string

	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
}

// LoadSecrets reads secrets from the environment. Call godotenv.Load first for local dev.
func LoadSecrets() Secrets {
	return Secrets{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		PexelsAPIKey:       os.Getenv("PEXELS_API_KEY"),
		YouTubeTokenFile:   os.Getenv("YOUTUBE_CLIENT_SECRET"),
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditUsername:     os.Getenv("REDDIT_USERNAME"),
		RedditPassword:     os.Getenv("REDDIT_PASSWORD"),
	}
}

// Missing lists the names of required secrets that are not set
func (s Secrets) Missing() []string {
	var missing []string
	required := []struct {
		name, value string
	}{
		{"OPENAI_API_KEY", s.OpenAIAPIKey},
		{"ELEVENLABS_API_KEY", s.ElevenLabsAPIKey},
		{"PEXELS_API_KEY", s.PexelsAPIKey},
		{"YOUTUBE_CLIENT_SECRET", s.YouTubeTokenFile},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// HasRedditLogin reports whether script-app credentials for Reddit are present
func (s Secrets) HasRedditLogin() bool {
	return s.RedditClientID != "" && s.RedditClientSecret != "" &&
		s.RedditUsername != "" && s.RedditPassword != ""
}
