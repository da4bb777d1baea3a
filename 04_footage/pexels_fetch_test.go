package footage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shorts-factory/config"
	"shorts-factory/types"
)

func newFetcher(t *testing.T, mux *http.ServeMux) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Footage.BaseURL = srv.URL
	cfg.Secrets.PexelsAPIKey = "px-test"
	return New(cfg), srv
}

func TestFetchDownloadsFirstFileOfFirstVideo(t *testing.T) {
	clip := []byte("\x00\x00\x00\x18ftypmp42fake")
	mux := http.NewServeMux()
	var srvURL string

	mux.HandleFunc("/videos/search", func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "px-test" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if q := r.URL.Query(); q.Get("query") != "Hook..." || q.Get("per_page") != "1" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprintf(rw, `{"total_results":2,"videos":[
			{"id":1,"duration":35,"video_files":[{"quality":"hd","link":"%s/files/first.mp4"},{"link":"%s/files/second.mp4"}]},
			{"id":2,"video_files":[{"link":"%s/files/other.mp4"}]}
		]}`, srvURL, srvURL, srvURL)
	})
	mux.HandleFunc("/files/first.mp4", func(rw http.ResponseWriter, r *http.Request) {
		rw.Write(clip)
	})
	mux.HandleFunc("/files/", func(rw http.ResponseWriter, r *http.Request) {
		t.Errorf("downloaded wrong file %s", r.URL.Path)
	})

	f, srv := newFetcher(t, mux)
	srvURL = srv.URL

	query := QueryFromScript(types.Script{Text: "Hook... Fact1 Fact2 Fact3 CTA"})
	data, err := f.Fetch(context.Background(), query)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(data, clip) {
		t.Fatalf("clip bytes mismatch")
	}
}

func TestFetchNoResults(t *testing.T) {
	bodies := map[string]string{
		"zero videos":    `{"total_results":0,"videos":[]}`,
		"missing videos": `{}`,
		"no files":       `{"videos":[{"id":7,"video_files":[]}]}`,
		"blank link":     `{"videos":[{"id":7,"video_files":[{"link":""}]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/videos/search", func(rw http.ResponseWriter, r *http.Request) {
				io.WriteString(rw, body)
			})
			f, _ := newFetcher(t, mux)

			_, err := f.Fetch(context.Background(), "Nothing")
			if !errors.Is(err, types.ErrNoResults) {
				t.Fatalf("err = %v, want no_results", err)
			}
		})
	}
}

func TestFetchEmptyQuery(t *testing.T) {
	f, _ := newFetcher(t, http.NewServeMux())
	if _, err := f.Fetch(context.Background(), QueryFromScript(types.Script{})); !errors.Is(err, types.ErrNoResults) {
		t.Fatalf("err = %v, want no_results", err)
	}
}

func TestFetchDownloadErrors(t *testing.T) {
	t.Run("search status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/videos/search", func(rw http.ResponseWriter, r *http.Request) {
			http.Error(rw, "forbidden", http.StatusForbidden)
		})
		f, _ := newFetcher(t, mux)
		if _, err := f.Fetch(context.Background(), "AI"); !errors.Is(err, types.ErrDownload) {
			t.Fatalf("err = %v, want download", err)
		}
	})

	t.Run("file missing", func(t *testing.T) {
		mux := http.NewServeMux()
		var srvURL string
		mux.HandleFunc("/videos/search", func(rw http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(rw, `{"videos":[{"id":1,"video_files":[{"link":"%s/gone.mp4"}]}]}`, srvURL)
		})
		f, srv := newFetcher(t, mux)
		srvURL = srv.URL
		if _, err := f.Fetch(context.Background(), "AI"); !errors.Is(err, types.ErrDownload) {
			t.Fatalf("err = %v, want download", err)
		}
	})
}

func TestFetchRejectsOversizedClip(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"declared length": func(rw http.ResponseWriter, r *http.Request) {
			rw.Write(bytes.Repeat([]byte{0x42}, 16))
		},
		"streamed": func(rw http.ResponseWriter, r *http.Request) {
			rw.Write([]byte("ftyp"))
			rw.(http.Flusher).Flush()
			rw.Write(bytes.Repeat([]byte{0x42}, 12))
		},
	}
	for name, serve := range tests {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			var srvURL string
			mux.HandleFunc("/videos/search", func(rw http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(rw, `{"videos":[{"id":1,"video_files":[{"link":"%s/files/big.mp4"}]}]}`, srvURL)
			})
			mux.HandleFunc("/files/big.mp4", serve)
			f, srv := newFetcher(t, mux)
			srvURL = srv.URL
			f.cfg.Footage.MaxBytes = 8

			_, err := f.Fetch(context.Background(), "Space")
			if !errors.Is(err, types.ErrDownload) {
				t.Fatalf("err = %v, want download error", err)
			}
		})
	}
}
