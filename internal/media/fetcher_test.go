package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tunebot/internal/shared"
)

// writeScript creates an executable stand-in for the extraction tool.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("extraction tool stub requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-ytdlp")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// outDirScript resolves the output template directory the same way the real
// tool would, so stubs can place files where the fetcher looks for them.
const outDirScript = `
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
dir=$(dirname "$out")
`

// requireNoLeftovers asserts that no extraction working directory survived.
func requireNoLeftovers(t *testing.T, tmp string) {
	t.Helper()
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("failed to read temp root: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "tunebot-fetch-") {
			t.Errorf("extraction working directory leaked: %s", e.Name())
		}
	}
}

func TestFetcherPreview(t *testing.T) {
	t.Run("Returns Body On 2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("mp3-bytes"))
		}))
		defer server.Close()

		f := NewFetcher(FetcherOpts{})
		audio, err := f.Preview(context.Background(), server.URL+"/preview.mp3")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(audio.Data) != "mp3-bytes" {
			t.Errorf("expected raw body, got %q", audio.Data)
		}
	})

	t.Run("Non-2xx Is Upstream Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := NewFetcher(FetcherOpts{})
		if _, err := f.Preview(context.Background(), server.URL); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("Missing URL", func(t *testing.T) {
		f := NewFetcher(FetcherOpts{})
		if _, err := f.Preview(context.Background(), ""); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("Slow Server Times Out", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		f := NewFetcher(FetcherOpts{PreviewTimeout: 50 * time.Millisecond})
		if _, err := f.Preview(context.Background(), server.URL); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})
}

func TestFetcherExtract(t *testing.T) {
	t.Run("Reads Produced File", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		binary := writeScript(t, outDirScript+`printf 'audio-bytes' > "$dir/Fake Song.mp3"`)
		f := NewFetcher(FetcherOpts{Binary: binary})

		audio, err := f.Extract(context.Background(), "Linkin Park", "Numb")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(audio.Data) != "audio-bytes" {
			t.Errorf("expected file contents, got %q", audio.Data)
		}
		if audio.FileName != "Fake Song.mp3" {
			t.Errorf("expected sanitized file name, got %s", audio.FileName)
		}
		if audio.Performer != "Linkin Park" || audio.Title != "Numb" {
			t.Errorf("expected metadata carried through, got %+v", audio)
		}
		requireNoLeftovers(t, tmp)
	})

	t.Run("Clean Exit Without File Is NotFound", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		binary := writeScript(t, "exit 0")
		f := NewFetcher(FetcherOpts{Binary: binary})

		_, err := f.Extract(context.Background(), "Nobody", "Nothing")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		requireNoLeftovers(t, tmp)
	})

	t.Run("Nonzero Exit Carries Stderr Detail", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		binary := writeScript(t, `echo "ERROR: unable to download video data" >&2; exit 1`)
		f := NewFetcher(FetcherOpts{Binary: binary})

		_, err := f.Extract(context.Background(), "Linkin Park", "Numb")
		if !errors.Is(err, shared.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
		if want := "unable to download video data"; !strings.Contains(err.Error(), want) {
			t.Errorf("expected stderr detail in error, got %v", err)
		}
		requireNoLeftovers(t, tmp)
	})

	t.Run("Deadline Kills Process", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		binary := writeScript(t, "sleep 10")
		f := NewFetcher(FetcherOpts{Binary: binary, Timeout: 100 * time.Millisecond})

		start := time.Now()
		_, err := f.Extract(context.Background(), "Linkin Park", "Numb")
		if !errors.Is(err, shared.ErrExtractionTimeout) {
			t.Fatalf("expected ErrExtractionTimeout, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("extraction was not killed promptly, took %s", elapsed)
		}
		requireNoLeftovers(t, tmp)
	})

	t.Run("Missing Binary Is Upstream Error", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		f := NewFetcher(FetcherOpts{Binary: filepath.Join(tmp, "does-not-exist")})
		if _, err := f.Extract(context.Background(), "a", "b"); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
		requireNoLeftovers(t, tmp)
	})

	t.Run("Empty Expression", func(t *testing.T) {
		f := NewFetcher(FetcherOpts{})
		if _, err := f.Extract(context.Background(), " ", ""); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})
}

