package facerec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// ModelSource fetches a named model file.
type ModelSource interface {
	Fetch(ctx context.Context, name string, w io.Writer) error
}

// HTTPModelSource downloads model files from BaseURL/<name>.
type HTTPModelSource struct {
	baseURL  string
	client   *http.Client
	progress io.Writer
}

// NewHTTPModelSource creates a model source for baseURL.
// When progress is non-nil a progress bar per file is written to it.
func NewHTTPModelSource(baseURL string, progress io.Writer) *HTTPModelSource {
	return &HTTPModelSource{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Minute},
		progress: progress,
	}
}

// Fetch downloads one model file into w.
func (s *HTTPModelSource) Fetch(ctx context.Context, name string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("download %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dst := w
	if s.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
		defer bar.Finish()
		dst = io.MultiWriter(w, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	return nil
}

// ModelsPresent reports whether every file exists in dir and is non-empty.
func ModelsPresent(dir string, files []string) bool {
	for _, f := range files {
		info, err := os.Stat(filepath.Join(dir, f))
		if err != nil || info.Size() == 0 {
			return false
		}
	}
	return true
}

// LoadModels makes sure every model file exists in dir, fetching missing
// ones concurrently. Existing non-empty files are reused. If any fetch
// fails the returned error joins every failure.
func LoadModels(ctx context.Context, src ModelSource, dir string, files []string) error {
	if len(files) == 0 {
		return errors.New("no model files configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating models directory: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, name := range files {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			log.Debug().Str("file", name).Msg("model already present")
			continue
		}

		wg.Add(1)
		go func(name, path string) {
			defer wg.Done()
			if err := fetchModel(ctx, src, name, path); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			log.Info().Str("file", name).Msg("model downloaded")
		}(name, path)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// fetchModel downloads into a temporary file next to path and renames it into place.
func fetchModel(ctx context.Context, src ModelSource, name, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), name+".*.part")
	if err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := src.Fetch(ctx, name, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("model %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	return nil
}
