package processor

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/preview"

	"github.com/rs/zerolog/log"
)

type job struct {
	Feature catalog.Feature
	Path    string
}

type result struct {
	ID      string
	Written bool
}

// PreviewPath returns where the cached thumbnail of a feature lives.
// The id is escaped so distinct ids never share a file or leave dir.
func PreviewPath(dir, id string) string {
	return filepath.Join(dir, url.PathEscape(id)+".webp")
}

// ProcessPreviews renders a WebP thumbnail for every catalog feature into dir
// using concurrency workers. It returns the number of files written.
func ProcessPreviews(cat *catalog.Catalog, dir string, concurrency, size int, force bool) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	features := cat.Features()
	jobs := make(chan job, len(features))
	results := make(chan result, len(features))

	go func() {
		for _, f := range features {
			jobs <- job{Feature: f, Path: PreviewPath(dir, f.ID)}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				written, err := renderPreview(j, size, force)
				if err != nil {
					log.Error().
						Err(err).
						Str("feature", j.Feature.ID).
						Msg("Failed to render preview")
				}
				results <- result{ID: j.Feature.ID, Written: written}
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for res := range results {
		if res.Written {
			count++
		}
	}

	log.Info().
		Int("features", len(features)).
		Int("written", count).
		Str("dir", dir).
		Msg("Previews rendered")

	return count, nil
}

func renderPreview(j job, size int, force bool) (bool, error) {
	// Check existence if not forcing overwrite
	if !force {
		if info, err := os.Stat(j.Path); err == nil && info.Size() > 0 {
			return false, nil
		}
	}

	err := writeFile(j.Path, func(w io.Writer) error {
		return preview.Encode(w, preview.Render(j.Feature.Geometry, size))
	})
	if err != nil {
		return false, err
	}

	log.Trace().Str("feature", j.Feature.ID).Str("path", j.Path).Msg("Preview written")
	return true, nil
}

// writeFile writes through a temporary file in the same directory and renames
// it into place, so a failed write never leaves a partial file at path.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	// Removing after a successful rename is a no-op
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
