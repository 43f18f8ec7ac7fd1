// Package tiles downloads basemap tiles into a local WebP cache so the
// viewer can work against slow or metered imagery services.
package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

// Coordinate represents a specific tile.
type Coordinate struct {
	Z, X, Y int
}

type job struct {
	URLTemplate string
	BaseDir     string
	Coord       Coordinate
}

type result struct {
	Coord Coordinate
	Valid bool
}

// Fetcher prefetches tiles from a URL template into CacheDir.
type Fetcher struct {
	Client      *http.Client
	Limiter     *rate.Limiter
	CacheDir    string
	Concurrency int
	Force       bool
}

// Prefetch walks the tile pyramid breadth-first up to zoomLimit, fetching
// only children of tiles that actually existed at the previous level.
func (f *Fetcher) Prefetch(ctx context.Context, layer, urlTemplate string, zoomLimit int) {
	log.Info().
		Str("layer", layer).
		Int("zoom_limit", zoomLimit).
		Msg("Starting tile prefetch")

	baseDir := filepath.Join(f.CacheDir, "tiles", layer)
	currentLevel := []Coordinate{{0, 0, 0}}

	for z := 0; z <= zoomLimit; z++ {
		if ctx.Err() != nil {
			return
		}
		if len(currentLevel) == 0 {
			break
		}
		if z > 0 && !f.probeLevel(ctx, currentLevel, urlTemplate) {
			log.Info().Int("zoom", z).Msg("No data found at zoom level, stopping")
			break
		}

		log.Debug().Int("zoom", z).Int("count", len(currentLevel)).Msg("Processing zoom level")

		validTiles := f.processBatch(ctx, currentLevel, urlTemplate, baseDir)

		nextLevel := make([]Coordinate, 0, len(validTiles)*4)
		for _, t := range validTiles {
			nx, ny := t.X*2, t.Y*2
			nextLevel = append(nextLevel,
				Coordinate{Z: z + 1, X: nx, Y: ny},
				Coordinate{Z: z + 1, X: nx + 1, Y: ny},
				Coordinate{Z: z + 1, X: nx, Y: ny + 1},
				Coordinate{Z: z + 1, X: nx + 1, Y: ny + 1},
			)
		}
		currentLevel = nextLevel
	}
}

func (f *Fetcher) processBatch(ctx context.Context, tiles []Coordinate, urlTpl, baseDir string) []Coordinate {
	concurrency := f.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	jobs := make(chan job, len(tiles))
	results := make(chan result, len(tiles))

	go func() {
		for _, t := range tiles {
			jobs <- job{Coord: t, URLTemplate: urlTpl, BaseDir: baseDir}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				isValid, err := f.downloadAndConvert(ctx, j)
				if err != nil {
					log.Trace().
						Err(err).
						Str("url", BuildURL(j.URLTemplate, j.Coord)).
						Msg("Failed to download tile")
				}
				results <- result{Coord: j.Coord, Valid: isValid}
			}
		}()
	}
	wg.Wait()
	close(results)

	var valid []Coordinate
	for res := range results {
		if res.Valid {
			valid = append(valid, res.Coord)
		}
	}

	return valid
}

func (f *Fetcher) downloadAndConvert(ctx context.Context, j job) (bool, error) {
	outPath := filepath.Join(
		j.BaseDir,
		fmt.Sprintf("%d", j.Coord.Z),
		fmt.Sprintf("%d", j.Coord.X),
		fmt.Sprintf("%d", j.Coord.Y)+".webp")

	// Check existence if not forcing overwrite
	if !f.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return true, nil
		}
	}

	body, status, err := f.get(ctx, BuildURL(j.URLTemplate, j.Coord))
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("status code %d", status)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return false, nil // not an image or corrupted
	}

	// Filter out empty/1px tiles often returned by map servers for OOB areas
	if img.Bounds().Dx() <= 1 {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return false, err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return false, err
	}
	defer func() { _ = outFile.Close() }()

	if err := webp.Encode(outFile, img, &webp.Options{Lossless: false, Quality: 80}); err != nil {
		return false, err
	}

	return true, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

func (f *Fetcher) probeLevel(ctx context.Context, tiles []Coordinate, urlTpl string) bool {
	// Check a few points (start, middle, end) to see if the zoom level has data
	probes := []Coordinate{}
	if len(tiles) > 0 {
		probes = append(probes, tiles[0])
	}
	if len(tiles) > 10 {
		probes = append(probes, tiles[len(tiles)/2])
	}
	if len(tiles) > 1 {
		probes = append(probes, tiles[len(tiles)-1])
	}

	for _, p := range probes {
		body, status, err := f.get(ctx, BuildURL(urlTpl, p))
		if err != nil || status != http.StatusOK {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(body))
		if err == nil && img.Bounds().Dx() > 1 {
			return true
		}
	}

	return false
}

// BuildURL expands the {z}, {x}, {y} and {tms_y} placeholders of a tile
// URL template.
func BuildURL(tpl string, c Coordinate) string {
	s := strings.ReplaceAll(tpl, "{z}", fmt.Sprintf("%d", c.Z))
	s = strings.ReplaceAll(s, "{x}", fmt.Sprintf("%d", c.X))
	s = strings.ReplaceAll(s, "{y}", fmt.Sprintf("%d", c.Y))

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << c.Z) - 1
		tmsY := maxCoord - c.Y
		s = strings.ReplaceAll(s, "{tms_y}", fmt.Sprintf("%d", tmsY))
	}

	return s
}

// Transparent renders a fully transparent square WebP tile, used as the
// fallback for cache misses.
func Transparent(size int) ([]byte, error) {
	// NewRGBA zeroes the pixel buffer, which already is transparent black
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
