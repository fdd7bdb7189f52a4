package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"recogstats/internal/domain"

	"go.uber.org/zap"
)

const (
	PanelNone   = "none"
	PanelTable  = "table"
	PanelImages = "images"

	footerHeight = 30
)

// ImageFetcher downloads a record image.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

type Options struct {
	OutputDir            string
	OrgMarker            string
	Panel                string
	DescriptionThreshold int
}

type Renderer struct {
	opts   Options
	images ImageFetcher
	logger *zap.Logger
}

func New(opts Options, images ImageFetcher, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Panel == "" {
		opts.Panel = PanelNone
	}
	return &Renderer{opts: opts, images: images, logger: logger}
}

// ArtifactPath is the deterministic output file for an organization.
func ArtifactPath(outputDir, orgName string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s-statistics.png", sanitizeFilename(orgName)))
}

// Render draws the chart, the configured panel and the optional
// last-modified footer, and writes the PNG. It returns the artifact path.
func (r *Renderer) Render(ctx context.Context, orgName string, summary domain.StatsSummary, lastModified string) (string, error) {
	img, err := r.Compose(ctx, orgName, summary, lastModified)
	if err != nil {
		return "", err
	}
	path := ArtifactPath(r.opts.OutputDir, orgName)
	if err := writePNG(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// Title is the chart heading, built from the url segment the org came from.
func (r *Renderer) Title(orgName string) string {
	return fmt.Sprintf("Statistics for %s", domain.OrgSegment(orgName, r.opts.OrgMarker))
}

func (r *Renderer) Compose(ctx context.Context, orgName string, summary domain.StatsSummary, lastModified string) (image.Image, error) {
	barChart, err := BarChart(r.Title(orgName), Metrics(summary, r.opts.DescriptionThreshold))
	if err != nil {
		return nil, err
	}
	width := barChart.Bounds().Dx()

	parts := []image.Image{barChart}
	switch r.opts.Panel {
	case PanelTable:
		parts = append(parts, TablePanel(summary.ActiveRecords, width))
	case PanelImages:
		parts = append(parts, ImageGrid(r.fetchImages(ctx, orgName, summary.ActiveImageRefs), width))
	}
	if lastModified != "" {
		parts = append(parts, footer(fmt.Sprintf("Last Modified: %s", lastModified), width))
	}
	return stack(parts), nil
}

// fetchImages keeps failed fetches as nil so the grid shows a placeholder
// in their place.
func (r *Renderer) fetchImages(ctx context.Context, orgName string, refs []string) []image.Image {
	out := make([]image.Image, len(refs))
	if r.images == nil {
		return out
	}
	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		img, err := r.images.Fetch(ctx, ref)
		if err != nil {
			r.logger.Warn("image fetch failed", zap.String("org", orgName), zap.String("url", ref), zap.Error(err))
			continue
		}
		out[i] = img
	}
	return out
}

func footer(text string, width int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, footerHeight))
	fill(img, img.Bounds(), color.White)
	drawText(img, 20, footerHeight/2+lineHeight/2-2, fitText(text, width-40), mutedColor)
	return img
}

func stack(parts []image.Image) image.Image {
	width, height := 0, 0
	for _, p := range parts {
		b := p.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(out, out.Bounds(), color.White)
	y := 0
	for _, p := range parts {
		b := p.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), p, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}

func writePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}
