// Package scans splits flatbed scanner output into individual photos.
// A scan of several loose photos on the glass is segmented against the
// scanner's background color and each detected photo is cropped out and
// saved as its own jpeg.
package scans

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// scanPatterns are the filenames considered scanner output.
var scanPatterns = []string{"SCAN_*.png", "*.tif"}

// IsScanFile reports whether name looks like a raw scanner file.
func IsScanFile(name string) bool {
	for _, pattern := range scanPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Background models the scanner glass color seen around and between
// photos, as a mean luminance with a tolerance band.
type Background struct {
	mean float64
	tol  float64
}

// BackgroundFromImage derives the background from a blank scan, a saved
// scan taken with the scanner empty.
func BackgroundFromImage(img image.Image) Background {
	mean, stddev := lumaStats(img, img.Bounds())
	return newBackground(mean, stddev)
}

// BackgroundFromBorder derives the background from the outermost border
// of the scan itself. Photos are never flush with the glass edge, so
// the border is glass.
func BackgroundFromBorder(img image.Image) Background {
	b := img.Bounds()
	margin := b.Dx() / 100
	if margin < 4 {
		margin = 4
	}
	strips := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+margin),
		image.Rect(b.Min.X, b.Max.Y-margin, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+margin, b.Max.Y),
		image.Rect(b.Max.X-margin, b.Min.Y, b.Max.X, b.Max.Y),
	}
	var sum, sqsum float64
	var n int
	for _, strip := range strips {
		for y := strip.Min.Y; y < strip.Max.Y; y++ {
			for x := strip.Min.X; x < strip.Max.X; x++ {
				l := luma(img.At(x, y))
				sum += l
				sqsum += l * l
				n++
			}
		}
	}
	mean := sum / float64(n)
	stddev := math.Sqrt(sqsum/float64(n) - mean*mean)
	return newBackground(mean, stddev)
}

func newBackground(mean, stddev float64) Background {
	tol := 3 * stddev
	if tol < 16 {
		tol = 16
	}
	return Background{mean: mean, tol: tol}
}

// Matches reports whether a color falls inside the background band.
func (bg Background) Matches(c color.Color) bool {
	return math.Abs(luma(c)-bg.mean) <= bg.tol
}

func luma(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

func lumaStats(img image.Image, r image.Rectangle) (mean, stddev float64) {
	var sum, sqsum float64
	n := r.Dx() * r.Dy()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			l := luma(img.At(x, y))
			sum += l
			sqsum += l * l
		}
	}
	mean = sum / float64(n)
	stddev = math.Sqrt(sqsum/float64(n) - mean*mean)
	return mean, stddev
}

// Segmenter finds photo regions in a scan.
type Segmenter struct {
	// DPI is the scan resolution, used to derive the minimum photo size.
	DPI int
}

// segmentation runs on a downscaled copy to keep the component search
// cheap on 600dpi scans
const downscale = 8

// dilation radius on the small mask, bridges small gaps inside a photo
const dilateSteps = 2

// Regions returns the bounding boxes of the photos found in img, in
// reading order. Regions smaller than one square inch are discarded as
// dust or glare.
func (s *Segmenter) Regions(img image.Image, bg Background) []image.Rectangle {
	bounds := img.Bounds()
	small := imaging.Resize(img, bounds.Dx()/downscale, 0, imaging.Box)
	sb := small.Bounds()
	w, h := sb.Dx(), sb.Dy()

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask[y*w+x] = !bg.Matches(small.At(x, y))
		}
	}
	for i := 0; i < dilateSteps; i++ {
		mask = dilate(mask, w, h)
	}

	minArea := (s.DPI * s.DPI) / (downscale * downscale)
	var regions []image.Rectangle
	seen := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] || seen[y*w+x] {
				continue
			}
			region, area := flood(mask, seen, w, h, x, y)
			if area < minArea {
				continue
			}
			full := image.Rect(
				region.Min.X*downscale, region.Min.Y*downscale,
				(region.Max.X+1)*downscale, (region.Max.Y+1)*downscale,
			).Intersect(bounds)
			regions = append(regions, full)
		}
	}
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Min.Y != regions[j].Min.Y {
			return regions[i].Min.Y < regions[j].Min.Y
		}
		return regions[i].Min.X < regions[j].Min.X
	})
	return regions
}

func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				out[y*w+x] = true
				continue
			}
			if x > 0 && mask[y*w+x-1] || x < w-1 && mask[y*w+x+1] ||
				y > 0 && mask[(y-1)*w+x] || y < h-1 && mask[(y+1)*w+x] {
				out[y*w+x] = true
			}
		}
	}
	return out
}

// flood walks one 4-connected component and returns its bounding box
// and pixel count.
func flood(mask, seen []bool, w, h, x0, y0 int) (image.Rectangle, int) {
	stack := []image.Point{{x0, y0}}
	seen[y0*w+x0] = true
	box := image.Rect(x0, y0, x0, y0)
	area := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++
		if p.X < box.Min.X {
			box.Min.X = p.X
		}
		if p.Y < box.Min.Y {
			box.Min.Y = p.Y
		}
		if p.X > box.Max.X {
			box.Max.X = p.X
		}
		if p.Y > box.Max.Y {
			box.Max.Y = p.Y
		}
		for _, d := range []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if mask[ny*w+nx] && !seen[ny*w+nx] {
				seen[ny*w+nx] = true
				stack = append(stack, image.Point{nx, ny})
			}
		}
	}
	return box, area
}

// Process segments one scan file and writes the cropped photos into
// outDir. A scan holding a single photo keeps its stem, multiple photos
// get a numeric suffix. It returns the paths written.
func Process(path, outDir string, bg Background, dpi int) ([]string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	seg := &Segmenter{DPI: dpi}
	regions := seg.Regions(img, bg)

	save := func(photo image.Image, base string) (string, error) {
		target := filepath.Join(outDir, base+".jpg")
		return target, imaging.Save(photo, target, imaging.JPEGQuality(85))
	}

	if len(regions) < 2 {
		target, err := save(img, stem)
		if err != nil {
			return nil, err
		}
		return []string{target}, nil
	}
	var written []string
	for i, region := range regions {
		target, err := save(imaging.Crop(img, region), fmt.Sprintf("%s-%d", stem, i))
		if err != nil {
			return nil, err
		}
		written = append(written, target)
	}
	return written, nil
}
