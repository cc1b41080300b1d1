package volume

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"segtopo/internal/models"
)

// LoadSlices stacks the 2D label images in dir into a volume of shape
// (slices, height, width). Files are ordered by the number embedded in their
// name and decoded concurrently. A pixel's label is its gray level; use
// lossless PNG for label maps since JPEG alters values.
func LoadSlices(dir string, workers int) (*models.Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no PNG or JPEG slices in %s: %w", dir, ErrUnsupportedFormat)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	slices := make([]*models.Slice, len(names))
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, name := range names {
		eg.Go(func() error {
			s, err := loadSlice(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("failed to load slice %s: %w", name, err)
			}
			s.Index = i
			slices[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	w, h := slices[0].Width, slices[0].Height
	labels := make([]int32, 0, len(slices)*w*h)
	for _, s := range slices {
		if s.Width != w || s.Height != h {
			return nil, fmt.Errorf("slice %s is %dx%d, first slice is %dx%d: %w",
				s.Filename, s.Width, s.Height, w, h, ErrShapeMismatch)
		}
		labels = append(labels, s.Labels...)
	}
	return &models.Volume{Labels: labels, Shape: [3]int{len(slices), h, w}}, nil
}

// extractNumber returns the digits of a file name read as one integer, or 0.
func extractNumber(filename string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

func loadSlice(path string) (*models.Slice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	s := &models.Slice{
		Filename: filepath.Base(path),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Labels:   make([]int32, b.Dx()*b.Dy()),
	}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			s.Labels[y*s.Width+x] = grayLevel(img, b.Min.X+x, b.Min.Y+y)
		}
	}
	return s, nil
}

// grayLevel keeps the native bit depth of gray images and falls back to the
// 8-bit luminance otherwise.
func grayLevel(img image.Image, x, y int) int32 {
	switch m := img.(type) {
	case *image.Gray:
		return int32(m.GrayAt(x, y).Y)
	case *image.Gray16:
		return int32(m.Gray16At(x, y).Y)
	}
	return int32(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
}
