// Package sliceio loads exported CT slices: a 16-bit greyscale PNG per slice
// plus an optional YAML sidecar with the same base name carrying geometry,
// rescale and scanner metadata.
//
// Stored pixel values p map to intensities p*rescaleSlope + rescaleIntercept.
package sliceio

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"gopkg.in/yaml.v3"

	"ctfiducials/internal/models"
)

// Sidecar is the YAML document stored next to each slice image
type Sidecar struct {
	Spacing          [2]float64 `yaml:"spacing"`
	Origin           [2]float64 `yaml:"origin"`
	Position         float64    `yaml:"position"`
	RescaleSlope     float64    `yaml:"rescaleSlope"`
	RescaleIntercept float64    `yaml:"rescaleIntercept"`

	models.SliceMeta `yaml:",inline"`
}

func defaultSidecar() Sidecar {
	return Sidecar{Spacing: [2]float64{1, 1}, RescaleSlope: 1}
}

// SidecarPath returns the sidecar path of a slice image
func SidecarPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".yaml"
}

// LoadSlice reads one slice image and its sidecar. A missing sidecar gives
// unit spacing, identity rescale and no table height.
func LoadSlice(imagePath string) (*models.Slice, models.SliceMeta, error) {
	sc := defaultSidecar()
	data, err := os.ReadFile(SidecarPath(imagePath))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, models.SliceMeta{}, fmt.Errorf("error parsing sidecar of %s: %w", imagePath, err)
		}
	case !os.IsNotExist(err):
		return nil, models.SliceMeta{}, fmt.Errorf("error reading sidecar of %s: %w", imagePath, err)
	}
	if sc.Spacing[0] <= 0 || sc.Spacing[1] <= 0 {
		return nil, models.SliceMeta{}, fmt.Errorf("invalid spacing %v in sidecar of %s", sc.Spacing, imagePath)
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, models.SliceMeta{}, fmt.Errorf("failed to load image %s: %w", imagePath, err)
	}

	b := img.Bounds()
	s := models.NewSlice(b.Dx(), b.Dy())
	s.Spacing = models.Spacing{X: sc.Spacing[0], Y: sc.Spacing[1]}
	s.Origin = models.Origin{X: sc.Origin[0], Y: sc.Origin[1]}
	s.Position = sc.Position
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			s.Set(x, y, float64(g.Y)*sc.RescaleSlope+sc.RescaleIntercept)
		}
	}
	return s, sc.SliceMeta, nil
}

// SaveSlice writes s as a 16-bit PNG with its sidecar. Intensities are stored
// with the given intercept and unit slope, rounded and clamped to 16 bits.
func SaveSlice(s *models.Slice, meta models.SliceMeta, imagePath string, intercept float64) error {
	img := image.NewGray16(s.Bounds())
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			v := math.Round(s.At(x, y) - intercept)
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, v)))})
		}
	}

	if err := os.MkdirAll(filepath.Dir(imagePath), 0755); err != nil {
		return fmt.Errorf("error creating slice directory: %w", err)
	}
	if err := imaging.Save(img, imagePath); err != nil {
		return fmt.Errorf("error writing slice image: %w", err)
	}

	sc := Sidecar{
		Spacing:          [2]float64{s.Spacing.X, s.Spacing.Y},
		Origin:           [2]float64{s.Origin.X, s.Origin.Y},
		Position:         s.Position,
		RescaleSlope:     1,
		RescaleIntercept: intercept,
		SliceMeta:        meta,
	}
	data, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("error marshaling sidecar: %w", err)
	}
	if err := os.WriteFile(SidecarPath(imagePath), data, 0644); err != nil {
		return fmt.Errorf("error writing sidecar: %w", err)
	}
	return nil
}

// LoadDirectory loads every PNG slice of dir ordered by the number in its
// file name. Slice indices follow that order.
func LoadDirectory(dir string) (*models.Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imageFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.ToLower(filepath.Ext(e.Name())) == ".png" {
			imageFiles = append(imageFiles, e.Name())
		}
	}
	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no PNG slices found in %s", dir)
	}

	sort.SliceStable(imageFiles, func(i, j int) bool {
		ni, nj := extractNumber(imageFiles[i]), extractNumber(imageFiles[j])
		if ni != nj {
			return ni < nj
		}
		return imageFiles[i] < imageFiles[j]
	})

	vol := &models.Volume{}
	for i, name := range imageFiles {
		s, meta, err := LoadSlice(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		s.Index = i
		vol.Slices = append(vol.Slices, s)
		vol.Meta = append(vol.Meta, meta)
	}
	return vol, nil
}

// extractNumber returns the digits of the file name as an integer, 0 if none
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
