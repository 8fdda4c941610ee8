package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/blob"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/segmentation"
)

var phantomMarkers = [][2]float64{{100, 140}, {150, 140}, {128, 180}}

func fillDisk(s *models.Slice, cx, cy, r int, v float64) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				s.Set(x, y, v)
			}
		}
	}
}

func phantom(index int) *models.Slice {
	s := models.NewSlice(256, 256)
	s.Index = index
	fillDisk(s, 128, 150, 50, 500)
	for _, m := range phantomMarkers {
		fillDisk(s, int(m[0]), int(m[1]), 3, 800)
	}
	return s
}

func testConfig(variant string) *config.Config {
	monitoring.SetLogger(nil)
	cfg := config.DefaultConfig()
	cfg.Output.Verbose = false
	cfg.Table.Side = config.TableAbove
	cfg.Holes.Variant = variant
	cfg.Processing.NumCores = 2
	return cfg
}

func meta(height float64) models.SliceMeta {
	return models.SliceMeta{TableHeight: &height}
}

func assertPhantomMarkers(t *testing.T, res SliceResult) {
	t.Helper()
	require.NoError(t, res.Err)
	require.Len(t, res.Markers, 3)
	for _, want := range phantomMarkers {
		found := false
		for _, m := range res.Markers {
			if math.Hypot(m.Centroid[0]-want[0], m.Centroid[1]-want[1]) <= 2 {
				found = true
			}
		}
		assert.True(t, found, "no marker near %v", want)
	}
}

func TestNewHoleDetector(t *testing.T) {
	cfg := testConfig(config.VariantLevelSet)
	d, err := NewHoleDetector(cfg)
	require.NoError(t, err)
	assert.IsType(t, &segmentation.ThresholdLevelSetDetector{}, d)

	cfg.Holes.Variant = config.VariantOtsu
	d, err = NewHoleDetector(cfg)
	require.NoError(t, err)
	assert.IsType(t, &segmentation.OtsuMultiThresholdDetector{}, d)

	cfg.Holes.Variant = config.VariantBlob
	d, err = NewHoleDetector(cfg)
	require.NoError(t, err)
	assert.IsType(t, &blob.Adapter{}, d)

	cfg.Holes.Variant = "hough"
	_, err = NewHoleDetector(cfg)
	var cfgErr *segmentation.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewProcessorRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(config.VariantOtsu)
	cfg.Processing.NumCores = 0
	_, err := NewProcessor(cfg)
	var cfgErr *segmentation.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRunSliceOtsu(t *testing.T) {
	p, err := NewProcessor(testConfig(config.VariantOtsu))
	require.NoError(t, err)

	res := p.RunSlice(phantom(7), meta(64))
	assert.Equal(t, 7, res.Index)
	assert.Len(t, res.Body.Labels(), 1)
	assertPhantomMarkers(t, res)
}

func TestRunSliceLevelSet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping level set phantom in short mode")
	}
	p, err := NewProcessor(testConfig(config.VariantLevelSet))
	require.NoError(t, err)

	res := p.RunSlice(phantom(0), meta(64))
	assertPhantomMarkers(t, res)
	for _, m := range res.Markers {
		assert.GreaterOrEqual(t, m.Roundness, 0.9)
	}
}

func TestRunSliceMissingTableHeight(t *testing.T) {
	p, err := NewProcessor(testConfig(config.VariantOtsu))
	require.NoError(t, err)

	res := p.RunSlice(phantom(3), models.SliceMeta{})
	var cfgErr *segmentation.ConfigurationError
	require.True(t, errors.As(res.Err, &cfgErr))
	assert.Equal(t, "tableHeight", cfgErr.Parameter)
	assert.Nil(t, res.Labels)
}

func TestRunSliceRequireMarkers(t *testing.T) {
	cfg := testConfig(config.VariantOtsu)
	blank := models.NewSlice(64, 64)

	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	res := p.RunSlice(blank, meta(0))
	require.NoError(t, res.Err)
	assert.Empty(t, res.Markers)

	cfg.Processing.RequireMarkers = true
	p, err = NewProcessor(cfg)
	require.NoError(t, err)
	res = p.RunSlice(blank, meta(0))
	var degenerate *segmentation.DegenerateInputError
	assert.True(t, errors.As(res.Err, &degenerate))
}

func TestProcessVolume(t *testing.T) {
	p, err := NewProcessor(testConfig(config.VariantOtsu))
	require.NoError(t, err)

	vol := &models.Volume{
		Slices: []*models.Slice{phantom(0), phantom(1), phantom(2), phantom(3)},
		Meta:   []models.SliceMeta{meta(64), meta(64), {}, meta(64)},
	}
	results := p.ProcessVolume(vol)

	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
	}
	assertPhantomMarkers(t, results[0])
	assertPhantomMarkers(t, results[3])
	assert.Equal(t, results[0].Labels.Data, results[1].Labels.Data)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Index)
}

func TestProcessVolumeEmpty(t *testing.T) {
	p, err := NewProcessor(testConfig(config.VariantOtsu))
	require.NoError(t, err)
	assert.Empty(t, p.ProcessVolume(&models.Volume{}))
}
