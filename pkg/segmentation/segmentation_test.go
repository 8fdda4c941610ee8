package segmentation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/labeling"
)

func fillDisk(s *models.Slice, cx, cy, r int, v float64) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				s.Set(x, y, v)
			}
		}
	}
}

func fillRect(s *models.Slice, x0, y0, x1, y1 int, v float64) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.Set(x, y, v)
		}
	}
}

func quietConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output.Verbose = false
	return cfg
}

func ptr(v float64) *float64 { return &v }

// phantomSlice is a 256x256 body disk of 500 with three radius 3 markers of 800
func phantomSlice() *models.Slice {
	s := models.NewSlice(256, 256)
	fillDisk(s, 128, 150, 50, 500)
	fillDisk(s, 100, 140, 3, 800)
	fillDisk(s, 150, 140, 3, 800)
	fillDisk(s, 128, 180, 3, 800)
	return s
}

func TestCutRow(t *testing.T) {
	assert.Equal(t, 113, CutRow(256, 256, 64, 79))
	assert.Equal(t, 119, CutRow(256, 256, 64, 72.3))
	assert.Equal(t, 113, CutRow(256, 256, 64.9, 79))
	assert.Equal(t, 0, CutRow(256, 256, 0, 300))
	assert.Equal(t, 256, CutRow(256, 256, 500, 79))
	assert.Equal(t, 4, CutRow(5, 10, 1, 0))
}

func TestTableRemoverRequiresHeight(t *testing.T) {
	tr, err := NewTableRemover(79, TableBelow)
	require.NoError(t, err)

	_, err = tr.Remove(models.NewSlice(8, 8), nil)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "tableHeight", cfgErr.Parameter)
}

func TestNewTableRemoverRejectsSide(t *testing.T) {
	_, err := NewTableRemover(79, "left")
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestTableRemoverSides(t *testing.T) {
	s := models.NewSlice(10, 12)
	s.Spacing = models.Spacing{X: 0.7, Y: 0.7}
	s.Origin = models.Origin{X: -3, Y: 4}

	// cut row = 5 + 3 - 2 = 6
	below, _ := NewTableRemover(2, TableBelow)
	m, err := below.Remove(s, ptr(3))
	require.NoError(t, err)
	assert.Equal(t, s.Width, m.Width)
	assert.Equal(t, s.Height, m.Height)
	assert.Equal(t, s.Spacing, m.Spacing)
	assert.Equal(t, s.Origin, m.Origin)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			want := uint8(0)
			if y < 6 {
				want = 1
			}
			require.Equal(t, want, m.At(x, y), "below (%d,%d)", x, y)
		}
	}

	above, _ := NewTableRemover(2, TableAbove)
	m, err = above.Remove(s, ptr(3))
	require.NoError(t, err)
	for y := 0; y < s.Height; y++ {
		want := uint8(0)
		if y >= 6 {
			want = 1
		}
		require.Equal(t, want, m.At(0, y), "above row %d", y)
	}
}

func TestTableRemoverClampsCutRow(t *testing.T) {
	s := models.NewSlice(10, 12)
	tr, _ := NewTableRemover(79, TableBelow)

	m, err := tr.Remove(s, ptr(0))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count())

	m, err = tr.Remove(s, ptr(1000))
	require.NoError(t, err)
	assert.Equal(t, 120, m.Count())
}

func TestApplyMask(t *testing.T) {
	s := models.NewSlice(3, 2)
	for i := range s.Data {
		s.Data[i] = float64(i + 1)
	}
	m := s.NewMask()
	m.Set(1, 0, 1)
	m.Set(2, 1, 1)

	out := ApplyMask(s, m)
	assert.Equal(t, []float64{0, 2, 0, 0, 0, 6}, out.Data)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, s.Data)
}

func TestBodyMaskExtractorFillsAndSelects(t *testing.T) {
	s := models.NewSlice(60, 40)
	fillDisk(s, 20, 20, 12, 300)
	fillDisk(s, 20, 20, 4, 0)
	fillRect(s, 45, 5, 50, 10, 300)

	b, err := NewBodyMaskExtractor("box", [2]int{3, 1}, true)
	require.NoError(t, err)
	labels := b.Execute(s)

	require.Len(t, labels.Labels(), 1)
	assert.NotZero(t, labels.At(20, 20), "interior hole filled")
	assert.Zero(t, labels.At(47, 7), "smaller component dropped")

	b.KeepLargestOnly = false
	assert.Len(t, b.Execute(s).Labels(), 2)
}

func TestBodyMaskExtractorEmpty(t *testing.T) {
	b, err := NewBodyMaskExtractor("box", [2]int{3, 1}, true)
	require.NoError(t, err)

	labels := b.Execute(models.NewSlice(16, 16))
	assert.Empty(t, labels.Labels())
	assert.Len(t, labels.Data, 256)
}

func TestBodyMaskExtractorIdempotent(t *testing.T) {
	b, _ := NewBodyMaskExtractor("box", [2]int{3, 1}, true)
	s := phantomSlice()

	first := b.Execute(s)
	second := b.Execute(s)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("body labels differ between runs (-first +second):\n%s", diff)
	}
}

func TestBodyMask(t *testing.T) {
	s := phantomSlice()
	labels := s.NewLabelMap()
	labels.Data[150*256+128] = 1

	out := BodyMask(s, labels)
	assert.Equal(t, 500.0, out.At(128, 150))
	assert.Equal(t, 0.0, out.At(128, 151))
}

func TestRequireCandidates(t *testing.T) {
	l := models.NewSlice(4, 4).NewLabelMap()
	err := RequireCandidates("holes", l)
	var degenerate *DegenerateInputError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "holes", degenerate.Stage)

	l.Data[5] = 2
	assert.NoError(t, RequireCandidates("holes", l))
}

// roundAndBarSlice holds one round marker and one elongated artifact of the
// same intensity inside a body disk
func roundAndBarSlice() *models.Slice {
	s := models.NewSlice(128, 128)
	fillDisk(s, 64, 64, 40, 500)
	fillDisk(s, 50, 50, 4, 800)
	fillRect(s, 45, 80, 75, 84, 800)
	return s
}

func TestThresholdLevelSetDetectorRejectsElongated(t *testing.T) {
	d, err := NewThresholdLevelSetDetector(quietConfig())
	require.NoError(t, err)

	out, err := d.Execute(roundAndBarSlice())
	require.NoError(t, err)

	records := labeling.ComputeShapeStatistics(out)
	require.Len(t, records, 1)
	assert.InDelta(t, 50, records[0].Centroid[0], 1)
	assert.InDelta(t, 50, records[0].Centroid[1], 1)
	assert.Zero(t, out.At(60, 82))
}

func TestThresholdLevelSetDetectorDegenerate(t *testing.T) {
	d, err := NewThresholdLevelSetDetector(quietConfig())
	require.NoError(t, err)

	out, err := d.Execute(models.NewSlice(32, 32))
	require.NoError(t, err)
	assert.Empty(t, out.Labels())

	s := models.NewSlice(32, 32)
	fillRect(s, 0, 0, 32, 32, 7)
	out, err = d.Execute(s)
	require.NoError(t, err)
	assert.Empty(t, out.Labels())
}

func TestThresholdLevelSetDetectorDarkPolarity(t *testing.T) {
	cfg := quietConfig()
	cfg.Holes.Polarity = config.PolarityDark
	d, err := NewThresholdLevelSetDetector(cfg)
	require.NoError(t, err)

	s := models.NewSlice(96, 96)
	fillDisk(s, 48, 48, 40, 500)
	fillDisk(s, 40, 40, 4, 100)
	out, err := d.Execute(s)
	require.NoError(t, err)

	records := labeling.ComputeShapeStatistics(out)
	require.Len(t, records, 1)
	assert.InDelta(t, 40, records[0].Centroid[0], 1)
	assert.InDelta(t, 40, records[0].Centroid[1], 1)
}

func TestThresholdLevelSetDetectorDeterministic(t *testing.T) {
	d, err := NewThresholdLevelSetDetector(quietConfig())
	require.NoError(t, err)

	s := roundAndBarSlice()
	a, err := d.Execute(s)
	require.NoError(t, err)
	b, err := d.Execute(s)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestNewThresholdLevelSetDetectorValidates(t *testing.T) {
	cfg := quietConfig()
	cfg.Holes.ReconstructionKernel = "hexagon"
	_, err := NewThresholdLevelSetDetector(cfg)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	cfg = quietConfig()
	cfg.Holes.TimeStep = 0
	_, err = NewThresholdLevelSetDetector(cfg)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestOtsuMultiThresholdDetector(t *testing.T) {
	d, err := NewOtsuMultiThresholdDetector(quietConfig())
	require.NoError(t, err)

	s := models.NewSlice(128, 96)
	fillRect(s, 20, 28, 100, 68, 500)
	fillDisk(s, 40, 48, 5, 800)
	fillRect(s, 60, 40, 80, 44, 800)

	out, err := d.Execute(s)
	require.NoError(t, err)

	records := labeling.ComputeShapeStatistics(out)
	require.Len(t, records, 1, "only the disk survives")
	assert.InDelta(t, 40, records[0].Centroid[0], 1e-9)
	assert.InDelta(t, 48, records[0].Centroid[1], 1e-9)

	again, err := d.Execute(s)
	require.NoError(t, err)
	assert.Equal(t, out.Data, again.Data)
}

func TestOtsuMultiThresholdDetectorDegenerate(t *testing.T) {
	d, err := NewOtsuMultiThresholdDetector(quietConfig())
	require.NoError(t, err)

	out, err := d.Execute(models.NewSlice(16, 16))
	require.NoError(t, err)
	assert.Empty(t, out.Labels())
}

func TestNewOtsuMultiThresholdDetectorValidates(t *testing.T) {
	cfg := quietConfig()
	cfg.Otsu.Bins = 3
	_, err := NewOtsuMultiThresholdDetector(cfg)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestPhantomEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end phantom in short mode")
	}

	cfg := quietConfig()
	cfg.Table.Side = config.TableAbove
	s := phantomSlice()

	tr, err := NewTableRemover(cfg.Table.Thickness, cfg.Table.Side)
	require.NoError(t, err)
	tableMask, err := tr.Remove(s, ptr(64))
	require.NoError(t, err)
	for x := 0; x < s.Width; x++ {
		require.Zero(t, tableMask.At(x, 112))
		require.Equal(t, uint8(1), tableMask.At(x, 113))
	}

	b, err := NewBodyMaskExtractor(cfg.Body.Kernel, cfg.Body.ClosingRadius, cfg.Body.KeepLargestOnly)
	require.NoError(t, err)
	body := b.Execute(ApplyMask(s, tableMask))
	require.Len(t, body.Labels(), 1)

	d, err := NewThresholdLevelSetDetector(cfg)
	require.NoError(t, err)
	markers, err := d.Execute(BodyMask(s, body))
	require.NoError(t, err)

	records := labeling.ComputeShapeStatistics(markers)
	require.Len(t, records, 3)

	want := [][2]float64{{100, 140}, {150, 140}, {128, 180}}
	for _, w := range want {
		found := false
		for _, r := range records {
			if math.Hypot(r.Centroid[0]-w[0], r.Centroid[1]-w[1]) <= 2 {
				found = true
				assert.GreaterOrEqual(t, r.Roundness, cfg.Holes.MinRoundness)
			}
		}
		assert.True(t, found, "no marker near %v", w)
	}
}
