// Package pipeline chains table removal, body extraction and marker detection
// for one slice, and fans a volume of slices out over a pool of workers.
//
// Slices are independent: every worker runs the same stateless stages on its
// own slice and no state is shared between tasks. A failing slice does not
// stop the batch; its error is recorded in its SliceResult.
package pipeline

import (
	"fmt"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/blob"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/labeling"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/segmentation"
)

// SliceResult is the outcome of running the pipeline on one slice. Every map
// is co-registered with the input slice.
type SliceResult struct {
	// Index is the position of the slice in the volume
	Index int

	// Meta is the metadata the slice was processed with
	Meta models.SliceMeta

	// Table is the table mask (1 = kept)
	Table *models.Mask

	// Body holds the body component(s)
	Body *models.LabelMap

	// Labels holds the accepted marker regions
	Labels *models.LabelMap

	// Markers describes every accepted marker, sorted by label
	Markers []labeling.ShapeRecord

	// Err is set when the slice could not be processed
	Err error
}

// Processor runs the segmentation stages configured by a Config
type Processor struct {
	cfg   *config.Config
	table *segmentation.TableRemover
	body  *segmentation.BodyMaskExtractor
	holes segmentation.HoleDetector
}

// NewProcessor validates cfg and builds every stage
func NewProcessor(cfg *config.Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &segmentation.ConfigurationError{Parameter: "config", Reason: err.Error()}
	}

	table, err := segmentation.NewTableRemover(cfg.Table.Thickness, cfg.Table.Side)
	if err != nil {
		return nil, err
	}

	body, err := segmentation.NewBodyMaskExtractor(cfg.Body.Kernel, cfg.Body.ClosingRadius, cfg.Body.KeepLargestOnly)
	if err != nil {
		return nil, err
	}
	body.Verbose = cfg.Output.Verbose

	holes, err := NewHoleDetector(cfg)
	if err != nil {
		return nil, err
	}

	return &Processor{cfg: cfg, table: table, body: body, holes: holes}, nil
}

// NewHoleDetector returns the detector variant selected by holes.variant
func NewHoleDetector(cfg *config.Config) (segmentation.HoleDetector, error) {
	switch cfg.Holes.Variant {
	case config.VariantLevelSet:
		return segmentation.NewThresholdLevelSetDetector(cfg)
	case config.VariantOtsu:
		return segmentation.NewOtsuMultiThresholdDetector(cfg)
	case config.VariantBlob:
		d, err := blob.NewDetector(blob.ParamsFromConfig(cfg))
		if err != nil {
			return nil, &segmentation.ConfigurationError{Parameter: "blob", Reason: err.Error()}
		}
		return &blob.Adapter{Detector: d}, nil
	default:
		return nil, &segmentation.ConfigurationError{
			Parameter: "holes.variant",
			Reason:    fmt.Sprintf("unknown variant %q", cfg.Holes.Variant),
		}
	}
}

// RunSlice runs table removal, body extraction and marker detection on s
func (p *Processor) RunSlice(s *models.Slice, meta models.SliceMeta) SliceResult {
	res := SliceResult{Index: s.Index, Meta: meta}

	table, err := p.table.Remove(s, meta.TableHeight)
	if err != nil {
		res.Err = fmt.Errorf("slice %d: table removal: %w", s.Index, err)
		return res
	}
	res.Table = table

	res.Body = p.body.Execute(segmentation.ApplyMask(s, table))

	labels, err := p.holes.Execute(segmentation.BodyMask(s, res.Body))
	if err != nil {
		res.Err = fmt.Errorf("slice %d: marker detection: %w", s.Index, err)
		return res
	}
	res.Labels = labels
	res.Markers = labeling.ComputeShapeStatistics(labels)

	if p.cfg.Processing.RequireMarkers {
		if err := segmentation.RequireCandidates(p.cfg.Holes.Variant, labels); err != nil {
			res.Err = fmt.Errorf("slice %d: %w", s.Index, err)
		}
	}

	if p.cfg.Output.Verbose {
		monitoring.Logf("slice %d: %d body pixels, %d markers", s.Index, res.Body.Mask().Count(), len(res.Markers))
	}
	return res
}
