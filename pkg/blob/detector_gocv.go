//go:build gocv

package blob

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

type cvDetector struct {
	p Params
}

// NewDetector returns a detector backed by OpenCV's SimpleBlobDetector
func NewDetector(p Params) (Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &cvDetector{p: p}, nil
}

func (d *cvDetector) params() gocv.SimpleBlobDetectorParams {
	p := d.p
	cp := gocv.NewSimpleBlobDetectorParams()
	cp.SetMinThreshold(p.MinThreshold)
	cp.SetMaxThreshold(p.MaxThreshold)
	cp.SetThresholdStep(p.ThresholdStep)
	cp.SetMinRepeatability(p.MinRepeatability)
	cp.SetMinDistBetweenBlobs(p.MinDistBetweenBlobs)

	cp.SetFilterByColor(p.FilterByColor)
	cp.SetBlobColor(int(p.BlobColor))

	cp.SetFilterByArea(p.FilterByArea)
	cp.SetMinArea(p.MinArea)
	cp.SetMaxArea(p.MaxArea)

	cp.SetFilterByCircularity(p.FilterByCircularity)
	cp.SetMinCircularity(p.MinCircularity)
	cp.SetMaxCircularity(p.MaxCircularity)

	cp.SetFilterByInertia(p.FilterByInertia)
	cp.SetMinInertiaRatio(p.MinInertiaRatio)
	cp.SetMaxInertiaRatio(p.MaxInertiaRatio)

	cp.SetFilterByConvexity(p.FilterByConvexity)
	cp.SetMinConvexity(p.MinConvexity)
	cp.SetMaxConvexity(p.MaxConvexity)
	return cp
}

// Detect runs SimpleBlobDetector on img
func (d *cvDetector) Detect(img *image.Gray) ([]KeyPoint, error) {
	b := img.Bounds()
	pix := make([]byte, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		pix = append(pix, img.Pix[y*img.Stride:y*img.Stride+b.Dx()]...)
	}

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8U, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap image for OpenCV: %w", err)
	}
	defer mat.Close()

	detector := gocv.NewSimpleBlobDetectorWithParams(d.params())
	defer detector.Close()

	var out []KeyPoint
	for _, kp := range detector.Detect(mat) {
		out = append(out, KeyPoint{X: kp.X, Y: kp.Y, Size: kp.Size})
	}
	return out, nil
}
