// Package blob detects small round markers as keypoints with a classic
// multi-threshold blob detector.
//
// The slice is rescaled to 8 bits and binarised at every level of a threshold
// scan. Connected regions of the blob colour are filtered by area,
// circularity, inertia ratio and convexity; region centres found at several
// levels within MinDistBetweenBlobs are merged and kept when seen at least
// MinRepeatability times.
//
// The default build scans in pure Go. Building with the gocv tag delegates to
// OpenCV's SimpleBlobDetector with the same parameters.
//
// Keypoints are not a label map. Adapter converts them to one for callers
// that need the HoleDetector contract; CV returns the annotated overlay.
package blob
