package models

import "image"

// Connectivity selects the pixel adjacency used by region operations
type Connectivity int

const (
	// FaceConnected joins pixels sharing an edge (4-connectivity)
	FaceConnected Connectivity = 4
	// FullyConnected joins pixels sharing an edge or a corner (8-connectivity)
	FullyConnected Connectivity = 8
)

var (
	faceOffsets  = []image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	fullyOffsets = []image.Point{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

// Offsets returns the neighbour offsets for this connectivity
func (c Connectivity) Offsets() []image.Point {
	if c == FullyConnected {
		return fullyOffsets
	}
	return faceOffsets
}

// Dual returns the complementary connectivity used for the background
func (c Connectivity) Dual() Connectivity {
	if c == FullyConnected {
		return FaceConnected
	}
	return FullyConnected
}
