// Package morphology implements binary mathematical morphology on models.Mask:
// flat structuring elements, dilation and erosion, opening and closing,
// opening and closing by reconstruction, and hole filling.
//
// All operations return new masks; inputs are never modified. Erosion treats
// pixels outside the image as foreground so that regions touching the border
// are not eaten away from the image edge.
package morphology
