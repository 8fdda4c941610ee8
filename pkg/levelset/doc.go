// Package levelset implements the numerical pieces of shape-detection level
// set segmentation on 2-D slices:
//
//   - recursive (Young–van Vliet) Gaussian smoothing and gradient magnitude,
//     used to build the feature (speed) image
//   - a signed distance map from the iso-contour of a binary image, used as
//     the initial level set
//   - explicit evolution of the level set under feature-weighted propagation
//     and curvature for a fixed number of iterations
//
// The level set is positive inside the segmented region. Distances and
// derivatives honour the slice spacing.
//
// Evolution always runs the full iteration budget; there is no convergence
// test. The RMS change of the last iteration is reported for diagnostics only.
package levelset
