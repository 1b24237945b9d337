// Package feature implements the generic feature-filter chain applied to
// pitch and chroma vector sequences: logarithmic compression, normalization,
// quantization, and Hann-smoothed downsampling, composed through a named
// step registry so callers can describe a pipeline as an ordered recipe.
package feature
