// Package chroma folds 128-entry pitch energy vectors into 12-entry chroma
// vectors by summing octave-equivalent pitches.
package chroma
