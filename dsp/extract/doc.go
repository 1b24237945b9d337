// Package extract is the front door from decoded audio samples to chroma
// features. A Recipe selects the extraction method (streaming filterbank or
// one-shot STFT), the ordered feature-chain steps and the optional chroma
// fold; an Extractor runs it.
package extract
