// Command chromagram extracts chroma features from a WAV file and prints
// them as CSV, one row per analysis frame.
//
// Usage:
//
//	chromagram [flags] input.wav
//
// Examples:
//
//	chromagram song.wav
//	chromagram -tuning 443 -o song.csv song.wav
//	chromagram -method stft -fft 8192 song.wav
//	chromagram -smooth 21 -downsample 5 song.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-chroma/dsp/extract"
	"github.com/cwbudde/algo-chroma/dsp/feature"
)

const chunkSize = 65536

func main() {
	log.SetFlags(0)
	log.SetPrefix("chromagram: ")

	tuning := flag.Float64("tuning", 440, "tuning reference frequency for A4 in Hz")
	method := flag.String("method", "filterbank", "extraction method: filterbank or stft")
	fftSize := flag.Int("fft", 8192, "FFT size for the stft method")
	hop := flag.Int("hop", 0, "hop in samples for the stft method (0 = half the FFT size)")
	norm := flag.String("norm", "l2", "normalization mode: max, l1 or l2")
	smooth := flag.Int("smooth", 0, "temporal smoothing window in frames (0 = off)")
	downsample := flag.Int("downsample", 1, "feature downsampling factor used with -smooth")
	quantize := flag.Bool("quantize", false, "apply the five-level chroma quantizer")
	rawPitch := flag.Bool("pitch", false, "emit 128 pitch energies per row instead of 12 chroma values")
	output := flag.String("o", "", "output CSV path (default stdout)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chromagram [flags] input.wav\n\n")
		fmt.Fprintf(os.Stderr, "Extracts chroma features from a WAV file as CSV.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	samples, sampleRate, err := decodeWAV(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	recipe := extract.Recipe{
		Method:     extract.Method(*method),
		SampleRate: sampleRate,
		TuningHz:   *tuning,
		STFT:       extract.STFTParams{FFTSize: *fftSize, Hop: *hop},
		Steps:      buildSteps(*norm, *smooth, *downsample, *quantize),
		FoldChroma: !*rawPitch,
	}

	buf, err := run(recipe, samples)
	if err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	if err := writeCSV(out, buf); err != nil {
		log.Fatal(err)
	}
}

// buildSteps assembles the feature chain from the command-line switches:
// log compression, normalization, optional quantization, optional smoothing.
func buildSteps(norm string, smooth, downsample int, quantize bool) []feature.StepConfig {
	steps := []feature.StepConfig{
		{Name: feature.StepCompression},
		{Name: feature.StepNormalization, Str: map[string]string{"mode": norm}},
	}

	if quantize {
		steps = append(steps, feature.StepConfig{Name: feature.StepQuantization})
	}

	if smooth > 0 {
		steps = append(steps, feature.StepConfig{
			Name: feature.StepSmoothing,
			Num: map[string]float64{
				"window": float64(smooth),
				"factor": float64(downsample),
			},
		})
	}

	return steps
}

// run feeds the decoded samples through the recipe. The filterbank method
// streams in fixed chunks; the stft method takes the whole signal at once.
func run(recipe extract.Recipe, samples []float64) (*feature.Buffer, error) {
	e, err := extract.New(recipe)
	if err != nil {
		return nil, err
	}

	if recipe.Method == extract.MethodSTFT {
		return e.ExtractAll(samples)
	}

	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}

		if _, err := e.Process(samples[start:end]); err != nil {
			return nil, err
		}
	}

	return e.Finish()
}

// decodeWAV reads a WAV file and returns its samples downmixed to mono in
// [-1, 1] along with the sample rate.
func decodeWAV(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("no channels in %s", path)
	}

	scale := 1.0 / float64(int64(1)<<(decoder.BitDepth-1))
	frames := len(pcm.Data) / channels

	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch])
		}
		mono[i] = sum * scale / float64(channels)
	}

	return mono, float64(pcm.Format.SampleRate), nil
}

// writeCSV emits one row per frame: the frame's start time in seconds
// followed by its feature values.
func writeCSV(out *os.File, buf *feature.Buffer) error {
	for i := 0; i < buf.Len(); i++ {
		if _, err := fmt.Fprintf(out, "%.3f", float64(i)/buf.Rate()); err != nil {
			return err
		}

		for _, v := range buf.Vector(i) {
			if _, err := fmt.Fprintf(out, ",%.6g", v); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}

	return nil
}
