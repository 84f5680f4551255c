// Command featurescan computes windowed signal features offline.
//
// Usage:
//
//	featurescan [flags] [file]
//
// It reads one sample per line from the given file (or stdin), pushes the
// series through a feature pipeline, and prints the final feature vector.
// With -synth it generates a sine-plus-noise series instead of reading one.
//
// Examples:
//
//	featurescan -window 256 samples.txt
//	cat samples.txt | featurescan -transforms firstDifference,winsorize
//	featurescan -synth -synth-len 2048 -fs 1000 -signal-hz 125
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-features/feature"
)

func main() {
	windowSize := flag.Int("window", 256, "pipeline window size in samples")
	history := flag.Int("history", 60, "depth of the slope/volatility z-score history")
	transforms := flag.String("transforms", "firstDifference", "comma-separated transforms: firstDifference, logReturn, winsorize")
	fs := flag.Float64("fs", 1.0, "sample rate in Hz")
	segLen := flag.Int("seg-len", 64, "Welch segment length")
	overlap := flag.Int("overlap", 32, "Welch segment overlap")
	fMaxRatio := flag.Float64("fmax-ratio", 1.0, "upper bound of the slope fit band as a fraction of Nyquist")
	kMax := flag.Int("kmax", 8, "Higuchi maximum stride")
	synth := flag.Bool("synth", false, "generate a sine-plus-noise series instead of reading input")
	synthLen := flag.Int("synth-len", 2048, "synthetic series length")
	signalHz := flag.Float64("signal-hz", 5.0, "synthetic sine frequency in Hz")
	noiseSigma := flag.Float64("noise", 0.1, "synthetic noise standard deviation")
	seed := flag.Int64("seed", 1, "synthetic noise seed")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: featurescan [flags] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Computes windowed signal features from a column of samples.\n")
		fmt.Fprintf(os.Stderr, "Reads from the given file, or stdin when none is given.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  featurescan -window 256 samples.txt\n")
		fmt.Fprintf(os.Stderr, "  featurescan -synth -synth-len 2048 -fs 1000 -signal-hz 125\n")
	}
	flag.Parse()

	var (
		samples []float64
		err     error
	)

	if *synth {
		samples = synthesize(*synthLen, *fs, *signalHz, *noiseSigma, *seed)
	} else {
		samples, err = readSamples(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if len(samples) < *windowSize {
		fmt.Fprintf(os.Stderr, "error: %d samples read, need at least the window size (%d)\n", len(samples), *windowSize)
		os.Exit(1)
	}

	pipe, err := buildPipeline(*windowSize, *history, *transforms, *fs, *segLen, *overlap, *fMaxRatio, *kMax)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ts := time.Unix(0, 0)
	interval := time.Duration(float64(time.Second) / *fs)

	var last feature.Vector
	ready := 0
	for _, v := range samples {
		if vec, ok := pipe.TryPush(v, ts); ok {
			last = *vec
			ready++
		}
		ts = ts.Add(interval)
	}

	printVector(os.Stdout, &last, len(samples), ready)
}

func synthesize(length int, fs, signalHz, noiseSigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	step := 2 * math.Pi * signalHz / fs

	out := make([]float64, length)
	for i := range out {
		out[i] = math.Sin(step*float64(i)) + rng.NormFloat64()*noiseSigma
	}
	return out
}

// readSamples parses one float per line, ignoring blank lines and lines
// starting with '#'.
func readSamples(path string) ([]float64, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var samples []float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

func buildPipeline(windowSize, history int, transformList string, fs float64, segLen, overlap int, fMaxRatio float64, kMax int) (*feature.Pipeline, error) {
	pipe, err := feature.New(windowSize, feature.WithHistoryForZ(history))
	if err != nil {
		return nil, err
	}

	for _, name := range strings.Split(transformList, ",") {
		switch strings.TrimSpace(name) {
		case "", "none":
		case "firstDifference":
			pipe.Use(feature.FirstDifference{})
		case "logReturn":
			pipe.Use(feature.LogReturn{})
		case "winsorize":
			pipe.Use(feature.DefaultWinsorize())
		default:
			return nil, fmt.Errorf("unknown transform %q", name)
		}
	}

	slope, err := feature.NewSpectralSlopeExtractor(fs, segLen, overlap, fMaxRatio)
	if err != nil {
		return nil, err
	}

	shape, err := feature.NewSpectralShapeExtractor(fs, segLen, overlap, slope)
	if err != nil {
		return nil, err
	}

	pipe.UseExtractor(feature.HurstDFAExtractor{}).
		UseExtractor(feature.NewHiguchiExtractor(kMax)).
		UseExtractor(slope).
		UseExtractor(shape)

	return pipe, nil
}

func printVector(w io.Writer, vec *feature.Vector, total, ready int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "samples\t%d\n", total)
	fmt.Fprintf(tw, "ready ticks\t%d\n", ready)
	fmt.Fprintf(tw, "window size\t%d\n", vec.WindowSize)
	fmt.Fprintf(tw, "hurst\t%.4f\n", vec.Hurst)
	fmt.Fprintf(tw, "higuchi fd\t%.4f\n", vec.HiguchiFD)
	fmt.Fprintf(tw, "spectral beta\t%.4f\n", vec.SpectralBeta)
	fmt.Fprintf(tw, "spectral entropy\t%.4f\n", vec.SpectralEntropy)
	fmt.Fprintf(tw, "spectral flatness\t%.4f\n", vec.SpectralFlatness)
	fmt.Fprintf(tw, "top peak\t%.4f Hz\n", vec.TopPeakHz)
	fmt.Fprintf(tw, "peak power ratio\t%.4f\n", vec.PeakPowerRatio)
	fmt.Fprintf(tw, "slope z\t%.4f\n", vec.SlopeZ)
	fmt.Fprintf(tw, "vol z\t%.4f\n", vec.VolZ)
	fmt.Fprintf(tw, "fit r2\t%.4f\n", vec.FitR2)

	tw.Flush()
}
