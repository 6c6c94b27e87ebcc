// Command datainfo inspects an SPCAM training-data archive. It loads a
// batch generator from the given configuration, reports sample counts,
// feature widths and batch counts, times a number of batch pulls, and can
// render per-variable histograms of the normalized features.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/convectml/subgrid/datasets"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	var (
		dataDir  = flag.String("data", "", "directory holding the archives (prepended verbatim to file names)")
		outFile  = flag.String("out", "", "model-output archive file name")
		meanFile = flag.String("mean", "", "mean archive file name (default "+datasets.DefaultMeanFile+")")
		stdFile  = flag.String("std", "", "std archive file name (default "+datasets.DefaultStdFile+")")
		features = flag.String("features", "", "comma-separated feature variable names, in order")
		conv     = flag.Bool("conv", false, "split features into leveled/scalar convolution inputs")
		double   = flag.Bool("float64", false, "load arrays in double precision")
		batch    = flag.Int("batch", 512, "batch size")
		mode     = flag.String("shuffle-mode", datasets.ShuffleBatches, `shuffle granularity: "batches" or per-sample`)
		seed     = flag.Int64("seed", 0, "shuffle seed (0 keeps the time-based default)")
		nPull    = flag.Int("nbatches", 32, "number of batches to pull for timing")
		histPre  = flag.String("hist", "", "if set, write per-variable histograms of the normalized features as PNGs with this path prefix")
	)
	flag.Parse()

	if *outFile == "" || *features == "" {
		flag.Usage()
		log.Fatal("both -out and -features are required")
	}
	if *nPull <= 0 {
		log.Fatal("-nbatches must be positive")
	}

	dtype := datasets.Float32
	if *double {
		dtype = datasets.Float64
	}
	cfg := datasets.Config{
		DataDir:     *dataDir,
		OutputFile:  *outFile,
		MeanFile:    *meanFile,
		StdFile:     *stdFile,
		Features:    strings.Split(*features, ","),
		Convolution: *conv,
		DType:       dtype,
	}

	start := time.Now()
	g, err := datasets.NewDataGenerator(datasets.GeneratorConfig{
		Config:      cfg,
		BatchSize:   *batch,
		ShuffleMode: *mode,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d samples in %v", g.NumSamples(), time.Since(start))
	if *seed != 0 {
		g.Seed(*seed)
	}

	names, widths := g.FeatureNames(), g.FeatureWidths()
	total := 0
	for i, n := range names {
		log.Printf("feature %-12s width %d", n, widths[i])
		total += widths[i]
	}
	log.Printf("total feature width %d, %d batches of %d samples per pass",
		total, g.NumBatches(), *batch)

	b := g.Generate(true)
	start = time.Now()
	var last *datasets.Batch
	for i := 0; i < *nPull; i++ {
		last = b.Next()
	}
	elapsed := time.Since(start)
	log.Printf("pulled %d batches in %v (%v per batch)",
		*nPull, elapsed, elapsed/time.Duration(*nPull))
	for _, x := range last.Inputs() {
		log.Printf("input shape %v", x.Shape)
	}
	log.Printf("target shape %v", last.Y.Shape)

	if *histPre != "" {
		if *conv {
			log.Fatal("-hist requires the flat feature layout (omit -conv)")
		}
		if err := writeHistograms(cfg, *histPre); err != nil {
			log.Fatal(err)
		}
	}
}

// writeHistograms renders one histogram of normalized values per feature
// variable, reading the full matrix through the one-shot DataSet loader.
func writeHistograms(cfg datasets.Config, prefix string) error {
	ds, err := datasets.NewDataSet(cfg)
	if err != nil {
		return err
	}
	x := ds.X()
	names, widths := ds.FeatureNames(), ds.FeatureWidths()
	totalWidth := x.Shape[1]

	off := 0
	for i, name := range names {
		vals := make(plotter.Values, 0, ds.NumSamples()*widths[i])
		for s := 0; s < ds.NumSamples(); s++ {
			for k := 0; k < widths[i]; k++ {
				vals = append(vals, x.At(s*totalWidth+off+k))
			}
		}
		off += widths[i]

		h, err := plotter.NewHist(vals, 50)
		if err != nil {
			return fmt.Errorf("histogram for %s: %w", name, err)
		}
		p := plot.New()
		p.Title.Text = name + " (normalized)"
		p.X.Label.Text = "value"
		p.Y.Label.Text = "count"
		p.Add(h)

		out := fmt.Sprintf("%s%s.png", prefix, name)
		if err := p.Save(6*vg.Inch, 4*vg.Inch, out); err != nil {
			return fmt.Errorf("saving %s: %w", out, err)
		}
		log.Printf("wrote %s", out)
	}
	return nil
}
