// Command tempoplot renders a temporal-point literal's trajectory and its
// derived speed/azimuth time series to PNG images.
//
// Usage:
//
//	go run ./cmd/tempoplot -value '[POINT(0 0)@2001-01-01 00:00:00, POINT(10 10)@2001-01-01 00:01:00]' -out plots/
//
// Flags:
//
//	-value  Temporal-point literal to plot (required)
//	-out    Output directory for the rendered PNGs (default: ".")
//	-srid   SRID to assign if the literal's own prefix SRID is unknown
//	-geo    Parse the literal's points as geodetic (default: false)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/tparse"
	"github.com/kestrel-spatial/tempo/internal/trajectory"
)

func main() {
	value := flag.String("value", "", "temporal-point literal to plot (required)")
	outDir := flag.String("out", ".", "output directory for rendered PNGs")
	srid := flag.Int("srid", 4326, "SRID to assign when the literal's prefix SRID is unknown")
	geodetic := flag.Bool("geo", false, "parse the literal's points as geodetic")
	flag.Parse()

	if *value == "" {
		log.Fatal("tempoplot: -value is required")
	}

	if err := run(*value, *outDir, basevalue.SRID(*srid), *geodetic); err != nil {
		log.Fatalf("tempoplot: %v", err)
	}
}

func run(text, outDir string, srid basevalue.SRID, geodetic bool) error {
	if srid != 0 && !strings.HasPrefix(strings.TrimSpace(text), "SRID=") {
		text = fmt.Sprintf("SRID=%d;%s", srid, text)
	}
	parsed, err := tparse.ParsePoint(text, geodetic, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if parsed.Kind != temporal.KindSequence {
		return fmt.Errorf("tempoplot only plots a single Sequence; got %s", parsed.Kind)
	}
	seq := parsed.Sequence

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := plotTrajectory(seq, filepath.Join(outDir, "trajectory.png")); err != nil {
		return fmt.Errorf("trajectory plot: %w", err)
	}
	if err := plotSpeed(seq, filepath.Join(outDir, "speed.png")); err != nil {
		return fmt.Errorf("speed plot: %w", err)
	}
	if err := plotAzimuth(seq, filepath.Join(outDir, "azimuth.png")); err != nil {
		return fmt.Errorf("azimuth plot: %w", err)
	}
	return nil
}

func plotTrajectory(seq *temporal.Sequence[basevalue.Point], path string) error {
	instants := seq.Instants()
	pts := make(plotter.XYs, len(instants))
	for i, inst := range instants {
		x, y := inst.Value.Get2D()
		pts[i] = plotter.XY{X: x, Y: y}
	}

	p := plot.New()
	p.Title.Text = "Trajectory"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(line, scatter)
	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

func plotSpeed(seq *temporal.Sequence[basevalue.Point], path string) error {
	speed, err := trajectory.Speed(seq)
	if err != nil {
		return err
	}
	return plotScalarSequenceSet(speed, "Speed over time", "distance/time", path)
}

func plotAzimuth(seq *temporal.Sequence[basevalue.Point], path string) error {
	az, ok, err := trajectory.Azimuth(seq)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return plotScalarSequenceSet(az, "Azimuth over time", "radians", path)
}

func plotScalarSequenceSet(ss *temporal.SequenceSet[float64], title, yLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s since start)"
	p.Y.Label.Text = yLabel

	start := ss.StartTimestamp()
	for _, seq := range ss.Sequences() {
		instants := seq.Instants()
		pts := make(plotter.XYs, len(instants))
		for i, inst := range instants {
			pts[i] = plotter.XY{X: float64(inst.Time-start) / 1e6, Y: inst.Value}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		p.Add(line)
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
