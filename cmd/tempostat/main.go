// Command tempostat builds a selectivity histogram from a sample of
// temporal-point literals and persists it to a statistics catalog.
//
// Usage:
//
//	go run ./cmd/tempostat -sample trips.txt -relation fleet.position -db stats.db
//	go run ./cmd/tempostat -db stats.db -serve :8090
//
// Flags:
//
//	-sample   Path to a file with one temporal-point literal per line
//	-relation Label to save the built histogram under (required with -sample)
//	-db       Path to the statistics catalog database (default: "tempostat.db")
//	-cells    Target number of histogram cells (default: 64)
//	-serve    If set, mount the catalog's admin browser at this address and block
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/selectivity"
	"github.com/kestrel-spatial/tempo/internal/statcat"
	"github.com/kestrel-spatial/tempo/internal/tbox"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/tparse"
)

func main() {
	samplePath := flag.String("sample", "", "path to a file with one temporal-point literal per line")
	relation := flag.String("relation", "", "label to save the built histogram under")
	dbPath := flag.String("db", "tempostat.db", "path to the statistics catalog database")
	cells := flag.Int("cells", 64, "target number of histogram cells")
	serveAddr := flag.String("serve", "", "if set, mount the catalog's admin browser at this address and block")
	flag.Parse()

	cat, err := statcat.Open(*dbPath)
	if err != nil {
		log.Fatalf("tempostat: open catalog: %v", err)
	}
	defer cat.Close()

	if *samplePath != "" {
		if *relation == "" {
			log.Fatal("tempostat: -relation is required with -sample")
		}
		if err := buildAndSave(*samplePath, *relation, cat, *cells); err != nil {
			log.Fatalf("tempostat: %v", err)
		}
		log.Printf("tempostat: saved histogram %q", *relation)
	}

	if *serveAddr != "" {
		serveAdmin(cat, *serveAddr)
	}
}

func buildAndSave(samplePath, relation string, cat *statcat.Catalog, cells int) error {
	boxes, err := readSampleBoxes(samplePath)
	if err != nil {
		return fmt.Errorf("read sample: %w", err)
	}

	axes := []selectivity.Axis{selectivity.AxisX, selectivity.AxisY, selectivity.AxisT}
	hist, err := selectivity.Build(boxes, axes, cells)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}

	axisNames := make([]string, len(axes))
	for i, a := range axes {
		axisNames[i] = a.Name
	}
	return statcat.SaveHistogram(cat, relation, axisNames, hist, time.Now().Unix())
}

func readSampleBoxes(path string) ([]tbox.Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var boxes []tbox.Box
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := tparse.ParsePoint(line, false, temporal.PointOps, temporal.BuildPointTrajectory)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", line, err)
		}
		boxes = append(boxes, boundingBoxOf(parsed))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return boxes, nil
}

// boundingBoxOf extracts the bounding box spec.md §4.A assigns to whichever
// variant a literal parses to — every variant exposes one via BBox, except
// a bare Instant, which computes it on demand through PointOps.
func boundingBoxOf(parsed tparse.Parsed[basevalue.Point]) tbox.Box {
	switch parsed.Kind {
	case temporal.KindInstant:
		return parsed.Instant.BBox(temporal.PointOps)
	case temporal.KindInstantSet:
		return parsed.InstantSet.BBox()
	case temporal.KindSequence:
		return parsed.Sequence.BBox()
	default:
		return parsed.SequenceSet.BBox()
	}
}

func serveAdmin(cat *statcat.Catalog, addr string) {
	mux := http.NewServeMux()
	if err := cat.AttachAdminRoutes(mux, "/admin/"); err != nil {
		log.Fatalf("tempostat: attach admin routes: %v", err)
	}
	log.Printf("tempostat: serving catalog admin browser on %s/admin/", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("tempostat: serve: %v", err)
	}
}
