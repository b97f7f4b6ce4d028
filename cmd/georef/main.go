// Command georef fits an affine transform from reference pairs in a JSON
// file and prints the transform, the overlay bounds and the residual error.
//
// Input format:
//
//	{"page": {"min_x":0,"min_y":0,"max_x":600,"max_y":500},
//	 "pairs": [{"source":{"x":100,"y":100},"target":{"lat":34.73,"lng":136.51}}, ...]}
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
)

type input struct {
	Page  domain.Rectangle            `json:"page"`
	Pairs []domain.CorrespondencePair `json:"pairs"`
}

func main() {
	in := flag.String("in", "-", "Path to pairs JSON (- for stdin)")
	leastSquares := flag.Bool("least-squares", false, "Fit three or more pairs by least squares")
	lat := flag.Float64("lat", 0, "Recenter the overlay on this latitude (requires -lng)")
	lng := flag.Float64("lng", 0, "Recenter the overlay on this longitude (requires -lat)")
	footprint := flag.String("geojson", "", "Write the overlay footprint GeoJSON to this path")
	flag.Parse()

	data, err := readInput(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
	var req input
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input JSON: %v\n", err)
		os.Exit(1)
	}
	if err := georef.ValidateRectangle(req.Page); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid page: %v\n", err)
		os.Exit(1)
	}

	src, dst := domain.SplitPairs(req.Pairs)
	var t domain.AffineTransform
	if *leastSquares {
		t, err = georef.EstimateLeastSquares(src, dst)
	} else {
		t, err = georef.EstimateTransform(src, dst)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Estimation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Transform ===\n")
	fmt.Printf("lng = %.10g*x + %.10g*y + %.10g\n", t.A, t.B, t.E)
	fmt.Printf("lat = %.10g*x + %.10g*y + %.10g\n", t.C, t.D, t.F)
	fmt.Printf("Determinant: %.6g\n", t.Determinant())

	report, err := georef.Accuracy(src, dst, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Accuracy failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n=== Residuals ===\n")
	for i, e := range report.Errors {
		fmt.Printf("  pair %d: (%.1f, %.1f) -> %.3f m\n", i, src[i].X, src[i].Y, e)
	}
	fmt.Printf("Mean error: %.3f m\n", report.MeanErrorMeters)
	fmt.Printf("Max error: %.3f m\n", report.MaxErrorMeters)

	bounds := georef.TransformRectToBounds(req.Page, t)
	placement, err := georef.NewPlacement(bounds, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Placement failed: %v\n", err)
		os.Exit(1)
	}
	recenter, err := recenterRequested(flag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid center: %v\n", err)
		os.Exit(1)
	}
	if recenter {
		center := domain.GeoPoint{Lat: *lat, Lng: *lng}
		if err := georef.ValidateGeoPoint(center); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid center: %v\n", err)
			os.Exit(1)
		}
		placement = georef.MovePlacement(placement, bounds, center)
	}

	b := placement.Bounds
	fmt.Printf("\n=== Overlay ===\n")
	fmt.Printf("North: %.6f  South: %.6f\n", b.North, b.South)
	fmt.Printf("West:  %.6f  East:  %.6f\n", b.West, b.East)
	fmt.Printf("Center: (%.6f, %.6f)\n", placement.Center.Lat, placement.Center.Lng)
	fmt.Printf("Height: %.1f m  Width: %.1f m\n",
		georef.GreatCircleDistance(domain.GeoPoint{Lat: b.South, Lng: b.West}, domain.GeoPoint{Lat: b.North, Lng: b.West}),
		georef.GreatCircleDistance(domain.GeoPoint{Lat: b.South, Lng: b.West}, domain.GeoPoint{Lat: b.South, Lng: b.East}))

	if *footprint != "" {
		fc := georef.Footprint(req.Page, t, placement)
		out, err := fc.MarshalJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode footprint: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*footprint, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Write footprint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nFootprint written to %s\n", *footprint)
	}
}

// recenterRequested reports whether both -lat and -lng were given. Checking
// which flags were set lets (0, 0) be a valid target.
func recenterRequested(fs *flag.FlagSet) (bool, error) {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	switch {
	case seen["lat"] && seen["lng"]:
		return true, nil
	case seen["lat"] || seen["lng"]:
		return false, errors.New("-lat and -lng must be given together")
	}
	return false, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
