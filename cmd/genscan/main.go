// Command genscan generates synthetic magnetometer scan fixtures and their
// transformed survey results. It runs the actual detection engine so the
// transformed output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genscan \
//	  -scans 10 \
//	  -raw-out data/mock/magnetometer_scans.json \
//	  -results-out data/mock/survey_results.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzfadi/deeptime-anomaly-engine/internal/magnetism"
	"github.com/zzfadi/deeptime-anomaly-engine/internal/survey"
)

// Survey site near Fort Mason, San Francisco.
const (
	siteLat = 37.8061
	siteLon = -122.4300

	ambientMagnitude = 40.0
	spikeMagnitude   = 85.0
)

var scanStart = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	scans := flag.Int("scans", 10, "number of scans to generate")
	readings := flag.Int("readings", 60, "readings per scan")
	seed := flag.Int64("seed", 42, "random seed")
	rawOut := flag.String("raw-out", "", "output path for raw scan JSON fixture")
	resultsOut := flag.String("results-out", "", "output path for transformed survey result fixture")
	flag.Parse()

	if *rawOut == "" || *resultsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -results-out")
	}

	// Fix both clocks for reproducible IDs and ProcessedAt timestamps.
	frozen := clockwork.NewFakeClockAt(time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC))
	magnetism.SetClock(frozen)
	survey.SetClock(frozen)
	defer func() {
		magnetism.SetClock(nil)
		survey.SetClock(nil)
	}()

	rng := rand.New(rand.NewSource(*seed))
	engineCfg := survey.EngineConfig{
		Detection: magnetism.DetectionConfig{
			ThresholdDelta:     magnetism.DefaultThresholdDelta,
			BaselineWindowSize: magnetism.DefaultBaselineWindow,
		},
		Grouping: magnetism.GroupingConfig{
			ThresholdMeters: magnetism.DefaultGroupingThresholdMeters,
		},
		MaxGroupingBatch: survey.DefaultMaxGroupingBatch,
	}

	rawScans := make([]survey.RawScanRecord, 0, *scans)
	results := make([]survey.SurveyResult, 0, *scans)

	for i := range *scans {
		rec := generateScan(rng, fmt.Sprintf("scan-%03d", i), *readings)
		rawScans = append(rawScans, rec)

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal scan %s: %w", rec.ScanID, err)
		}
		parsed, err := survey.ParseRawScan(survey.RawEvent{Value: payload})
		if err != nil {
			return fmt.Errorf("parse scan %s: %w", rec.ScanID, err)
		}
		results = append(results, survey.BuildSurveyResult(parsed, engineCfg))
	}

	if err := writeJSON(*rawOut, rawScans); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*resultsOut, results); err != nil {
		return fmt.Errorf("writing results fixture: %w", err)
	}
	log.Printf("wrote results fixture: %s", *resultsOut)

	printStats(results)
	return nil
}

// generateScan simulates a walking survey line: ambient field with sensor
// noise, plus two or three buried-object spike clusters at random offsets
// along the line.
func generateScan(rng *rand.Rand, scanID string, readings int) survey.RawScanRecord {
	recs := make([]survey.RawReadingRecord, 0, readings)

	// Walk north at roughly 1 m per reading.
	const stepDegrees = 1.0 / 111320.0

	spikeAt := map[int]bool{}
	for range 2 + rng.Intn(2) {
		// Keep spikes out of the last baseline window so the background
		// estimate stays clean.
		spikeAt[rng.Intn(readings-magnetism.DefaultBaselineWindow)] = true
	}

	for i := range readings {
		magnitude := ambientMagnitude + rng.NormFloat64()*0.5
		if spikeAt[i] {
			magnitude = spikeMagnitude + rng.NormFloat64()*2.0
		}

		recs = append(recs, survey.RawReadingRecord{
			TimestampMS: scanStart.Add(time.Duration(i) * time.Second).UnixMilli(),
			X:           magnitude,
			Latitude:    siteLat + float64(i)*stepDegrees,
			Longitude:   siteLon + rng.NormFloat64()*stepDegrees*0.1,
			Altitude:    12.0 + rng.NormFloat64()*0.2,
			Accuracy:    3.0,
		})
	}

	return survey.RawScanRecord{
		ScanID:   scanID,
		DeviceID: "mag-unit-07",
		Readings: recs,
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(results []survey.SurveyResult) {
	var totalAnomalies, totalGroups int
	classCounts := map[magnetism.Classification]int{}
	for i := range results {
		r := &results[i]
		totalAnomalies += len(r.Anomalies)
		totalGroups += len(r.Groups)
		for _, a := range r.Anomalies {
			classCounts[a.Classification]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Scans: %d\n", len(results))
	fmt.Printf("Anomalies: %d\n", totalAnomalies)
	fmt.Printf("Groups: %d\n", totalGroups)
	fmt.Printf("By classification:")
	for class, n := range classCounts {
		fmt.Printf(" %s=%d", class, n)
	}
	fmt.Println()

	if len(results) > 0 {
		r := &results[0]
		fmt.Printf("\nFirst scan:\n")
		fmt.Printf("  ScanID: %s\n", r.ScanID)
		fmt.Printf("  Baseline: %g, Threshold: %g\n", r.BaselineMagnitude, r.Threshold)
		fmt.Printf("  Anomalies: %d, Groups: %d\n", len(r.Anomalies), len(r.Groups))
		if len(r.Anomalies) > 0 {
			a := &r.Anomalies[0]
			fmt.Printf("  First anomaly: %s intensity=%.2f class=%s\n", a.ID, a.Intensity, a.Classification)
		}
	}
}
