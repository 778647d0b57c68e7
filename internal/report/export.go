package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// ExportCSV writes one row per measured solution with a fixed column order.
func ExportCSV(results []SolutionResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"timestamp", "benchmark", "problem", "solution"}
	for _, key := range AllKeys() {
		header = append(header, string(key))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{
			fmt.Sprintf("%d", res.Timestamp.UnixMilli()),
			fmt.Sprintf("%d", res.Benchmark),
			res.Problem,
			res.Solution,
		}
		for _, key := range AllKeys() {
			record = append(record, fmt.Sprintf("%g", res.Metrics[key]))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// ExportJSON writes the full result set as indented JSON.
func ExportJSON(results []SolutionResult, filename string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportSummary writes a compact best-of summary next to the full exports.
func ExportSummary(results []SolutionResult, prefix string) error {
	best := Best(results)
	if best == nil {
		return nil
	}
	summary := map[string]interface{}{
		"solutions_measured": len(results),
		"best_solution":      best.Solution,
		"best_problem":       best.Problem,
		"best_gflops":        best.GFlops(),
		"best_time_us":       best.TimeUs(),
	}
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(prefix+"_summary.json", b, 0644)
}
