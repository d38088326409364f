package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"menu-scraper/pkg/models"
)

const (
	summaryCSVFilename  = "scrape_results.csv"
	summaryJSONFilename = "scrape_results.json"
)

// SummaryPaths names the run-level summary files a completed run produced.
type SummaryPaths struct {
	CSV  string
	JSON string
}

// WriteSummaries writes the run-level CSV and JSON summaries at the output
// root, one row/element per processed restaurant in input order.
func (s *Store) WriteSummaries(results []models.SiteResult) (SummaryPaths, error) {
	paths := SummaryPaths{
		CSV:  filepath.Join(s.root, summaryCSVFilename),
		JSON: filepath.Join(s.root, summaryJSONFilename),
	}

	if err := s.writeSummaryCSV(paths.CSV, results); err != nil {
		return paths, err
	}
	if err := s.writeSummaryJSON(paths.JSON, results); err != nil {
		return paths, err
	}
	return paths, nil
}

func (s *Store) writeSummaryCSV(path string, results []models.SiteResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating summary CSV '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"uuid", "slug", "name", "website", "found", "num_files", "errors", "skipped"}); err != nil {
		return fmt.Errorf("writing summary CSV header: %w", err)
	}
	for _, res := range results {
		row := []string{
			res.UUID,
			res.Slug,
			res.Name,
			res.Website,
			boolDigit(res.Found),
			strconv.Itoa(len(res.SavedFiles)),
			strings.Join(res.Errors, ";"),
			boolDigit(res.Skipped),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing summary CSV row for '%s': %w", res.Slug, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing summary CSV '%s': %w", path, err)
	}
	return nil
}

func (s *Store) writeSummaryJSON(path string, results []models.SiteResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing summary JSON '%s': %w", path, err)
	}
	return nil
}

// boolDigit renders a flag as "1"/"0" for the CSV.
func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
