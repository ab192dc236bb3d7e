// Package coverage parses go test coverage profiles and enforces the
// minimum statement coverage gate.
package coverage

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/tools/cover"
)

// Summary holds aggregate statement counts for a coverage profile.
type Summary struct {
	Covered int
	Total   int
}

// Percent returns the statement coverage percentage. A profile without
// statements counts as fully covered.
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Covered) / float64(s.Total) * 100
}

func (s Summary) String() string {
	return fmt.Sprintf("%.1f%% of statements (%d/%d)", s.Percent(), s.Covered, s.Total)
}

// FileSummary pairs a file name with its coverage summary.
type FileSummary struct {
	Name string
	Summary
}

// Parse reads a coverage profile and returns the aggregate summary.
func Parse(path string) (Summary, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return Summary{}, eris.Wrapf(err, "failed to parse coverage profile %s", path)
	}

	var s Summary
	for _, profile := range profiles {
		for _, block := range profile.Blocks {
			s.Total += block.NumStmt
			if block.Count > 0 {
				s.Covered += block.NumStmt
			}
		}
	}
	return s, nil
}

// Files reads a coverage profile and returns per-file summaries, least
// covered first.
func Files(path string) ([]FileSummary, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse coverage profile %s", path)
	}

	files := make([]FileSummary, 0, len(profiles))
	for _, profile := range profiles {
		var s Summary
		for _, block := range profile.Blocks {
			s.Total += block.NumStmt
			if block.Count > 0 {
				s.Covered += block.NumStmt
			}
		}
		files = append(files, FileSummary{Name: profile.FileName, Summary: s})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Percent() != files[j].Percent() {
			return files[i].Percent() < files[j].Percent()
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Gate parses the profile and fails when coverage is below the
// threshold percentage.
func Gate(path string, threshold float64) (Summary, error) {
	s, err := Parse(path)
	if err != nil {
		return s, err
	}

	if s.Percent() < threshold {
		return s, eris.Errorf("coverage %.1f%% is below the required %.1f%%", s.Percent(), threshold)
	}
	return s, nil
}
