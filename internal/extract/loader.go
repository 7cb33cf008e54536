package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadResults reads extractor output from path. The path may be a single
// JSON file holding a []FileExtraction, or a directory of *.json files each
// holding one FileExtraction. Results are returned sorted by FilePath so
// downstream graph construction is deterministic.
func LoadResults(path string) ([]FileExtraction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("extraction input %s: %w", path, err)
	}

	var results []FileExtraction
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(path, e.Name()))
			if err != nil {
				return nil, err
			}
			var fe FileExtraction
			if err := json.Unmarshal(data, &fe); err != nil {
				return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
			}
			results = append(results, fe)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})
	return results, nil
}
