package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is the optional specter.toml project manifest committed at the
// repository root. It declares project facts the scanner cannot infer.
type Manifest struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`

	Scan struct {
		// Ignore lists path prefixes excluded from staleness checks and
		// line counting, in addition to .gitignore.
		Ignore []string `toml:"ignore"`
	} `toml:"scan"`

	BusFactor struct {
		// CoreAreas names areas treated as core when ranking criticality.
		CoreAreas []string `toml:"coreAreas"`
	} `toml:"busfactor"`
}

// LoadManifest reads <root>/specter.toml. The second return value reports
// whether a manifest was present; a missing manifest is not an error.
func LoadManifest(rootDir string) (*Manifest, bool, error) {
	path := filepath.Join(rootDir, "specter.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, false, nil
		}
		return nil, false, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, true, err
	}
	return &m, true, nil
}
