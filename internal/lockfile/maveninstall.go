package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
)

// MavenPackage is the per-coordinate metadata carried by the Maven lock file.
type MavenPackage struct {
	URL string `json:"url"`
}

// MavenTable maps a resolved Maven coordinate to its metadata. It is a plain
// lookup table; coordinates come from the lock file as-is and are never
// re-derived here.
type MavenTable map[string]MavenPackage

// LoadMavenInstall reads a Maven lock file (maven_install.json) into a lookup
// table for manifest-mode URL resolution.
func LoadMavenInstall(path string) (MavenTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read maven lock file: %w", err)
	}
	var table MavenTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("cannot parse maven lock file %q: %w", path, err)
	}
	return table, nil
}

// PackagesUsed is the manifest produced by the build graph: the target being
// described plus every remote package reference it pulls in.
type PackagesUsed struct {
	TopLevelTarget string   `json:"top_level_target"`
	Packages       []string `json:"packages"`
}

// LoadPackagesUsed reads a packages_used manifest file.
func LoadPackagesUsed(path string) (*PackagesUsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read packages_used file: %w", err)
	}
	var manifest PackagesUsed
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("cannot parse packages_used file %q: %w", path, err)
	}
	return &manifest, nil
}
