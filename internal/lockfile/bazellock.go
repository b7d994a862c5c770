package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/StinkyLord/bazel-sbom-builder/internal/model"
)

// Module-extension identifiers inside MODULE.bazel.lock. These are part of
// the Bazel lock contract, not something this tool derives.
const (
	mavenExtension     = "@@rules_jvm_external~//:extensions.bzl%maven"
	pipExtension       = "@@rules_python~//python/extensions:pip.bzl%pip"
	pythonExtension    = "@@rules_python~//python/extensions:python.bzl%python"
	generalPartitionID = "general"
)

// BazelLock is the subset of MODULE.bazel.lock this tool reads.
type BazelLock struct {
	ModuleExtensions map[string]Extension `json:"moduleExtensions"`
}

// Extension maps a partition key to its repo specs. The maven and python
// extensions use a single "general" partition; the pip extension is
// partitioned per os/arch.
type Extension map[string]Partition

// Partition holds the repositories an extension generated for one partition.
type Partition struct {
	GeneratedRepoSpecs map[string]RepoSpec `json:"generatedRepoSpecs"`
}

// RepoSpec is one generated external repository.
type RepoSpec struct {
	Attributes Attributes `json:"attributes"`
}

// Attributes are the repo spec attributes the three walks care about. Other
// attributes are ignored on decode.
type Attributes struct {
	URLs            []string `json:"urls"`
	Requirement     string   `json:"requirement"`
	ReleaseFilename string   `json:"release_filename"`
}

// FirstURL returns the first declared download URL, distinguishing a missing
// or empty urls list from an empty string value.
func (a Attributes) FirstURL() (string, bool) {
	if len(a.URLs) == 0 {
		return "", false
	}
	return a.URLs[0], true
}

// Extension returns the named module extension, reporting absence explicitly.
func (l *BazelLock) Extension(id string) (Extension, bool) {
	ext, ok := l.ModuleExtensions[id]
	return ext, ok
}

// General returns the extension's "general" partition, if present.
func (e Extension) General() (Partition, bool) {
	p, ok := e[generalPartitionID]
	return p, ok
}

// LoadBazelLock reads and decodes a MODULE.bazel.lock file. A missing file or
// invalid JSON at the document root is fatal; everything below that is
// handled entry by entry during normalization.
func LoadBazelLock(path string) (*BazelLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read bazel lock file: %w", err)
	}
	var lock BazelLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("cannot parse bazel lock file %q: %w", path, err)
	}
	return &lock, nil
}

// Dependencies walks the lock file's module extensions and returns a flat,
// deduplicated list of dependency records. Malformed or incomplete entries
// are skipped; a single bad repo spec never fails the run.
//
// pipBaseURL is the index location used to synthesize download URLs for
// pip-resolved packages (they carry no URL in the lock file).
//
// Repo spec and partition maps are iterated in sorted key order so that
// repeated runs over the same lock file produce the same records in the same
// order, which keeps "first occurrence wins" deduplication deterministic.
func Dependencies(lock *BazelLock, pipBaseURL string) []model.Dependency {
	var deps []model.Dependency
	seen := map[string]bool{}

	deps = append(deps, mavenDependencies(lock)...)
	deps = append(deps, pipDependencies(lock, pipBaseURL, seen)...)
	deps = append(deps, pythonDirectDependencies(lock, seen)...)

	return deps
}

func mavenDependencies(lock *BazelLock) []model.Dependency {
	ext, ok := lock.Extension(mavenExtension)
	if !ok {
		return nil
	}
	general, ok := ext.General()
	if !ok {
		return nil
	}

	var deps []model.Dependency
	for _, name := range sortedKeys(general.GeneratedRepoSpecs) {
		spec := general.GeneratedRepoSpecs[name]
		url, ok := spec.Attributes.FirstURL()
		if !ok {
			continue
		}
		coords, ok := ParseMavenURL(url)
		if !ok || coords.GroupID == "" || coords.ArtifactID == "" || coords.Version == "" {
			continue
		}
		deps = append(deps, model.Dependency{
			Type:       model.Maven,
			GroupID:    coords.GroupID,
			ArtifactID: coords.ArtifactID,
			Version:    coords.Version,
			URL:        url,
			IsSources:  coords.IsSources,
		})
	}
	return deps
}

func pipDependencies(lock *BazelLock, pipBaseURL string, seen map[string]bool) []model.Dependency {
	ext, ok := lock.Extension(pipExtension)
	if !ok {
		return nil
	}

	var deps []model.Dependency
	for _, partKey := range sortedKeys(ext) {
		part := ext[partKey]
		for _, name := range sortedKeys(part.GeneratedRepoSpecs) {
			spec := part.GeneratedRepoSpecs[name]
			// The requirement line looks like "requests==2.31.0 --hash=..."; only
			// the first token matters. A version pin is mandatory.
			fields := strings.Fields(spec.Attributes.Requirement)
			if len(fields) == 0 {
				continue
			}
			pkgName, version, found := strings.Cut(fields[0], "==")
			if !found {
				continue
			}
			dep := model.Dependency{
				Type:    model.PythonPip,
				Name:    pkgName,
				Version: version,
				URL:     fmt.Sprintf("%s/%s/%s/%s-%s.tar.gz", pipBaseURL, pkgName, version, pkgName, version),
			}
			if seen[dep.Key()] {
				continue
			}
			seen[dep.Key()] = true
			deps = append(deps, dep)
		}
	}
	return deps
}

func pythonDirectDependencies(lock *BazelLock, seen map[string]bool) []model.Dependency {
	ext, ok := lock.Extension(pythonExtension)
	if !ok {
		return nil
	}
	general, ok := ext.General()
	if !ok {
		return nil
	}

	var deps []model.Dependency
	for _, specName := range sortedKeys(general.GeneratedRepoSpecs) {
		spec := general.GeneratedRepoSpecs[specName]
		url, ok := spec.Attributes.FirstURL()
		if !ok {
			continue
		}
		if spec.Attributes.ReleaseFilename == "" {
			continue
		}
		name, version, ok := ParseReleaseFilename(spec.Attributes.ReleaseFilename)
		if !ok || name == "" || version == "" {
			continue
		}
		dep := model.Dependency{
			Type:    model.PythonDirect,
			Name:    name,
			Version: version,
			URL:     url,
		}
		if seen[dep.Key()] {
			continue
		}
		seen[dep.Key()] = true
		deps = append(deps, dep)
	}
	return deps
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
