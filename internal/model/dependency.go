// Package model defines the internal data structures used by the SBOM engine.
package model

// Type discriminates the closed set of dependency ecosystems the tool
// understands. The assembler dispatches on it exhaustively; adding a new
// variant means adding a case there.
type Type string

const (
	// Maven is a jar (or sources jar) resolved from a Maven repository.
	Maven Type = "maven"
	// PythonPip is a Python package resolved through pip requirements.
	PythonPip Type = "python"
	// PythonDirect is a Python package fetched from a direct download URL.
	PythonDirect Type = "python_no_pip"
)

// Dependency is one normalized external dependency extracted from a lock file.
// Which fields are populated depends on Type:
//   - Maven:        GroupID, ArtifactID, Version, URL, IsSources
//   - PythonPip:    Name, Version, URL (synthesized from the pip base URL)
//   - PythonDirect: Name, Version, URL (verbatim from the lock entry)
type Dependency struct {
	Type Type

	GroupID    string // Maven group id, dot-separated (e.g., "com.google.guava")
	ArtifactID string // Maven artifact id, hyphenated (e.g., "guava")
	Name       string // Python package name (e.g., "requests")
	Version    string
	URL        string // Download location, or "" when unknown
	IsSources  bool   // true if the Maven artifact is a -sources.jar
}

// Key returns the deduplication key for Python dependencies: the lowercased
// name combined with the version, so that "Requests@2.31.0" from the pip
// extension and "requests@2.31.0" from a direct download collapse to one key.
func (d *Dependency) Key() string {
	return lowercase(d.Name) + "@" + d.Version
}

// lowercase is a byte-wise ASCII lowering; package names in lock files are
// ASCII and this avoids locale surprises from strings.ToLower.
func lowercase(s string) string {
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 'A' && b <= 'Z' {
			b += 32
		}
		result = append(result, b)
	}
	return string(result)
}
