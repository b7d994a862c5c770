// Package lockfile parses build-system lock files and package manifests into
// normalized dependency records.
package lockfile

import "strings"

// MavenCoordinates are the pieces of a Maven artifact path extracted from a
// repository download URL.
type MavenCoordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
	IsSources  bool
}

// repoMarkers are the path fragments that separate a repository base URL from
// the groupId/artifactId/version/filename tail. Checked in order; the first
// one found wins.
var repoMarkers = []string{"/maven2/", "/repository/"}

// ParseMavenURL extracts Maven coordinates from a repository download URL such
// as
//
//	https://repo1.maven.org/maven2/com/google/guava/guava/33.0.0-jre/guava-33.0.0-jre.jar
//
// The path after the repository marker is split on "/": the last segment is
// the filename (only inspected for the "sources.jar" classifier), the
// second-to-last is the version, the third-to-last is the artifact id
// (underscores rewritten to hyphens), and everything before that joins with
// "." into the group id.
//
// Returns ok=false when no marker is present or fewer than 4 path segments
// follow it. Never panics on malformed input.
func ParseMavenURL(url string) (MavenCoordinates, bool) {
	idx := -1
	for _, marker := range repoMarkers {
		if i := strings.Index(url, marker); i >= 0 {
			idx = i + len(marker)
			break
		}
	}
	if idx < 0 {
		return MavenCoordinates{}, false
	}

	path := strings.Trim(url[idx:], "/")
	segments := strings.Split(path, "/")
	if len(segments) < 4 {
		return MavenCoordinates{}, false
	}

	filename := segments[len(segments)-1]
	return MavenCoordinates{
		GroupID:    strings.Join(segments[:len(segments)-3], "."),
		ArtifactID: strings.ReplaceAll(segments[len(segments)-3], "_", "-"),
		Version:    segments[len(segments)-2],
		IsSources:  strings.HasSuffix(filename, "sources.jar"),
	}, true
}

// ParseReleaseFilename splits a Python toolchain release filename of the form
// "<version>/<name>.tar.gz" into its name and version. The name has
// underscores rewritten to hyphens. Returns ok=false when no "/" is present.
func ParseReleaseFilename(releaseFilename string) (name, version string, ok bool) {
	parts := strings.SplitN(releaseFilename, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	version = parts[0]
	name = strings.TrimSuffix(parts[1], ".tar.gz")
	name = strings.ReplaceAll(name, "_", "-")
	return name, version, true
}
