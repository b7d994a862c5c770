package lockfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMavenURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   MavenCoordinates
		wantOK bool
	}{
		{
			name: "maven2 marker",
			url:  "https://repo1.maven.org/maven2/com/example/foo-bar/1.2.3/foo-bar-1.2.3.jar",
			want: MavenCoordinates{
				GroupID:    "com.example",
				ArtifactID: "foo-bar",
				Version:    "1.2.3",
			},
			wantOK: true,
		},
		{
			name: "repository marker",
			url:  "https://maven.example.com/repository/org/apache/commons/commons-lang3/3.12.0/commons-lang3-3.12.0.jar",
			want: MavenCoordinates{
				GroupID:    "org.apache.commons",
				ArtifactID: "commons-lang3",
				Version:    "3.12.0",
			},
			wantOK: true,
		},
		{
			name: "sources classifier",
			url:  "https://repo1.maven.org/maven2/com/google/guava/guava/33.0.0-jre/guava-33.0.0-jre-sources.jar",
			want: MavenCoordinates{
				GroupID:    "com.google.guava",
				ArtifactID: "guava",
				Version:    "33.0.0-jre",
				IsSources:  true,
			},
			wantOK: true,
		},
		{
			name: "underscores in artifact id become hyphens",
			url:  "https://repo1.maven.org/maven2/org/scala-lang/scala_library/2.13.12/scala_library-2.13.12.jar",
			want: MavenCoordinates{
				GroupID:    "org.scala-lang",
				ArtifactID: "scala-library",
				Version:    "2.13.12",
			},
			wantOK: true,
		},
		{
			name: "deep group id",
			url:  "https://repo1.maven.org/maven2/org/apache/tomcat/embed/tomcat-embed-core/10.1.15/tomcat-embed-core-10.1.15.jar",
			want: MavenCoordinates{
				GroupID:    "org.apache.tomcat.embed",
				ArtifactID: "tomcat-embed-core",
				Version:    "10.1.15",
			},
			wantOK: true,
		},
		{
			name:   "no recognized marker",
			url:    "https://example.com/downloads/foo-1.2.3.jar",
			wantOK: false,
		},
		{
			name:   "too few path segments",
			url:    "https://repo1.maven.org/maven2/guava/33.0.0/guava-33.0.0.jar",
			wantOK: false,
		},
		{
			name:   "marker at end of url",
			url:    "https://repo1.maven.org/maven2/",
			wantOK: false,
		},
		{
			name:   "empty url",
			url:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMavenURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Well-formed URLs must round-trip: joining the parsed coordinates with the
// known separators reproduces the path between the marker and the filename.
func TestParseMavenURLRoundTrip(t *testing.T) {
	url := "https://repo1.maven.org/maven2/io/grpc/grpc-core/1.62.2/grpc-core-1.62.2.jar"
	coords, ok := ParseMavenURL(url)
	if !ok {
		t.Fatal("ParseMavenURL failed on well-formed URL")
	}

	rebuilt := strings.ReplaceAll(coords.GroupID, ".", "/") + "/" + coords.ArtifactID + "/" + coords.Version
	assert.Contains(t, url, rebuilt)
	assert.NotContains(t, coords.GroupID, "_")
	assert.NotContains(t, coords.ArtifactID, "_")
}

func TestParseReleaseFilename(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantName    string
		wantVersion string
		wantOK      bool
	}{
		{
			name:        "plain tarball",
			input:       "20240224/cpython-3.11.8.tar.gz",
			wantName:    "cpython-3.11.8",
			wantVersion: "20240224",
			wantOK:      true,
		},
		{
			name:        "underscores become hyphens",
			input:       "3.11.4/python_build_standalone.tar.gz",
			wantName:    "python-build-standalone",
			wantVersion: "3.11.4",
			wantOK:      true,
		},
		{
			name:        "no tar.gz suffix keeps name",
			input:       "1.0/toolchain.zip",
			wantName:    "toolchain.zip",
			wantVersion: "1.0",
			wantOK:      true,
		},
		{
			name:        "only the first slash splits",
			input:       "2.0/nested/archive.tar.gz",
			wantName:    "nested/archive",
			wantVersion: "2.0",
			wantOK:      true,
		},
		{
			name:   "no slash",
			input:  "cpython-3.11.8.tar.gz",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version, ok := ParseReleaseFilename(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}
