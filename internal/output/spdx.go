// Package output provides SBOM serializers.
package output

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/package-url/packageurl-go"

	"github.com/StinkyLord/bazel-sbom-builder/internal/lockfile"
	"github.com/StinkyLord/bazel-sbom-builder/internal/model"
)

// ---- SPDX 2.3 JSON schema types ----

// Document is the minimal SPDX 2.3 subset this tool emits.
type Document struct {
	SPDXVersion       string         `json:"spdxVersion"`
	DataLicense       string         `json:"dataLicense"`
	SPDXID            string         `json:"SPDXID"`
	DocumentNamespace string         `json:"documentNamespace"`
	Name              string         `json:"name"`
	CreationInfo      CreationInfo   `json:"creationInfo"`
	Packages          []Package      `json:"packages"`
	Relationships     []Relationship `json:"relationships"`
}

// CreationInfo records who produced the document and when.
type CreationInfo struct {
	LicenseListVersion string   `json:"licenseListVersion,omitempty"`
	Creators           []string `json:"creators"`
	Created            string   `json:"created"`
}

// Package is one SPDX package entry.
type Package struct {
	SPDXID           string        `json:"SPDXID"`
	Name             string        `json:"name"`
	VersionInfo      string        `json:"versionInfo,omitempty"`
	DownloadLocation string        `json:"downloadLocation"`
	FilesAnalyzed    bool          `json:"filesAnalyzed"`
	ExternalRefs     []ExternalRef `json:"externalRefs,omitempty"`
}

// ExternalRef points a package at an external identifier such as a purl.
type ExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

// Relationship is one (source, target, kind) edge of the document graph.
type Relationship struct {
	SpdxElementID      string `json:"spdxElementId"`
	RelatedSpdxElement string `json:"relatedSpdxElement"`
	RelationshipType   string `json:"relationshipType"`
}

const (
	spdxVersion = "SPDX-2.3"
	dataLicense = "CC0-1.0"
	documentID  = "SPDXRef-DOCUMENT"

	// NoAssertion is the SPDX sentinel for "we make no claim about this value".
	NoAssertion = "NOASSERTION"

	// mainPackageID is the synthetic root node every manifest-mode package
	// hangs off.
	mainPackageID = "SPDXRef-Package-main"

	// manifestIDPrefix prefixes the content-hash identifiers of manifest-mode
	// packages.
	manifestIDPrefix = "SPDXRef-GooglePackage-"

	// mavenRefPrefix marks manifest references that name a Maven coordinate
	// directly, e.g. "@maven//:org_apache_commons_commons_lang3".
	mavenRefPrefix = "@maven//:"

	// magicFileSuffix marks manifest references where the build graph depends
	// on a repository's //file:file target instead of the artifact itself,
	// e.g. "@org_apache_tomcat_tomcat_annotations_api_8_0_5//file:file".
	// The versioned repository name between "@" and the suffix is the lookup
	// key. A narrow convention of one build ecosystem; preserved as observed.
	magicFileSuffix = "//file:file"
)

// timestampLayout is RFC 3339 at second precision, always UTC.
const timestampLayout = "2006-01-02T15:04:05Z"

// FromDependencies assembles an SPDX document from normalized lock-file
// dependency records. Each record becomes one package with a DESCRIBES
// relationship from the document. Records of unrecognized type are skipped.
//
// The timestamp is passed in rather than read from the clock so the assembly
// is a pure function of its inputs: identical records yield byte-identical
// package and relationship arrays.
func FromDependencies(deps []model.Dependency, toolVersion string, now time.Time) *Document {
	doc := newDocument("Generated SBOM", toolVersion, now)

	for _, dep := range deps {
		var pkg Package
		switch dep.Type {
		case model.Maven:
			spdxid := fmt.Sprintf("SPDXRef-maven-%s-%s-%s", dep.GroupID, dep.ArtifactID, dep.Version)
			if dep.IsSources {
				spdxid += "-sources"
			}
			pkg = Package{
				SPDXID:           spdxid,
				Name:             dep.GroupID + ":" + dep.ArtifactID,
				VersionInfo:      dep.Version,
				DownloadLocation: dep.URL,
				ExternalRefs: []ExternalRef{
					purlRef(packageurl.NewPackageURL(packageurl.TypeMaven, dep.GroupID, dep.ArtifactID, dep.Version, nil, "")),
				},
			}
		case model.PythonPip:
			pkg = Package{
				SPDXID:           fmt.Sprintf("SPDXRef-Package-%s-%s", dep.Name, dep.Version),
				Name:             dep.Name,
				VersionInfo:      dep.Version,
				DownloadLocation: NoAssertion,
				ExternalRefs: []ExternalRef{
					purlRef(packageurl.NewPackageURL(packageurl.TypePyPi, "", dep.Name, dep.Version, nil, "")),
					{
						ReferenceCategory: "OTHER",
						ReferenceType:     "URL",
						ReferenceLocator:  dep.URL,
					},
				},
			}
		case model.PythonDirect:
			pkg = Package{
				SPDXID:           fmt.Sprintf("SPDXRef-Package-%s-%s", dep.Name, dep.Version),
				Name:             dep.Name,
				VersionInfo:      dep.Version,
				DownloadLocation: dep.URL,
			}
		default:
			continue
		}

		doc.Packages = append(doc.Packages, pkg)
		doc.Relationships = append(doc.Relationships, Relationship{
			SpdxElementID:      documentID,
			RelatedSpdxElement: pkg.SPDXID,
			RelationshipType:   "DESCRIBES",
		})
	}

	return doc
}

// FromManifest assembles an SPDX document from a packages_used manifest,
// resolving download URLs through the Maven lock table. It returns the
// document plus the references that could not be resolved; those packages are
// still emitted, with a NOASSERTION download location.
//
// The document DESCRIBES a synthetic main package named after the top-level
// target, and the main package CONTAINS every manifest package.
func FromManifest(manifest *lockfile.PackagesUsed, mavenTable lockfile.MavenTable, toolVersion string, now time.Time) (*Document, []string) {
	doc := newDocument(manifest.TopLevelTarget, toolVersion, now)
	doc.CreationInfo.Creators = append(doc.CreationInfo.Creators, "Organization: StinkyLord")

	doc.Packages = append(doc.Packages, Package{
		SPDXID:           mainPackageID,
		Name:             manifest.TopLevelTarget,
		DownloadLocation: NoAssertion,
	})
	doc.Relationships = append(doc.Relationships, Relationship{
		SpdxElementID:      documentID,
		RelatedSpdxElement: mainPackageID,
		RelationshipType:   "DESCRIBES",
	})

	var unresolved []string
	for _, ref := range manifest.Packages {
		pkg := Package{
			SPDXID:           manifestPackageID(ref),
			Name:             ref,
			DownloadLocation: NoAssertion,
		}

		if url, ok := resolveManifestRef(ref, mavenTable); ok {
			pkg.DownloadLocation = url
		} else {
			unresolved = append(unresolved, ref)
		}

		doc.Packages = append(doc.Packages, pkg)
		doc.Relationships = append(doc.Relationships, Relationship{
			SpdxElementID:      mainPackageID,
			RelatedSpdxElement: pkg.SPDXID,
			RelationshipType:   "CONTAINS",
		})
	}

	return doc, unresolved
}

// resolveManifestRef maps a raw manifest reference to a download URL via the
// Maven lock table. Two reference shapes are recognized; anything else, or a
// table miss, is unresolved.
func resolveManifestRef(ref string, mavenTable lockfile.MavenTable) (string, bool) {
	var key string
	switch {
	case strings.HasPrefix(ref, mavenRefPrefix):
		key = ref[len(mavenRefPrefix):]
	case strings.HasSuffix(ref, magicFileSuffix) && strings.HasPrefix(ref, "@"):
		key = ref[1 : len(ref)-len(magicFileSuffix)]
	default:
		return "", false
	}
	pkg, ok := mavenTable[key]
	if !ok {
		return "", false
	}
	return pkg.URL, true
}

// manifestPackageID derives a stable identifier from the raw reference
// string. Any collision-resistant digest works here; what matters is that
// unchanged input produces the same identifier on every run.
func manifestPackageID(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return manifestIDPrefix + hex.EncodeToString(sum[:])
}

func newDocument(name, toolVersion string, now time.Time) *Document {
	return &Document{
		SPDXVersion:       spdxVersion,
		DataLicense:       dataLicense,
		SPDXID:            documentID,
		DocumentNamespace: documentNamespace(name),
		Name:              name,
		CreationInfo: CreationInfo{
			Creators: []string{
				"Tool: bazel-sbom-builder-" + toolVersion,
			},
			Created: now.UTC().Format(timestampLayout),
		},
		Packages:      []Package{},
		Relationships: []Relationship{},
	}
}

// documentNamespace derives a stable namespace URI for the document: a UUIDv5
// of the document name, so unchanged input names the same namespace on every
// run.
func documentNamespace(name string) string {
	return "https://sbom.stinkylord.dev/spdxdocs/" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func purlRef(p *packageurl.PackageURL) ExternalRef {
	return ExternalRef{
		ReferenceCategory: "PACKAGE-MANAGER",
		ReferenceType:     "purl",
		ReferenceLocator:  p.ToString(),
	}
}

// Write serialises the document as pretty-printed JSON and writes it to the
// given output path. If outputPath is "-", it writes to stdout.
func Write(doc *Document, outputPath string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal SPDX JSON: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}
