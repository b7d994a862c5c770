package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/StinkyLord/bazel-sbom-builder/internal/lockfile"
	"github.com/StinkyLord/bazel-sbom-builder/internal/output"
)

const toolVersion = "1.0.0"

// defaultPipBaseURL is the index location used to synthesize pip package
// download URLs when BAZEL_PYPI_REPOSITORIES is not set.
const defaultPipBaseURL = "https://pypi.org/packages"

var (
	flagBazelLock    string
	flagPackagesUsed string
	flagMavenInstall string
	flagOut          string
	flagPipBaseURL   string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "bazel-sbom-builder",
	Short: "Bazel SBOM Generation Engine",
	Long: `bazel-sbom-builder weaves an SPDX 2.3 JSON Software Bill of Materials
(SBOM) for a Bazel build target from lock-file and manifest inputs.

Two input modes are supported:
  • --bazel_lock      — walk MODULE.bazel.lock module extensions
                        (rules_jvm_external Maven repos, rules_python pip and
                        direct-download toolchain repos)
  • --packages_used   — list of remote package references from the build
                        graph, with download URLs resolved through an
                        optional --maven_install lock file`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an SPDX SBOM from lock-file or manifest inputs",
	Long: `Generate an SPDX 2.3 JSON SBOM document.

Examples:
  bazel-sbom-builder generate --bazel_lock MODULE.bazel.lock --out sbom.json
  bazel-sbom-builder generate --packages_used packages.json --maven_install maven_install.json --out -
  BAZEL_PYPI_REPOSITORIES=https://pypi.example.com bazel-sbom-builder generate --bazel_lock MODULE.bazel.lock --out sbom.json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&flagBazelLock, "bazel_lock", "", "Bazel lock file (MODULE.bazel.lock)")
	generateCmd.Flags().StringVar(&flagPackagesUsed, "packages_used", "", "JSON list of transitive package data for a target")
	generateCmd.Flags().StringVar(&flagMavenInstall, "maven_install", "", "Maven lock file (maven_install.json)")
	generateCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file path (use '-' for stdout), mandatory")
	generateCmd.Flags().StringVar(&flagPipBaseURL, "pip_base_url", "",
		"Base index URL for synthesized pip package download locations\n"+
			"(overrides the BAZEL_PYPI_REPOSITORIES environment variable)")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	_ = generateCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// pipBaseURL resolves the pip index location: flag, then environment, then
// the built-in default.
func pipBaseURL(cmd *cobra.Command) string {
	v := viper.New()
	v.SetDefault("pip_base_url", defaultPipBaseURL)
	_ = v.BindEnv("pip_base_url", "BAZEL_PYPI_REPOSITORIES")
	_ = v.BindPFlag("pip_base_url", cmd.Flags().Lookup("pip_base_url"))
	return v.GetString("pip_base_url")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	now := time.Now()

	var doc *output.Document
	switch {
	case flagBazelLock != "":
		lock, err := lockfile.LoadBazelLock(flagBazelLock)
		if err != nil {
			return err
		}
		deps := lockfile.Dependencies(lock, pipBaseURL(cmd))
		if flagVerbose {
			fmt.Fprintf(os.Stderr, "Found %d dependency record(s) in %s\n", len(deps), flagBazelLock)
		}
		doc = output.FromDependencies(deps, toolVersion, now)

	case flagPackagesUsed != "":
		manifest, err := lockfile.LoadPackagesUsed(flagPackagesUsed)
		if err != nil {
			return err
		}

		var mavenTable lockfile.MavenTable
		if flagMavenInstall != "" {
			mavenTable, err = lockfile.LoadMavenInstall(flagMavenInstall)
			if err != nil {
				return err
			}
		}

		var unresolved []string
		doc, unresolved = output.FromManifest(manifest, mavenTable, toolVersion, now)
		for _, ref := range unresolved {
			fmt.Fprintf(os.Stderr, "MISSING %s\n", ref)
		}

	default:
		return fmt.Errorf("either --bazel_lock or --packages_used is required")
	}

	if err := output.Write(doc, flagOut); err != nil {
		return fmt.Errorf("failed to write SBOM output: %w", err)
	}

	if flagOut != "-" && flagVerbose {
		fmt.Fprintf(os.Stderr, "SBOM written to: %s\n", flagOut)
	}

	return nil
}
