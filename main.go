package main

import "github.com/StinkyLord/bazel-sbom-builder/cmd"

func main() {
	cmd.Execute()
}
