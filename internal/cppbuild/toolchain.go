package cppbuild

import "os/exec"

// toolchainBinaries are the external tools the pipeline depends on.
// cmake drives the build, g++ compiles, gcov produces coverage.
var toolchainBinaries = []string{"cmake", "g++", "gcov"}

// Available probes the environment for each toolchain binary. The API
// exposes the result so callers can check capabilities before submitting
// generation requests.
func Available() map[string]bool {
	found := make(map[string]bool, len(toolchainBinaries))
	for _, bin := range toolchainBinaries {
		_, err := exec.LookPath(bin)
		found[bin] = err == nil
	}
	return found
}
