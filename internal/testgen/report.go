package testgen

import (
	"regexp"
	"strings"
)

// Test naming follows the test_<source>.cpp convention mandated by the
// generation prompt; tested functions are recovered from test macro names.
var (
	gtestMacroRegex = regexp.MustCompile(`TEST(?:_F)?\(\s*[^,)]+,\s*(\w+)\s*\)`)
	catchMacroRegex = regexp.MustCompile(`TEST_CASE\(\s*"([^"]+)"`)
)

// SourceFileFor maps a generated test filename back to the source file it
// covers: test_math.cpp -> math.cpp. Unknown shapes map to "unknown.cpp".
func SourceFileFor(testFilename string) string {
	if strings.HasPrefix(testFilename, "test_") {
		base := strings.TrimPrefix(testFilename, "test_")
		base = strings.TrimSuffix(base, ".cpp")
		return base + ".cpp"
	}
	return "unknown.cpp"
}

// TestedFunctions extracts the test case names from TEST/TEST_F/TEST_CASE
// macros in a generated file body.
func TestedFunctions(content string) []string {
	var names []string
	for _, m := range gtestMacroRegex.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	for _, m := range catchMacroRegex.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

// buildReport assembles the caller-facing report from terminal state.
func buildReport(phase Phase, st State, cov *CoverageSummary) Report {
	status := StatusFailed
	if phase == PhaseSucceeded {
		status = StatusSucceeded
	}

	tests := make([]GeneratedTest, 0, len(st.Artifacts))
	for _, name := range st.Artifacts.Files() {
		content := st.Artifacts[name]
		tests = append(tests, GeneratedTest{
			Filename:        name,
			Content:         content,
			SourceFile:      SourceFileFor(name),
			FunctionsTested: TestedFunctions(content),
		})
	}

	return Report{
		Status:      status,
		Tests:       tests,
		Coverage:    cov,
		Diagnostics: st.History,
		Iterations:  st.Iteration,
	}
}
