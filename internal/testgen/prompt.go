package testgen

import (
	"fmt"
	"sort"
	"strings"
)

// Stage identifies one composed request/response round trip with the
// generation service.
type Stage string

const (
	StageInitial  Stage = "initial_generation"
	StageRefine   Stage = "refinement"
	StageBuildFix Stage = "build_fix"
)

// Request is a composed generation request: a system instruction and a
// payload. Every request embeds the delimiter protocol so the artifact
// parser can recover files deterministically.
type Request struct {
	System string
	User   string
}

// protocolInstruction is the exact output contract mandated on the service.
const protocolInstruction = `Return every test file using exactly this format:
===TEST_FILE_START===
filename: test_[source_filename].cpp
content: [test code here]
===TEST_FILE_END===`

// Compose builds the stage-specific request from the current pipeline state.
// Pure function: no side effects, no retained references.
func Compose(stage Stage, st State) Request {
	instr := InstructionsFor(stage)

	switch stage {
	case StageRefine:
		return Request{
			System: fmt.Sprintf(`You are a senior code reviewer specializing in C++ testing.
Improve the quality and correctness of the provided tests.

Instructions:
%s

Focus on:
1. Removing duplicates
2. Adding missing includes
3. Improving test quality
4. Fixing any issues

%s`, formatInstructions(instr), protocolInstruction),
			User: fmt.Sprintf("EXISTING TESTS:\n%s\n\nBUILD LOGS:\n%s",
				formatFiles(map[string]string(st.Artifacts)),
				strings.Join(st.History, "\n")),
		}

	case StageBuildFix:
		var recent []string
		if st.Outcome != nil {
			recent = st.Outcome.Diagnostics
		}
		return Request{
			System: fmt.Sprintf(`You are a C++ build engineer. Fix compilation errors while maintaining test functionality.

Instructions:
%s

Analyze the build logs and fix:
- Syntax errors and missing includes
- Linking issues and library dependencies
- Ensure compatibility with C++17 standard
- Maintain test functionality while fixing issues

%s`, formatInstructions(instr), protocolInstruction),
			User: fmt.Sprintf(`SOURCE FILES:
%s

TEST FILES:
%s

BUILD LOGS:
%s

Fix the compilation errors and issues. Return the corrected test files.`,
				formatFiles(map[string]string(st.Source)),
				formatFiles(map[string]string(st.Artifacts)),
				strings.Join(recent, "\n")),
		}

	default: // StageInitial
		return Request{
			System: fmt.Sprintf(`You are an expert C++ developer specializing in unit testing.
Generate high-quality, comprehensive unit tests following best practices.

Instructions:
%s

Generate tests for the provided C++ code following these requirements:
- Use %s testing framework
- Include edge cases and boundary conditions
- Create tests for both success and failure scenarios
- Follow C++ testing best practices
- Include necessary headers and dependencies

%s`, formatInstructions(instr), st.Framework, protocolInstruction),
			User: "SOURCE CODE:\n" + formatFiles(map[string]string(st.Source)),
		}
	}
}

// formatInstructions renders a StageInstructions block for prompt embedding.
func formatInstructions(in StageInstructions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "role: %s\ntask: %s\nrequirements:\n", in.Role, in.Task)
	for _, r := range in.Requirements {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	fmt.Fprintf(&b, "output_format: %s", in.OutputFormat)
	if in.CoverageTarget > 0 {
		fmt.Fprintf(&b, "\ncoverage_target: %.1f", in.CoverageTarget)
	}
	return b.String()
}

// formatFiles renders a file set with per-file headers, deterministic order.
func formatFiles(files map[string]string) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", name, files[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
