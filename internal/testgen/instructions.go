package testgen

// StageInstructions is the read-only configuration for one generation stage.
type StageInstructions struct {
	Role           string
	Task           string
	Requirements   []string
	OutputFormat   string
	CoverageTarget float64
}

var initialInstructions = StageInstructions{
	Role: "expert_cpp_tester",
	Task: "generate_unit_tests",
	Requirements: []string{
		"Generate comprehensive unit tests for all public functions",
		"Use the specified testing framework (Google Test, Catch2, or doctest)",
		"Include edge cases and boundary conditions",
		"Create tests for both success and failure scenarios",
		"Follow C++ testing best practices",
		"Include necessary headers and dependencies",
	},
	OutputFormat:   "cpp_test_files",
	CoverageTarget: 0.8,
}

var refinementInstructions = StageInstructions{
	Role: "code_reviewer",
	Task: "refine_unit_tests",
	Requirements: []string{
		"Remove duplicate test cases",
		"Add missing library includes",
		"Improve test assertions and error messages",
		"Optimize test structure and readability",
		"Ensure proper test isolation",
		"Add missing test cases for uncovered code paths",
	},
	OutputFormat: "improved_cpp_tests",
}

var buildFixInstructions = StageInstructions{
	Role: "build_engineer",
	Task: "fix_compilation_errors",
	Requirements: []string{
		"Analyze compilation errors and warnings",
		"Fix syntax errors and missing includes",
		"Resolve linking issues",
		"Ensure compatibility with the target C++ standard",
		"Maintain test functionality while fixing issues",
	},
	OutputFormat: "fixed_cpp_code",
}

// InstructionsFor returns the instruction set for a stage.
func InstructionsFor(stage Stage) StageInstructions {
	switch stage {
	case StageRefine:
		return refinementInstructions
	case StageBuildFix:
		return buildFixInstructions
	default:
		return initialInstructions
	}
}
