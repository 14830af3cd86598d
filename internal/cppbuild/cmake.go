package cppbuild

import (
	"fmt"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// frameworkFetch holds the FetchContent declaration and link target for a
// test framework.
type frameworkFetch struct {
	declare string
	link    string
}

var frameworks = map[testgen.Framework]frameworkFetch{
	testgen.FrameworkGoogleTest: {
		declare: `FetchContent_Declare(
  googletest
  URL https://github.com/google/googletest/archive/refs/tags/v1.14.0.zip
)
FetchContent_MakeAvailable(googletest)`,
		link: "gtest_main",
	},
	testgen.FrameworkCatch2: {
		declare: `FetchContent_Declare(
  Catch2
  URL https://github.com/catchorg/Catch2/archive/refs/tags/v3.4.0.zip
)
FetchContent_MakeAvailable(Catch2)`,
		link: "Catch2::Catch2WithMain",
	},
	testgen.FrameworkDoctest: {
		declare: `FetchContent_Declare(
  doctest
  URL https://github.com/doctest/doctest/archive/refs/tags/v2.4.11.zip
)
FetchContent_MakeAvailable(doctest)`,
		link: "doctest::doctest",
	},
}

// GenerateCMakeLists emits the build descriptor for one workspace: the
// configured C++ standard, coverage instrumentation, a primary executable,
// and a test_runner target that links the framework runtime and excludes
// main.cpp from its source set.
func GenerateCMakeLists(projectName string, fw testgen.Framework, cxxStandard string) string {
	fetch, ok := frameworks[fw]
	if !ok {
		fetch = frameworks[testgen.FrameworkGoogleTest]
	}
	if cxxStandard == "" {
		cxxStandard = "17"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `cmake_minimum_required(VERSION 3.14)
project(%s)

set(CMAKE_CXX_STANDARD %s)
set(CMAKE_CXX_STANDARD_REQUIRED ON)

set(CMAKE_CXX_FLAGS "${CMAKE_CXX_FLAGS} --coverage -fprofile-arcs -ftest-coverage")
set(CMAKE_EXE_LINKER_FLAGS "${CMAKE_EXE_LINKER_FLAGS} --coverage")

include(FetchContent)
%s

file(GLOB_RECURSE SOURCE_FILES "${CMAKE_CURRENT_SOURCE_DIR}/*.cpp" "${CMAKE_CURRENT_SOURCE_DIR}/*.cc" "${CMAKE_CURRENT_SOURCE_DIR}/*.cxx")
list(FILTER SOURCE_FILES EXCLUDE REGEX "/tests/")
list(FILTER SOURCE_FILES EXCLUDE REGEX "/build/")

add_executable(main "${CMAKE_CURRENT_SOURCE_DIR}/main.cpp")

file(GLOB_RECURSE TEST_FILES "${CMAKE_CURRENT_SOURCE_DIR}/tests/*.cpp")
if(TEST_FILES)
    list(REMOVE_ITEM SOURCE_FILES "${CMAKE_CURRENT_SOURCE_DIR}/main.cpp")
    add_executable(test_runner ${TEST_FILES} ${SOURCE_FILES})
    target_link_libraries(test_runner %s)
    target_include_directories(test_runner PRIVATE "${CMAKE_CURRENT_SOURCE_DIR}")
endif()

enable_testing()
`, sanitizeProjectName(projectName), cxxStandard, fetch.declare, fetch.link)

	return b.String()
}

// sanitizeProjectName keeps CMake project() happy regardless of input.
func sanitizeProjectName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	if cleaned == "" {
		return "generated_tests"
	}
	return cleaned
}
