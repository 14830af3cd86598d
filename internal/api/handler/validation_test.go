package handler

import (
	"testing"

	"github.com/testforge-labs/testforge/internal/testgen"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug     string
		wantErr  bool
		wantCode apierr.Code
	}{
		{"my-project", false, ""},
		{"abc", false, ""},
		{"a-long-slug-with-numbers-123", false, ""},
		{"", true, apierr.CodeSlugRequired},
		{"ab", true, apierr.CodeSlugInvalid},             // too short
		{"-starts-dash", true, apierr.CodeSlugInvalid},   // starts with dash
		{"ends-dash-", true, apierr.CodeSlugInvalid},     // ends with dash
		{"UPPERCASE", true, apierr.CodeSlugInvalid},      // uppercase
		{"has space", true, apierr.CodeSlugInvalid},      // space
		{"has_underscore", true, apierr.CodeSlugInvalid}, // underscore
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := validateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
			if err != nil && err.Code() != tt.wantCode {
				t.Errorf("validateSlug(%q) code = %v, want %v", tt.slug, err.Code(), tt.wantCode)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := validateName("My Project"); err != nil {
		t.Errorf("validateName valid: %v", err)
	}
	if err := validateName(""); err == nil || err.Code() != apierr.CodeNameRequired {
		t.Errorf("validateName empty: %v", err)
	}
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if err := validateName(string(long)); err == nil || err.Code() != apierr.CodeNameTooLong {
		t.Errorf("validateName long: %v", err)
	}
}

func TestParseFrameworkParam(t *testing.T) {
	tests := []struct {
		in      string
		want    testgen.Framework
		wantErr bool
	}{
		{"", testgen.FrameworkGoogleTest, false},
		{"googletest", testgen.FrameworkGoogleTest, false},
		{"gtest", testgen.FrameworkGoogleTest, false},
		{"catch2", testgen.FrameworkCatch2, false},
		{"doctest", testgen.FrameworkDoctest, false},
		{"cppunit", "", true},
	}
	for _, tt := range tests {
		fw, err := parseFramework(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFramework(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && fw != tt.want {
			t.Errorf("parseFramework(%q) = %v, want %v", tt.in, fw, tt.want)
		}
		if err != nil && err.Code() != apierr.CodeInvalidFramework {
			t.Errorf("parseFramework(%q) code = %v", tt.in, err.Code())
		}
	}
}
