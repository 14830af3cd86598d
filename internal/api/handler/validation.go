package handler

import (
	"regexp"

	"github.com/testforge-labs/testforge/internal/testgen"
	"github.com/testforge-labs/testforge/pkg/apierr"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

func validateSlug(slug string) *apierr.Error {
	if slug == "" {
		return apierr.SlugRequired()
	}
	if !slugRegex.MatchString(slug) {
		return apierr.SlugInvalid()
	}
	return nil
}

func validateName(name string) *apierr.Error {
	if name == "" {
		return apierr.NameRequired()
	}
	if len(name) > 255 {
		return apierr.NameTooLong()
	}
	return nil
}

// parseFramework maps the request value onto a known test framework.
// An empty value defaults to googletest.
func parseFramework(v string) (testgen.Framework, *apierr.Error) {
	if v == "" {
		return testgen.FrameworkGoogleTest, nil
	}
	fw, err := testgen.ParseFramework(v)
	if err != nil {
		return "", apierr.InvalidFramework()
	}
	return fw, nil
}
