package testgen

import "testing"

func TestParseFramework(t *testing.T) {
	tests := []struct {
		in      string
		want    Framework
		wantErr bool
	}{
		{"googletest", FrameworkGoogleTest, false},
		{"google_test", FrameworkGoogleTest, false},
		{"gtest", FrameworkGoogleTest, false},
		{"catch2", FrameworkCatch2, false},
		{"catch", FrameworkCatch2, false},
		{"doctest", FrameworkDoctest, false},
		{"", "", true},
		{"GoogleTest", "", true},
		{"junit", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFramework(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFramework(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFramework(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
