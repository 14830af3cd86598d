package testgen

import "strings"

const (
	startMarker = "===TEST_FILE_START==="
	endMarker   = "===TEST_FILE_END==="
)

// ParseArtifacts extracts delimited test files from a raw completion.
//
// The scan is tolerant: prose outside blocks is ignored, a start marker
// with no matching end marker is discarded, and a block without a filename
// or with a blank body is dropped. Duplicate filenames keep the last
// occurrence. Parsing never fails; an empty set is a valid result.
//
// Body whitespace is preserved: only the marker lines themselves and the
// single newline separating them from the body are stripped, so values
// with indentation or trailing newlines round-trip through EncodeArtifacts.
func ParseArtifacts(raw string) ArtifactSet {
	artifacts := ArtifactSet{}

	parts := strings.Split(raw, startMarker)
	for _, part := range parts[1:] {
		end := strings.Index(part, endMarker)
		if end < 0 {
			// Unterminated block; skip it rather than guessing its extent.
			continue
		}
		block := strings.TrimPrefix(part[:end], "\n")
		block = strings.TrimSuffix(block, "\n")

		var filename string
		var body []string
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "filename:"):
				if filename == "" {
					filename = strings.TrimSpace(strings.TrimPrefix(line, "filename:"))
				}
			case strings.HasPrefix(line, "content:") && len(body) == 0:
				body = append(body, strings.TrimPrefix(strings.TrimPrefix(line, "content:"), " "))
			case filename != "":
				body = append(body, line)
			}
		}

		if filename == "" || len(body) == 0 {
			continue
		}
		content := strings.Join(body, "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}
		artifacts[filename] = content
	}

	return artifacts
}

// EncodeArtifacts renders an ArtifactSet back into the delimited protocol.
// Used to embed the current artifacts into refine/repair payload blocks and
// to round-trip the protocol in tests.
func EncodeArtifacts(artifacts ArtifactSet) string {
	var b strings.Builder
	for _, name := range artifacts.Files() {
		lines := strings.Split(artifacts[name], "\n")
		b.WriteString(startMarker + "\n")
		b.WriteString("filename: " + name + "\n")
		b.WriteString("content: " + lines[0] + "\n")
		for _, line := range lines[1:] {
			b.WriteString(line + "\n")
		}
		b.WriteString(endMarker + "\n")
	}
	return b.String()
}
