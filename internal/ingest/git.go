package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/testforge-labs/testforge/internal/testgen"
)

// GitImporter clones a repository and gathers its C++ files.
type GitImporter struct{}

func NewGitImporter() *GitImporter {
	return &GitImporter{}
}

// Import clones repoURL shallowly (--depth=1) into a temp directory and
// collects its C++ files. A PAT is read from GIT_TOKEN when present. The
// spec format is https://host/group/repo or https://host/group/repo@branch.
func (g *GitImporter) Import(ctx context.Context, repoSpec string) (testgen.SourceSet, error) {
	repoURL, branch := splitRepoSpec(repoSpec)

	destDir, err := os.MkdirTemp("", "testforge-clone-*")
	if err != nil {
		return nil, fmt.Errorf("create clone dir: %w", err)
	}
	defer os.RemoveAll(destDir)

	args := []string{"clone", "--depth=1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, injectToken(repoURL), destDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git clone: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return CollectDir(destDir)
}

func splitRepoSpec(spec string) (repoURL, branch string) {
	// Only split on an @ after the host path so user-info URLs stay intact.
	rest := spec
	if idx := strings.Index(spec, "://"); idx >= 0 {
		rest = spec[idx+3:]
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 || !strings.Contains(rest[:at], "/") || strings.Contains(rest[at+1:], "/") {
		return spec, ""
	}
	cut := len(spec) - (len(rest) - at)
	return spec[:cut], spec[cut+1:]
}

// injectToken adds the PAT to the clone URL for authentication.
func injectToken(repoURL string) string {
	token := os.Getenv("GIT_TOKEN")
	if token == "" {
		return repoURL
	}
	if strings.HasPrefix(repoURL, "https://") {
		return "https://oauth2:" + token + "@" + strings.TrimPrefix(repoURL, "https://")
	}
	return repoURL
}
