package gitinfo

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// Fallbacks used when the working tree is not a git checkout.
const (
	DefaultURL    = "https://github.com/unknown/repo"
	DefaultBranch = "main"
)

// Repo locates the remote repository browser for source links.
type Repo struct {
	URL    string
	Branch string
}

// BlobURL returns the browser URL of a file path at the repo's branch.
func (r Repo) BlobURL(path string) string {
	return fmt.Sprintf("%s/blob/%s/%s", strings.TrimSuffix(r.URL, "/"), r.Branch, strings.TrimPrefix(path, "/"))
}

// Resolve queries git in dir for the origin URL and the current branch.
// Lookups that fail fall back to DefaultURL and DefaultBranch.
func Resolve(ctx context.Context, dir string) Repo {
	repo := Repo{URL: DefaultURL, Branch: DefaultBranch}
	if out, err := git(ctx, dir, "config", "--get", "remote.origin.url"); err == nil && out != "" {
		repo.URL = NormalizeRemote(out)
	}
	if out, err := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && out != "" && out != "HEAD" {
		repo.Branch = out
	}
	return repo
}

// NormalizeRemote turns a git remote into a browsable https URL. Credentials
// embedded in the remote are dropped.
func NormalizeRemote(remote string) string {
	u := strings.TrimSpace(remote)
	if rest, ok := strings.CutPrefix(u, "git@"); ok {
		if host, path, found := strings.Cut(rest, ":"); found {
			u = "https://" + host + "/" + path
		}
	}
	if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
		parsed.User = nil
		if parsed.Scheme == "ssh" || parsed.Scheme == "git" {
			parsed.Scheme = "https"
		}
		u = parsed.String()
	}
	u = strings.TrimSuffix(u, "/")
	return strings.TrimSuffix(u, ".git")
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
