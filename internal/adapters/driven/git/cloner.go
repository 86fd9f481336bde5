// Package git implements the Cloner port with the git command line.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
	"github.com/devops-actions/load-available-actions/internal/core/ports/driven"
)

const (
	// DefaultTimeout bounds a single clone.
	DefaultTimeout = 5 * time.Minute

	// tokenUser is the user name GitHub expects alongside a token.
	tokenUser = "x-access-token"

	redacted = "***"
)

// skipDirs are never descended into while scanning a working copy.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Cloner shallow-clones repositories with the git binary.
type Cloner struct {
	token   string
	timeout time.Duration
	binary  string
}

// Verify interface compliance.
var _ driven.Cloner = (*Cloner)(nil)

// NewCloner creates a cloner that authenticates https clones with token.
func NewCloner(token string, timeout time.Duration) *Cloner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cloner{token: token, timeout: timeout, binary: "git"}
}

// Clone replaces dir with a depth 1 clone of cloneURL.
func (c *Cloner) Clone(ctx context.Context, cloneURL, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dir, err)
	}

	authURL, err := c.withCredentials(cloneURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "clone", "--depth", "1", "--quiet", authURL, dir)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("git clone %s: timeout after %v", cloneURL, c.timeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("git clone %s: %w: %s", cloneURL, err, c.redact(strings.TrimSpace(stderr.String())))
	}
	return nil
}

// withCredentials embeds the token into https URLs.
func (c *Cloner) withCredentials(cloneURL string) (string, error) {
	if c.token == "" {
		return cloneURL, nil
	}
	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("%w: clone url %q", domain.ErrInvalidInput, cloneURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return cloneURL, nil
	}
	u.User = url.UserPassword(tokenUser, c.token)
	return u.String(), nil
}

func (c *Cloner) redact(s string) string {
	if c.token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.token, redacted)
}

// FindActionFiles walks root for action definitions and Dockerfiles.
// Returned paths are relative to root and slash separated.
func (c *Cloner) FindActionFiles(root string) ([]domain.LocalFile, error) {
	var files []domain.LocalFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !domain.IsActionFileName(d.Name()) && !domain.IsDockerfileName(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, domain.LocalFile{
			Path:    filepath.ToSlash(rel),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return files, nil
}
