package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Check represents a single preflight check
type Check func(ctx context.Context) error

// HTTPCheck verifies an HTTP endpoint is reachable. Any response below 500
// counts as reachable: an unauthenticated 401 still proves the API is up.
func HTTPCheck(url string, timeout time.Duration) Check {
	return func(ctx context.Context) error {
		client := &http.Client{
			Timeout: timeout,
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		return nil
	}
}

// BinaryCheck verifies that an executable is on PATH (or at the given path)
func BinaryCheck(name string) Check {
	return func(ctx context.Context) error {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("%s not found: %w", name, err)
		}
		return nil
	}
}

// WritableDirCheck verifies dir exists (creating it if needed) and accepts new files
func WritableDirCheck(dir string) Check {
	return func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
		probe, err := os.CreateTemp(dir, ".orion-probe-*")
		if err != nil {
			return fmt.Errorf("%s is not writable: %w", dir, err)
		}
		name := probe.Name()
		probe.Close()
		return os.Remove(name)
	}
}

// DirCheck verifies that dir exists and is a directory
func DirCheck(dir string) Check {
	return func(ctx context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", filepath.Clean(dir))
		}
		return nil
	}
}

// AlwaysHealthy is a check that always passes
func AlwaysHealthy() Check {
	return func(ctx context.Context) error {
		return nil
	}
}

// AlwaysUnhealthy is a check that always fails
func AlwaysUnhealthy(reason string) Check {
	return func(ctx context.Context) error {
		return fmt.Errorf("%s", reason)
	}
}

// CombinedCheck combines multiple checks with AND logic
func CombinedCheck(checks ...Check) Check {
	return func(ctx context.Context) error {
		for i, check := range checks {
			if err := check(ctx); err != nil {
				return fmt.Errorf("check %d failed: %w", i, err)
			}
		}
		return nil
	}
}

// SimpleCheck wraps a function that doesn't need context
func SimpleCheck(fn func() error) Check {
	return func(ctx context.Context) error {
		return fn()
	}
}
