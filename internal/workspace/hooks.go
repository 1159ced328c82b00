package workspace

import (
	"context"

	"github.com/orion-edge/orion-cli/internal/orchestrator"
)

// Hooks returns the post-success bookkeeping for the orchestrator.
// After deploy the backend URL and cache configuration are written;
// after destroy the directory is cleaned.
func (w *Workspace) Hooks() orchestrator.Hooks {
	return orchestrator.Hooks{
		AfterDeploy: func(_ context.Context, config orchestrator.DeployConfig, _ orchestrator.Outputs) error {
			if err := w.SaveBackendURL(config.Backend.GraphQLURL); err != nil {
				return err
			}
			return w.EnsureCacheConfig()
		},
		AfterDestroy: func(context.Context, orchestrator.DestroyConfig) error {
			_, err := w.Clean()
			return err
		},
	}
}
