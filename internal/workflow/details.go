package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/orion-edge/orion-cli/internal/orchestrator"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

const (
	outputCDNDomain    = "cdn_service.domain_name"
	outputCDNServiceID = "cdn_service.id"
)

func (w *Workflow) readOutputs(ctx context.Context) (orchestrator.Outputs, error) {
	if w.outputs == nil {
		return nil, errors.New("no output reader configured")
	}
	outputs, err := w.outputs.Outputs(ctx)
	if err != nil {
		w.logger.Warn("Reading deployment outputs failed", logger.Error(err))
		return nil, err
	}
	return outputs, nil
}

// viewDetails prints outputs, the backend URL and the cache config status
func (w *Workflow) viewDetails(ctx context.Context) {
	outputs, err := w.readOutputs(ctx)
	if err != nil {
		w.console.Warn(fmt.Sprintf("Could not read deployment outputs: %v", err))
	} else {
		w.printOutputs(outputs)
	}

	if url, err := w.state.BackendURL(); err == nil && url != "" {
		w.console.Info("Backend URL: " + url)
	}
	if changed, err := w.state.CacheConfigChanged(); err == nil && changed {
		w.console.Warn("Cache configuration has changed since the last deploy")
	}
}

// printOutputs renders outputs grouped by their first key segment
func (w *Workflow) printOutputs(outputs orchestrator.Outputs) {
	if len(outputs) == 0 {
		w.console.Info("No deployment outputs recorded")
		return
	}
	w.console.Note("Deployed", formatOutputs(outputs))
}

func formatOutputs(outputs orchestrator.Outputs) string {
	groups := map[string][]string{}
	var top []string
	for key := range outputs {
		group, _, found := strings.Cut(key, ".")
		if !found {
			top = append(top, key)
			continue
		}
		groups[group] = append(groups[group], key)
	}
	sort.Strings(top)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
		sort.Strings(groups[name])
	}
	sort.Strings(names)

	var b strings.Builder
	for _, key := range top {
		fmt.Fprintf(&b, "%s: %s\n", key, outputs[key])
	}
	for _, name := range names {
		fmt.Fprintf(&b, "\n%s\n", name)
		for _, key := range groups[name] {
			fmt.Fprintf(&b, "  %s: %s\n", strings.TrimPrefix(key, name+"."), outputs[key])
		}
	}
	return strings.TrimLeft(b.String(), "\n")
}
