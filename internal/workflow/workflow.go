// Package workflow runs the interactive setup menus and sequences credential
// resolution, the backend prompt and the deploy and destroy operations.
package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/orchestrator"
	"github.com/orion-edge/orion-cli/internal/outcome"
	"github.com/orion-edge/orion-cli/internal/resolver"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// CredentialResolver runs the credential resolution loop
type CredentialResolver interface {
	Resolve(ctx context.Context, purpose credentials.Purpose) outcome.Result[resolver.Resolution]
}

// Operations runs deploy and destroy with operator-driven recovery
type Operations interface {
	Deploy(ctx context.Context, config orchestrator.DeployConfig) outcome.Result[orchestrator.Outputs]
	Destroy(ctx context.Context, config orchestrator.DestroyConfig) outcome.Result[struct{}]
}

// State answers questions about the local working state
type State interface {
	StateExists() bool
	BackendURL() (string, error)
	CacheConfigChanged() (bool, error)
}

// OutputReader reads the outputs of the deployed infrastructure
type OutputReader interface {
	Outputs(ctx context.Context) (orchestrator.Outputs, error)
}

// CachePurger invalidates everything cached by a CDN service
type CachePurger interface {
	PurgeAll(ctx context.Context, token, serviceID string) error
}

// Config holds workflow configuration
type Config struct {
	Resolver   CredentialResolver
	Operations Operations
	State      State
	Outputs    OutputReader
	Purger     CachePurger
	Prompter   interaction.Prompter
	Console    *interaction.Console
	Progress   interaction.Progress
	Logger     logger.Logger
}

// Workflow is the top-level interactive session
type Workflow struct {
	resolver   CredentialResolver
	operations Operations
	state      State
	outputs    OutputReader
	purger     CachePurger
	prompter   interaction.Prompter
	console    *interaction.Console
	progress   interaction.Progress
	logger     logger.Logger
}

// New creates a workflow
func New(config Config) *Workflow {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Console == nil {
		config.Console = interaction.NewConsole(io.Discard)
	}
	if config.Progress == nil {
		config.Progress = interaction.NewSpinner(io.Discard, false)
	}
	return &Workflow{
		resolver:   config.Resolver,
		operations: config.Operations,
		state:      config.State,
		outputs:    config.Outputs,
		purger:     config.Purger,
		prompter:   config.Prompter,
		console:    config.Console,
		progress:   config.Progress,
		logger:     config.Logger,
	}
}

// next tells the main loop where to go after a sub-flow
type next int

const (
	nextMenu next = iota
	nextExit
)

const (
	actionCreate  = "create"
	actionView    = "view"
	actionReadme  = "readme"
	actionExit    = "exit"
	actionBack    = "back"
	actionDestroy = "destroy"
	actionPurge   = "purge"
)

// Run shows the initial menu until the operator exits. Cancellations and
// operation failures return to the menu; only an unexpected prompt failure
// is returned.
func (w *Workflow) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := w.askInitialAction()
		if err != nil {
			return err
		}
		w.logger.Info("Initial action selected", logger.String("action", action))

		var n next
		switch action {
		case actionCreate:
			n, err = w.create(ctx)
		case actionView:
			n, err = w.existingState(ctx)
		case actionReadme:
			n, err = w.readme()
		default:
			n = nextExit
		}
		if err != nil {
			return err
		}
		if n == nextExit {
			break
		}
	}

	w.console.Info("Goodbye")
	return nil
}

// askInitialAction offers create, view (only with state), readme and exit.
// Choosing create over existing state needs confirmation; declining asks again.
func (w *Workflow) askInitialAction() (string, error) {
	for {
		hasState := w.state.StateExists()

		options := []interaction.SelectOption{{Label: "Create New Edge Cache", Value: actionCreate}}
		if hasState {
			options = append(options, interaction.SelectOption{Label: "View Current Cache", Value: actionView})
		}
		options = append(options,
			interaction.SelectOption{Label: "View Usage Guide", Value: actionReadme},
			interaction.SelectOption{Label: "Exit", Value: actionExit},
		)

		choice, err := w.prompter.Select("Welcome to Orion - Edge Cache for GraphQL", options)
		if err != nil {
			if interaction.IsCancelled(err) {
				return actionExit, nil
			}
			return "", err
		}

		if choice != actionCreate || !hasState {
			return choice, nil
		}

		w.console.Warn("Creating a new edge cache will DESTROY your current infrastructure and build a new one!")
		ok, err := w.prompter.Confirm("Do you want to proceed?", false)
		if err != nil && !interaction.IsCancelled(err) {
			return "", err
		}
		if err == nil && ok {
			return actionCreate, nil
		}
	}
}

// create resolves deploy credentials, tears down existing infrastructure
// with them when state exists, asks for the backend and deploys.
func (w *Workflow) create(ctx context.Context) (next, error) {
	res := w.resolver.Resolve(ctx, credentials.PurposeDeploy)
	resolution, ok := res.Value()
	if !ok {
		return nextMenu, nil
	}

	if w.state.StateExists() {
		destroyed := w.operations.Destroy(ctx, orchestrator.DestroyConfig{Credentials: resolution.Set})
		if !destroyed.IsSucceeded() {
			return nextMenu, nil
		}
		w.console.Success("Old cache infrastructure destroyed")
	}

	backend, err := w.AskBackend()
	if err != nil {
		if interaction.IsCancelled(err) {
			w.console.Cancelled()
			return nextMenu, nil
		}
		return nextMenu, err
	}

	deployed := w.operations.Deploy(ctx, orchestrator.DeployConfig{
		Credentials:     resolution.Set,
		Backend:         backend.Config(),
		UseEnv:          resolution.UseEnv,
		SaveCredentials: resolution.SaveCredentials,
	})
	outputs, ok := deployed.Value()
	if !ok {
		return nextMenu, nil
	}

	w.console.Success("Deployment complete")
	w.printOutputs(outputs)
	return w.existingState(ctx)
}

// existingState is the cache menu shown while infrastructure exists
func (w *Workflow) existingState(ctx context.Context) (next, error) {
	w.console.Title("Cache Menu")
	if outputs, err := w.readOutputs(ctx); err == nil {
		if domain := outputs[outputCDNDomain]; domain != "" {
			w.console.Message(fmt.Sprintf("Current Cache URL: https://%s/graphql", domain))
		}
	}

	for {
		options := []interaction.SelectOption{{Label: "View Details", Value: actionView}}
		if w.purger != nil {
			options = append(options, interaction.SelectOption{Label: "Purge All Cache", Value: actionPurge})
		}
		options = append(options,
			interaction.SelectOption{Label: "Destroy existing cache", Value: actionDestroy},
			interaction.SelectOption{Label: "Back to menu", Value: actionBack},
			interaction.SelectOption{Label: "Exit", Value: actionExit},
		)

		choice, err := w.prompter.Select("Terraform state file exists. What would you like to do?", options)
		if err != nil {
			if interaction.IsCancelled(err) {
				return nextMenu, nil
			}
			return nextMenu, err
		}

		switch choice {
		case actionView:
			w.viewDetails(ctx)
		case actionPurge:
			if err := w.purge(ctx); err != nil {
				return nextMenu, err
			}
		case actionDestroy:
			return w.destroy(ctx)
		case actionExit:
			return nextExit, nil
		default:
			return nextMenu, nil
		}
	}
}

// destroy confirms, resolves destroy credentials and tears down.
// Whatever happens the operator lands back on the initial menu.
func (w *Workflow) destroy(ctx context.Context) (next, error) {
	ok, err := w.prompter.Confirm("Confirm destroy infrastructure?", false)
	if err != nil {
		if interaction.IsCancelled(err) {
			return nextMenu, nil
		}
		return nextMenu, err
	}
	if !ok {
		return nextMenu, nil
	}

	res := w.resolver.Resolve(ctx, credentials.PurposeDestroy)
	resolution, ok := res.Value()
	if !ok {
		return nextMenu, nil
	}

	w.operations.Destroy(ctx, orchestrator.DestroyConfig{Credentials: resolution.Set})
	return nextMenu, nil
}

// purge confirms, resolves credentials and purges every object cached by
// the deployed CDN service. The operator stays on the cache menu; only an
// unexpected prompt failure is returned.
func (w *Workflow) purge(ctx context.Context) error {
	ok, err := w.prompter.Confirm("Confirm purge all cache?", false)
	if err != nil {
		if interaction.IsCancelled(err) {
			return nil
		}
		return err
	}
	if !ok {
		return nil
	}

	outputs, err := w.readOutputs(ctx)
	if err != nil {
		w.console.Error(fmt.Sprintf("Could not read deployment outputs: %v", err))
		return nil
	}
	serviceID := outputs[outputCDNServiceID]
	if serviceID == "" {
		w.console.Error("Deployment outputs do not include a CDN service ID")
		return nil
	}

	res := w.resolver.Resolve(ctx, credentials.PurposePurge)
	resolution, ok := res.Value()
	if !ok {
		return nil
	}
	var token string
	if resolution.Set.CDN != nil {
		token = resolution.Set.CDN.APIToken
	}

	w.progress.Start("Purging CDN cache")
	if err := w.purger.PurgeAll(ctx, token, serviceID); err != nil {
		w.logger.Error("Cache purge failed",
			logger.String("service_id", serviceID),
			logger.Error(err),
		)
		w.progress.Fail("Cache purge failed")
		w.console.Error(err.Error())
		return nil
	}
	w.logger.Info("Cache purged", logger.String("service_id", serviceID))
	w.progress.Success("Cache purged successfully")
	return nil
}

func (w *Workflow) readme() (next, error) {
	w.console.Note("Orion - Edge Cache CLI", usageGuide)

	choice, err := w.prompter.Select("Usage Guide", []interaction.SelectOption{
		{Label: "Back to Main", Value: actionBack},
		{Label: "Exit", Value: actionExit},
	})
	if err != nil {
		if interaction.IsCancelled(err) {
			w.console.Cancelled()
			return nextMenu, nil
		}
		return nextMenu, err
	}
	if choice == actionExit {
		return nextExit, nil
	}
	return nextMenu, nil
}
