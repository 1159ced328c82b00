package resolver

import (
	"fmt"
	"strings"

	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/interaction"
)

const (
	sourceMenuTitle        = "How would you like to provide credentials?"
	sourceMenuTitleDestroy = "How would you like to provide credentials for destroy?"
	manualOnlyNotice       = "No saved or environment credentials found. Please enter credentials."
)

// ManualEntry is the result of the manual-entry sub-flow
type ManualEntry struct {
	Set credentials.CredentialSet

	// Save records the operator's answer to the persist question
	Save bool
}

// SourceOptions builds the source menu for sources. Saved and env appear
// only when complete; manual is always last.
func SourceOptions(sources credentials.Sources) []interaction.SelectOption {
	var options []interaction.SelectOption
	if sources.Saved.Complete {
		options = append(options, interaction.SelectOption{
			Label: "Use saved credentials",
			Value: credentials.SourceSaved.String(),
			Hint:  sources.SavedPath,
		})
	}
	if sources.Env.Complete {
		options = append(options, interaction.SelectOption{
			Label: "Use environment variables",
			Value: credentials.SourceEnv.String(),
		})
	}
	return append(options, interaction.SelectOption{
		Label: "Enter credentials manually",
		Value: credentials.SourceManual.String(),
	})
}

// PromptForSource asks where credentials should come from. When manual entry
// is the only option the menu is skipped. Returns interaction.ErrCancelled on abort.
func (r *Resolver) PromptForSource(sources credentials.Sources, purpose credentials.Purpose) (credentials.Source, error) {
	options := SourceOptions(sources)
	if len(options) == 1 {
		r.console.Info(manualOnlyNotice)
		return credentials.SourceManual, nil
	}

	title := sourceMenuTitle
	if purpose == credentials.PurposeDestroy {
		title = sourceMenuTitleDestroy
	}

	choice, err := r.prompter.Select(title, options)
	if err != nil {
		return "", err
	}

	source := credentials.Source(choice)
	if !source.IsValid() {
		return "", fmt.Errorf("unknown credential source %q", choice)
	}
	return source, nil
}

// CollectManual prompts for access key ID, secret access key, region and CDN
// token, in that order, then asks whether to save them. Any cancellation
// aborts the whole entry with interaction.ErrCancelled.
func (r *Resolver) CollectManual() (ManualEntry, error) {
	accessKey, err := r.prompter.Input("AWS Access Key ID:", interaction.InputOptions{
		Validate: interaction.Required("Access Key ID is required"),
	})
	if err != nil {
		return ManualEntry{}, err
	}

	secret, err := r.prompter.Input("AWS Secret Access Key:", interaction.InputOptions{
		Secret:   true,
		Validate: interaction.Required("Secret Access Key is required"),
	})
	if err != nil {
		return ManualEntry{}, err
	}

	region, err := r.promptRegion()
	if err != nil {
		return ManualEntry{}, err
	}

	token, err := r.prompter.Input("Fastly API Token:", interaction.InputOptions{
		Secret:   true,
		Validate: interaction.Required("API Token is required"),
	})
	if err != nil {
		return ManualEntry{}, err
	}

	save, err := r.prompter.Confirm("Save credentials for future use?", true)
	if err != nil {
		return ManualEntry{}, err
	}

	return ManualEntry{
		Set: credentials.CredentialSet{
			CloudCompute: &credentials.CloudComputeCredentials{
				AccessKeyID:     strings.TrimSpace(accessKey),
				SecretAccessKey: strings.TrimSpace(secret),
				Region:          region,
			},
			CDN:    &credentials.CDNCredentials{APIToken: strings.TrimSpace(token)},
			Source: credentials.SourceManual,
		},
		Save: save,
	}, nil
}

func (r *Resolver) promptRegion() (string, error) {
	useDefault, err := r.prompter.Confirm(
		fmt.Sprintf("Use default AWS region (%s)?", r.defaultRegion), true)
	if err != nil {
		return "", err
	}
	if useDefault {
		return r.defaultRegion, nil
	}

	region, err := r.prompter.Input("AWS Region:", interaction.InputOptions{
		Placeholder: "us-west-2",
		Validate:    interaction.Required("Region is required"),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(region), nil
}
