package workflow

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/orchestrator"
)

// Backend is the GraphQL origin the cache fronts
type Backend struct {
	Protocol     string `validate:"required,oneof=http https"`
	Host         string `validate:"required,hostname_rfc1123|ip"`
	Port         int    `validate:"min=1,max=65535"`
	HostOverride string `validate:"omitempty,hostname_rfc1123|ip"`
}

// URL returns protocol://host:port
func (b Backend) URL() string {
	return fmt.Sprintf("%s://%s", b.Protocol, net.JoinHostPort(b.Host, strconv.Itoa(b.Port)))
}

// Config converts the backend into the orchestrator's form
func (b Backend) Config() orchestrator.BackendConfig {
	return orchestrator.BackendConfig{
		GraphQLURL:   b.URL(),
		HostOverride: b.HostOverride,
	}
}

var validate = validator.New()

// ParseBackendURL accepts "host", "host:port" or "scheme://host[:port][/path]".
// The scheme defaults to http; the port defaults to 443 for https, 80 otherwise.
func ParseBackendURL(raw string) (Backend, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Backend{}, errors.New("please enter a URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Backend{}, fmt.Errorf("not a valid URL: %w", err)
	}

	b := Backend{
		Protocol: strings.ToLower(u.Scheme),
		Host:     u.Hostname(),
	}
	switch {
	case u.Port() != "":
		port, err := strconv.Atoi(u.Port())
		if err != nil {
			return Backend{}, fmt.Errorf("invalid port %q", u.Port())
		}
		b.Port = port
	case b.Protocol == "https":
		b.Port = 443
	default:
		b.Port = 80
	}

	if err := validate.Struct(b); err != nil {
		return Backend{}, describeValidation(err)
	}
	return b, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Protocol":
		return fmt.Errorf("unsupported protocol %q, use http or https", fe.Value())
	case "Host":
		return fmt.Errorf("invalid hostname %q", fe.Value())
	case "Port":
		return fmt.Errorf("port %v out of range", fe.Value())
	case "HostOverride":
		return fmt.Errorf("invalid Host header %q", fe.Value())
	}
	return err
}

func validateBackendURL(value string) error {
	_, err := ParseBackendURL(value)
	return err
}

func validateHostOverride(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("please enter a hostname")
	}
	if err := validate.Var(value, "hostname_rfc1123|ip"); err != nil {
		return fmt.Errorf("invalid hostname %q", value)
	}
	return nil
}

// AskBackend collects and confirms the backend origin. The operator may
// revise the answers until they confirm. Returns interaction.ErrCancelled
// when any prompt is aborted.
func (w *Workflow) AskBackend() (Backend, error) {
	w.console.Title("Setup")

	for {
		input, err := w.prompter.Input("What is your GraphQL server URL (e.g., http://example.com:4000):", interaction.InputOptions{
			Placeholder: "https://api.example.com",
			Validate:    validateBackendURL,
		})
		if err != nil {
			return Backend{}, err
		}
		backend, err := ParseBackendURL(input)
		if err != nil {
			return Backend{}, err
		}

		override, err := w.prompter.Confirm("Do you want to override the Host header sent to the GraphQL Server?", false)
		if err != nil {
			return Backend{}, err
		}
		backend.HostOverride = backend.Host
		if override {
			host, err := w.prompter.Input("What hostname do you want to use as the Host header override:", interaction.InputOptions{
				Validate: validateHostOverride,
			})
			if err != nil {
				return Backend{}, err
			}
			backend.HostOverride = strings.TrimSpace(host)
		}

		ok, err := w.prompter.Confirm(fmt.Sprintf(
			"Deploy cache for:\n  Backend: %s\n  Host Header: %s\nContinue?",
			backend.URL(), backend.HostOverride,
		), true)
		if err != nil {
			return Backend{}, err
		}
		if ok {
			return backend, nil
		}
	}
}
