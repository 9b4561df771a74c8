package cli

import (
	"fmt"
	"io"

	"github.com/stackpact/stackpact/internal/config"
	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/pipeline"
)

// buildRequest assembles a pipeline request from the global options and
// loaded config.
func buildRequest(opts *Options, cfg *config.Config) (pipeline.Request, error) {
	env, err := identity.ParseEnvironment(opts.Env)
	if err != nil {
		return pipeline.Request{}, err
	}

	inputs, err := loadInputs(opts)
	if err != nil {
		return pipeline.Request{}, err
	}

	templates, err := loadTemplates(cfg.Templates.Dir)
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		RawInputs:   inputs,
		Environment: env,
		Templates:   templates,
	}, nil
}

// printViolations writes the violation list in a stable, scriptable layout.
func printViolations(w io.Writer, result pipeline.Result) {
	for _, v := range result.Violations {
		if v.Value != "" {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Rule, v.Class, v.Value, v.Reason)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Rule, v.Class, v.Reason)
		}
	}
}

// terminalError maps a terminal pipeline state to the CLI sentinel errors.
func terminalError(result pipeline.Result) error {
	switch result.State {
	case pipeline.StateBlocked:
		return ErrGateBlocked
	case pipeline.StateFailed:
		return ErrPolicyFailed
	default:
		return nil
	}
}
