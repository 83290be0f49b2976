package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/dejadiff/internal/collector"
	"github.com/AndreyAkinshin/dejadiff/internal/config"
	"github.com/AndreyAkinshin/dejadiff/internal/driver"
	dderrors "github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/internal/sink"
	"github.com/AndreyAkinshin/dejadiff/internal/testparser"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <config>",
		Short: "Check a configuration file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <config>",
		Short: "Print a configuration file with defaults applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadAndValidate(args[0])
			if err != nil {
				return err
			}
			text, err := config.Dump(cfg)
			if err != nil {
				return dderrors.Wrap(err, "render config")
			}
			a.out.Print("%s", text)
			return nil
		},
	})
	return cmd
}

func (a *app) validateConfig(path string) error {
	cfg, warnings, err := config.LoadAndValidate(path)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	if err != nil {
		return err
	}
	if err := checkRegistries(cfg); err != nil {
		return err
	}

	a.out.Success("Configuration is valid.")
	values := map[string]string{
		"Description": cfg.Description,
		"Driver":      cfg.Driver,
		"Tests":       fmt.Sprintf("%d", len(cfg.DejaGnu.Tests)),
		"Sinks":       strings.Join(cfg.Sinks, ", "),
		"Collectors":  strings.Join(cfg.Collectors, ", "),
	}
	keys := []string{"Description", "Driver", "Tests", "Sinks", "Collectors"}
	if len(warnings) > 0 {
		values["Warnings"] = fmt.Sprintf("%d", len(warnings))
		keys = append(keys, "Warnings")
	}
	a.out.KeyValues(keys, values)
	return nil
}

// checkRegistries resolves every component name without constructing sinks
// or collectors, which may touch the network or the filesystem.
func checkRegistries(cfg *config.Config) error {
	if _, err := driver.NewRegistry().New(cfg.Driver, nil); err != nil {
		return err
	}
	parsers := testparser.NewRegistry()
	if parsers.GetParser(cfg.Driver) == nil {
		return dderrors.Configf("no transcript parser for driver %q", cfg.Driver)
	}
	sinks := sink.NewRegistry()
	for _, name := range cfg.Sinks {
		if !sinks.Has(name) {
			return dderrors.Configf("unknown sink %q (available: %s)", name, strings.Join(sinks.Names(), ", "))
		}
	}
	collectors := collector.NewRegistry()
	for _, name := range cfg.Collectors {
		if !collectors.Has(name) {
			return dderrors.Configf("unknown collector %q (available: %s)", name, strings.Join(collectors.Names(), ", "))
		}
	}
	return nil
}
