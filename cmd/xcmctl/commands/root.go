// Package commands implements xcmctl, an operator CLI that builds and
// inspects transfer directives offline against the chain registry.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"xcmkit/internal/chain"
	"xcmkit/internal/directive"
	"xcmkit/internal/platform/logger"
	"xcmkit/internal/registry"
	"xcmkit/internal/resolver"
)

// env holds what every subcommand needs once flags are parsed.
type env struct {
	registryFile string
	endpoints    map[string]string
	logLevel     string

	log      *slog.Logger
	registry *registry.Registry
	chains   *chain.Set
	service  *directive.Service
}

func Execute() error {
	return NewRootCmd(os.Stdout, os.Stderr).Execute()
}

// NewRootCmd builds the command tree writing results to out.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "xcmctl",
		Short:         "Build and inspect XCM transfer directives",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(errOut)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.chains != nil {
				e.chains.Close()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&e.registryFile, "registry", "", "registry overlay file merged onto the built-in seed")
	root.PersistentFlags().StringToStringVar(&e.endpoints, "endpoint", nil, "live node per chain, e.g. statemine=wss://...")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "log level")

	root.AddCommand(classifyCmd(e), buildCmd(e), chainsCmd(e), tokenCmd())
	return root
}

func (e *env) setup(errOut io.Writer) error {
	e.log = logger.NewWithWriter(errOut, e.logLevel, "text")

	f, err := registry.Seed()
	if err != nil {
		return err
	}
	if e.registryFile != "" {
		overlay, err := registry.LoadFile(e.registryFile)
		if err != nil {
			return err
		}
		f = registry.Merge(f, overlay)
	}
	e.registry, err = registry.New(f, registry.WithLogger(e.log))
	if err != nil {
		return err
	}

	e.chains = chain.NewSet()
	for specName, url := range e.endpoints {
		c, err := chain.Dial(specName, url, chain.WithLogger(e.log))
		if err != nil {
			return err
		}
		if err := e.chains.Register(specName, c); err != nil {
			c.Close()
			return err
		}
	}

	res := resolver.New(e.registry, resolver.WithLogger(e.log), resolver.WithChains(e.chains))
	e.service = directive.NewService(e.registry, res,
		directive.WithLogger(e.log),
		directive.WithChains(e.chains),
	)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
