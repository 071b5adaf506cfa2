package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathresolve/pathresolve/fsx"
	"github.com/pathresolve/pathresolve/resolver"
)

// main wires a single cobra root command, grounded on caddyserver-caddy's
// cmd/caddy and grafana-k6's cmd/root.go. It exists as a thin convenience
// layer over the resolver package's public API; no resolution logic lives
// here.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "pathresolve",
		Short:         "resolve a module request the way Node's require() and webpack's enhanced-resolve do",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newResolveCmd(&configPath, &verbose))
	return root
}

func newResolveCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <dir> <request>",
		Short: "resolve a request against a starting directory and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			options, err := loadConfig(*configPath, resolver.Options{
				FileSystem: fsx.NewOS(),
				Logger:     logger,
			})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			res, err := resolver.New(options)
			if err != nil {
				return err
			}

			result, err := res.ResolveSync(nil, args[0], args[1])
			if err != nil {
				return err
			}

			switch {
			case result.IsFound():
				fmt.Fprintln(cmd.OutOrStdout(), result.Path+result.Query+result.Fragment)
				return nil
			case result.IsIgnored():
				fmt.Fprintln(cmd.OutOrStdout(), "(ignored)")
				return nil
			default:
				fmt.Fprint(cmd.ErrOrStderr(), result.Attempts.String())
				return fmt.Errorf("could not resolve %q from %q", args[1], args[0])
			}
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
