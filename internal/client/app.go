package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/models"
)

// rootOptions holds the global flags. They default to the loaded config.
type rootOptions struct {
	address string
	timeout time.Duration

	server adapter.ServerAdapter
}

type App struct {
	cfg       config.ClientAdapter
	buildInfo models.AppBuildInfo
	out       io.Writer
	logger    *logger.Logger
}

// NewApp returns a CLI writing command output to out.
func NewApp(cfg config.ClientAdapter, buildInfo models.AppBuildInfo, out io.Writer, logger *logger.Logger) *App {
	return &App{cfg: cfg, buildInfo: buildInfo, out: out, logger: logger}
}

func (a *App) Run(ctx context.Context, args []string) error {
	root := a.newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "secret-client",
		Short:         "One-time secrets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			server, err := adapter.NewHTTPServerAdapter(config.ClientAdapter{
				HTTPAddress:    opts.address,
				RequestTimeout: opts.timeout,
			}, a.logger)
			if err != nil {
				return err
			}
			opts.server = server
			return nil
		},
	}
	cmd.SetOut(a.out)

	cmd.PersistentFlags().StringVarP(&opts.address, "address", "a", a.cfg.HTTPAddress, "server address")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", a.cfg.RequestTimeout, "request timeout")

	cmd.AddCommand(newCreateCommand(opts))
	cmd.AddCommand(newViewCommand(opts))
	cmd.AddCommand(newBurnCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newVersionCommand(a.buildInfo))

	return cmd
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <data>",
		Short: "Store a secret that can be read once",
		Long:  "Store a secret that can be read once. Pass - to read the secret from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := args[0]
			if data == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				data = strings.TrimRight(string(raw), "\n")
			}

			id, err := opts.server.CreateSecret(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newViewCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view <id>",
		Short: "Read and consume a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := opts.server.ViewSecret(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload.Data)
			return nil
		},
	}
}

func newBurnCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "burn <id>",
		Short: "Delete a secret without reading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.server.BurnSecret(cmd.Context(), args[0])
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print how many secrets were created",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				created, err := opts.server.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), created)
				return nil
			}

			stats, err := opts.server.StatsAll(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print created, read and deleted counters as JSON")

	return cmd
}

// newVersionCommand prints the build metadata. It needs no server, so the
// root pre-run is replaced by a no-op.
func newVersionCommand(info models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print build information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), info)
		},
	}
}
