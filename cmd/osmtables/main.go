package main

import (
	"context"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omniscale/osmtables"
	"github.com/omniscale/osmtables/config"
	"github.com/omniscale/osmtables/import_"
	"github.com/omniscale/osmtables/logging"
	"github.com/omniscale/osmtables/reader"
	"github.com/omniscale/osmtables/sample"
	"github.com/omniscale/osmtables/stats"
)

var log = logging.NewLogger("")

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("invalid options:\n  %s", strings.Join(msgs, "\n  "))
}

func newImportCmd() *cobra.Command {
	opts := &config.Import{}
	cmd := &cobra.Command{
		Use:   "import --read FILE",
		Short: "Shape all nodes and ways of an OSM file into tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := joinErrors(opts.Finish(cmd.Flags())); err != nil {
				return err
			}
			logging.SetQuiet(opts.Quiet)
			logging.SetVerbose(opts.Verbose)
			if opts.HttpProfile != "" {
				stats.StartHttpPProf(opts.HttpProfile)
			}
			_, err := import_.Import(cmd.Context(), *opts)
			return err
		},
	}
	config.AddImportFlags(cmd.Flags(), opts)
	return cmd
}

func newSampleCmd() *cobra.Command {
	opts := &config.Sample{}
	cmd := &cobra.Command{
		Use:   "sample --read FILE --output FILE [-k N]",
		Short: "Write every k-th node and way of an OSM file as OSM XML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := joinErrors(opts.Check()); err != nil {
				return err
			}
			return sample.Run(cmd.Context(), opts.Read, opts.Output, opts.Every, reader.Options{
				Progress: opts.Progress,
			})
		},
	}
	config.AddSampleFlags(cmd.Flags(), opts)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), osmtables.Version)
		},
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "osmtables",
		Short:         "Convert OSM nodes and ways into flat tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newSampleCmd(), newVersionCmd())
	return root
}

func main() {
	golog.SetFlags(golog.LstdFlags | golog.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
	logging.Shutdown()
}
