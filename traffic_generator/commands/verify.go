package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Marco-Guerra/Datacenter-Flow-Workload/traffic_generator/packages/writer"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <trace>",
		Short: "Check that a trace is well formed",
		Long: `verify reads a trace back, checks that its count header matches the flow
lines, that no flow targets its own source and that start times never
decrease, then prints a summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			registers, err := writer.Read(file)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			stats, err := writer.Check(registers)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Flows: %s\n", humanize.Comma(int64(stats.Flows)))
			fmt.Fprintf(out, "Bytes: %s\n", humanize.Bytes(stats.TotalBytes))
			fmt.Fprintf(out, "Hosts: %d\n", stats.Hosts)
			fmt.Fprintf(out, "Span: %.9f - %.9f s\n", stats.FirstStart, stats.LastStart)

			return nil
		},
	}
}
