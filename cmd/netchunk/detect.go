package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/netconfig-mcp/internal/dialect"
)

func (a *app) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the OS type of a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			detector, err := a.cfg.NewDetector()
			if err != nil {
				return err
			}

			result := detector.Detect(string(data))
			out := cmd.OutOrStdout()
			if result.Confident {
				fmt.Fprintf(out, "%s\n", result.Dialect)
			} else {
				fmt.Fprintf(out, "%s (%v)\n", dialect.Generic, result.Err())
			}
			fmt.Fprintf(out, "scores: %s\n", result.FormatScores())
			return nil
		},
	}
}

func (a *app) dialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported OS types and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := dialect.NewRegistry()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALIASES\tSECTION PATTERNS")
			for _, def := range registry.Dialects() {
				fmt.Fprintf(w, "%s\t%s\t%d\n",
					def.Name(), strings.Join(registry.AliasesOf(def.Name()), ", "), len(def.Patterns()))
			}
			return w.Flush()
		},
	}
}
