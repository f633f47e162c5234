package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qirkit/internal/evaluator"
	"qirkit/internal/qir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file.ll>",
	Short: "Print the program model of a QIR module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := cmd.Flags().GetBool("declarations")
		if err != nil {
			return fmt.Errorf("failed to get declarations flag: %w", err)
		}
		m, _, err := evaluator.Load(cmd.Context(), evaluator.Source{Path: args[0]}, nil, nil)
		if err != nil {
			return err
		}
		return qir.DumpModule(cmd.OutOrStdout(), m, qir.DumpOptions{Declarations: decls})
	},
}

func init() {
	dumpCmd.Flags().Bool("declarations", true, "include external declarations")
}
