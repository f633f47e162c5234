package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qirkit/internal/evaluator"
	"qirkit/internal/qir"
)

var entrypointsCmd = &cobra.Command{
	Use:   "entrypoints [flags] <file.ll>",
	Short: "List the entry points and interop-friendly functions of a QIR module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attrs, err := cmd.Flags().GetStringSlice("attr")
		if err != nil {
			return fmt.Errorf("failed to get attr flag: %w", err)
		}
		m, _, err := evaluator.Load(cmd.Context(), evaluator.Source{Path: args[0]}, nil, nil)
		if err != nil {
			return err
		}
		return listEntryPoints(cmd.OutOrStdout(), m, attrs)
	},
}

func init() {
	entrypointsCmd.Flags().StringSlice("attr", nil, "extra attribute columns to show")
}

// listEntryPoints prints one row per entry point or interop-friendly
// function. Attribute columns show "-" when the attribute is absent.
func listEntryPoints(out io.Writer, m *qir.Module, attrs []string) error {
	header := append([]string{"name", "kind", "qubits", "results"}, attrs...)
	var rows [][]string
	for _, f := range m.Funcs {
		var kinds []string
		if f.IsEntryPoint() {
			kinds = append(kinds, "entry")
		}
		if f.IsInteropFriendly() {
			kinds = append(kinds, "interop")
		}
		if len(kinds) == 0 {
			continue
		}
		row := []string{f.Name, strings.Join(kinds, ","), attrCount(f.Attrs.RequiredQubits()), attrCount(f.Attrs.RequiredResults())}
		for _, key := range attrs {
			v, ok := f.Attrs.Value(key)
			switch {
			case !ok:
				v = "-"
			case v == "":
				v = "(set)"
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "no entry points")
		return err
	}
	return table(out, header, rows)
}

func attrCount(n uint64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatUint(n, 10)
}
