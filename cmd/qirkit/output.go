package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"qirkit/internal/gates"
	"qirkit/internal/vm"
)

var (
	gateColor  = color.New(color.FgCyan)
	labelColor = color.New(color.Faint)
	errorColor = color.New(color.FgRed, color.Bold)
)

// setupColor applies --color to the fatih/color global switch.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// printError writes err to w. Evaluation errors include their location and
// backtrace.
func printError(w io.Writer, err error) {
	var ee *vm.EvalError
	if errors.As(err, &ee) {
		first, rest, _ := strings.Cut(ee.Detailed(), "\n")
		fmt.Fprintf(w, "%s\n%s", errorColor.Sprint(first), rest)
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("error:"), err)
}

// printGateLog writes the logger's output with gate names highlighted.
func printGateLog(w io.Writer, l *gates.Logger) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "qubits[%d]\n", l.NumQubits)
	fmt.Fprintf(&sb, "out[%d]\n", l.NumRegisters)
	for _, in := range l.Instructions {
		name, rest, _ := strings.Cut(in, " ")
		sb.WriteString(gateColor.Sprint(name))
		if rest != "" {
			sb.WriteByte(' ')
			sb.WriteString(rest)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// printMetadata writes finish metadata as "key: value" lines, keys sorted.
func printMetadata(w io.Writer, meta map[string]any) error {
	var sb strings.Builder
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		if k == gates.MetaOutputs {
			continue
		}
		fmt.Fprintf(&sb, "%s %v\n", labelColor.Sprint(k+":"), meta[k])
	}
	if outs, ok := meta[gates.MetaOutputs].([]vm.Output); ok && len(outs) > 0 {
		fmt.Fprintf(&sb, "%s\n", labelColor.Sprint(gates.MetaOutputs+":"))
		for _, o := range outs {
			fmt.Fprintf(&sb, "  %s %s\n", runewidth.FillRight(string(o.Kind), 6), formatOutput(o))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatOutput(o vm.Output) string {
	value := fmt.Sprint(o.Value)
	if b, ok := o.Value.(bool); ok && o.Kind == vm.OutputResult {
		value = "0"
		if b {
			value = "1"
		}
	}
	if o.Label == "" {
		return value
	}
	return o.Label + " = " + value
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table renders rows with columns padded to the widest cell.
func table(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	var sb strings.Builder
	line := func(cells []string, style *color.Color) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				sb.WriteString(style.Sprint(cell))
				break
			}
			sb.WriteString(style.Sprint(runewidth.FillRight(cell, widths[i])))
			sb.WriteString("  ")
		}
		sb.WriteByte('\n')
	}
	line(header, labelColor)
	plain := color.New()
	for _, row := range rows {
		line(row, plain)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
