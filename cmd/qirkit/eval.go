package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qirkit/internal/cache"
	"qirkit/internal/evaluator"
	"qirkit/internal/gates"
	"qirkit/internal/observ"
	"qirkit/internal/vm"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] [file.ll]",
	Short: "Evaluate a QIR program and print the gates it issues",
	Long: `Evaluate a QIR program against the gate logger. Measurement outcomes come
from --results, from a replayed run log, or read as zero when neither is given.
Without a file argument the program named in qirkit.toml is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvalCmd,
}

func init() {
	evalCmd.Flags().String("entry-point", "", "entry point to run when the module has several")
	evalCmd.Flags().String("results", "", "measurement outcomes in order, e.g. 1,0,1 or 101")
	evalCmd.Flags().String("exhaustion", "error", "what a measurement reads once --results runs out (error|zero)")
	evalCmd.Flags().Int("max-steps", 0, "abort after this many executed instructions (0 = unlimited)")
	evalCmd.Flags().String("replay", "", "replay the measurement outcomes of a run log and verify the gates match")
	evalCmd.Flags().String("record", "", "write an NDJSON run log to file")
	evalCmd.Flags().Bool("vm-trace", false, "trace every executed instruction to stderr")
	evalCmd.Flags().String("format", "text", "output format (text|json)")
	evalCmd.Flags().Bool("cache", false, "cache loaded programs under the user cache directory")
}

type evalOptions struct {
	Program    string
	EntryPoint string
	Results    []bool
	HasResults bool
	Exhaustion vm.ExhaustionMode
	MaxSteps   int
	Replay     string
	Record     string
	VMTrace    bool
	Format     string
	UseCache   bool
	Timings    bool
}

func runEvalCmd(cmd *cobra.Command, args []string) error {
	opts, err := readEvalOptions(cmd, args)
	if err != nil {
		return err
	}
	return runEval(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// readEvalOptions merges qirkit.toml defaults with explicitly set flags.
func readEvalOptions(cmd *cobra.Command, args []string) (evalOptions, error) {
	var opts evalOptions
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return opts, err
	}
	if manifest != nil {
		cfg := manifest.Config.Eval
		opts.Program = manifest.programPath()
		opts.EntryPoint = cfg.EntryPoint
		if cfg.Results != nil {
			opts.Results, opts.HasResults = cfg.Results, true
		}
		opts.Exhaustion, _ = vm.ParseExhaustionMode(cfg.Exhaustion)
		opts.MaxSteps = cfg.MaxSteps
	}
	if len(args) > 0 {
		opts.Program = args[0]
	}
	if opts.Program == "" {
		return opts, fmt.Errorf("%s", noManifestMessage)
	}

	flags := cmd.Flags()
	if flags.Changed("entry-point") {
		if opts.EntryPoint, err = flags.GetString("entry-point"); err != nil {
			return opts, err
		}
	}
	if flags.Changed("results") {
		s, err := flags.GetString("results")
		if err != nil {
			return opts, err
		}
		if opts.Results, err = vm.ParseResults(s); err != nil {
			return opts, fmt.Errorf("--results: %w", err)
		}
		opts.HasResults = true
	}
	if flags.Changed("exhaustion") {
		s, err := flags.GetString("exhaustion")
		if err != nil {
			return opts, err
		}
		if opts.Exhaustion, err = vm.ParseExhaustionMode(s); err != nil {
			return opts, fmt.Errorf("--exhaustion: %w", err)
		}
	}
	if flags.Changed("max-steps") {
		if opts.MaxSteps, err = flags.GetInt("max-steps"); err != nil {
			return opts, err
		}
	}
	if opts.Replay, err = flags.GetString("replay"); err != nil {
		return opts, err
	}
	if opts.Record, err = flags.GetString("record"); err != nil {
		return opts, err
	}
	if opts.VMTrace, err = flags.GetBool("vm-trace"); err != nil {
		return opts, err
	}
	if opts.Format, err = flags.GetString("format"); err != nil {
		return opts, err
	}
	if opts.UseCache, err = flags.GetBool("cache"); err != nil {
		return opts, err
	}
	if opts.Timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.HasResults && opts.Replay != "" {
		return opts, fmt.Errorf("--results and --replay are mutually exclusive")
	}
	return opts, nil
}

type evalPayload struct {
	Program  string         `json:"program"`
	Qubits   uint64         `json:"qubits"`
	Results  uint64         `json:"results"`
	Gates    []string       `json:"gates"`
	Metadata map[string]any `json:"metadata"`
}

func runEval(ctx context.Context, opts evalOptions, stdout, stderr io.Writer) (err error) {
	format := strings.ToLower(opts.Format)
	switch format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", opts.Format)
	}

	evalOpts := evaluator.Options{
		EntryPoint: opts.EntryPoint,
		MaxSteps:   opts.MaxSteps,
	}
	if opts.HasResults {
		evalOpts.Stream = vm.NewResultStream(opts.Results).WithMode(opts.Exhaustion)
	}
	if opts.Replay != "" {
		data, err := os.ReadFile(opts.Replay)
		if err != nil {
			return fmt.Errorf("read replay log: %w", err)
		}
		evalOpts.Replay = vm.NewReplayerFromBytes(data)
	}
	if opts.Record != "" {
		f, err := os.Create(opts.Record)
		if err != nil {
			return fmt.Errorf("create run log: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		evalOpts.Record = f
	}
	if opts.VMTrace {
		evalOpts.VMTrace = stderr
	}
	if opts.UseCache {
		c, err := cache.OpenDefault("qirkit")
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		evalOpts.Cache = c
	}
	if opts.Timings {
		evalOpts.Timer = observ.NewTimer()
		defer printTimings(stderr, evalOpts.Timer)
	}

	logger := gates.NewLogger()
	res, err := evaluator.Eval(ctx, evaluator.Source{Path: opts.Program}, logger, evalOpts)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(stdout, evalPayload{
			Program:  opts.Program,
			Qubits:   logger.NumQubits,
			Results:  logger.NumRegisters,
			Gates:    append([]string{}, logger.Instructions...),
			Metadata: res.Metadata,
		})
	}
	if err := printGateLog(stdout, logger); err != nil {
		return err
	}
	return printMetadata(stdout, res.Metadata)
}
