package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qirkit/internal/batch"
	"qirkit/internal/cache"
	"qirkit/internal/evaluator"
	"qirkit/internal/observ"
	"qirkit/internal/vm"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] [file.ll]",
	Short: "Evaluate a QIR program once per line of a shots file",
	Long: `Evaluate a QIR program once per shot. Each line of the shots file holds the
measurement outcomes of one shot ("101" or "1,0,1"), "-" for a shot without
outcomes, and an optional "*N" repeat suffix. Shots run in parallel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatchCmd,
}

func init() {
	batchCmd.Flags().String("shots", "", "shots file (- for stdin)")
	batchCmd.Flags().Int("jobs", 0, "parallel evaluations (0 = GOMAXPROCS)")
	batchCmd.Flags().String("entry-point", "", "entry point to run when the module has several")
	batchCmd.Flags().String("exhaustion", "error", "what a measurement reads once a shot runs out (error|zero)")
	batchCmd.Flags().Int("max-steps", 0, "abort a shot after this many executed instructions (0 = unlimited)")
	batchCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	batchCmd.Flags().Bool("cache", false, "cache loaded programs under the user cache directory")
}

type batchOptions struct {
	Program    string
	EntryPoint string
	ShotsFile  string
	Shots      []string
	Jobs       int
	Exhaustion vm.ExhaustionMode
	MaxSteps   int
	UI         uiMode
	UseCache   bool
	Timings    bool
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	opts, err := readBatchOptions(cmd, args)
	if err != nil {
		return err
	}
	return runBatch(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func readBatchOptions(cmd *cobra.Command, args []string) (batchOptions, error) {
	var opts batchOptions
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return opts, err
	}
	if manifest != nil {
		opts.Program = manifest.programPath()
		opts.EntryPoint = manifest.Config.Eval.EntryPoint
		opts.Exhaustion, _ = vm.ParseExhaustionMode(manifest.Config.Eval.Exhaustion)
		opts.MaxSteps = manifest.Config.Eval.MaxSteps
		opts.Jobs = manifest.Config.Batch.Jobs
		opts.Shots = manifest.Config.Batch.Shots
	}
	if len(args) > 0 {
		opts.Program = args[0]
	}
	if opts.Program == "" {
		return opts, fmt.Errorf("%s", noManifestMessage)
	}

	flags := cmd.Flags()
	if opts.ShotsFile, err = flags.GetString("shots"); err != nil {
		return opts, err
	}
	if opts.ShotsFile == "" && opts.Shots == nil {
		return opts, fmt.Errorf("no shots given: use --shots or [batch].shots in %s", manifestName)
	}
	if flags.Changed("jobs") {
		if opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, err
		}
	}
	if flags.Changed("entry-point") {
		if opts.EntryPoint, err = flags.GetString("entry-point"); err != nil {
			return opts, err
		}
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
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.UI, err = readUIMode(uiFlag); err != nil {
		return opts, err
	}
	if opts.UseCache, err = flags.GetBool("cache"); err != nil {
		return opts, err
	}
	if opts.Timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, err
	}
	return opts, nil
}

func readJobs(opts batchOptions, stdin io.Reader) ([]batch.Job, error) {
	switch opts.ShotsFile {
	case "":
		return batch.Shots(opts.Shots)
	case "-":
		return batch.ParseShots(stdin)
	}
	f, err := os.Open(opts.ShotsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return batch.ParseShots(f)
}

func runBatch(ctx context.Context, opts batchOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	jobs, err := readJobs(opts, stdin)
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
		defer printTimings(stderr, timer)
	}
	var c *cache.DiskCache
	if opts.UseCache {
		if c, err = cache.OpenDefault("qirkit"); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}
	m, _, err := evaluator.Load(ctx, evaluator.Source{Path: opts.Program}, c, timer)
	if err != nil {
		return err
	}

	batchOpts := batch.Options{
		EntryPoint: opts.EntryPoint,
		Jobs:       opts.Jobs,
		MaxSteps:   opts.MaxSteps,
		Exhaustion: opts.Exhaustion,
		Timer:      timer,
	}
	idx := timer.Begin("batch")
	var res *batch.Result
	if useProgressUI(opts.UI, opts.ShotsFile) {
		res, err = runBatchWithUI(ctx, opts.Program, jobs, m, batchOpts)
	} else {
		res, err = batch.Run(ctx, m, jobs, batchOpts)
	}
	timer.End(idx, fmt.Sprintf("jobs=%d", len(jobs)))
	if err != nil {
		return err
	}
	if err := printBatchSummary(stdout, res); err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d shots failed", res.Failed, len(res.Jobs))
	}
	return nil
}

func printBatchSummary(out io.Writer, res *batch.Result) error {
	hist := res.Histogram()
	rows := make([][]string, 0, len(hist))
	for _, k := range res.Outcomes() {
		label := k
		if label == "" {
			label = "(none)"
		}
		rows = append(rows, []string{label, strconv.Itoa(hist[k])})
	}
	if err := table(out, []string{"outcome", "count"}, rows); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "\ngates: %s\n", res.Gates); err != nil {
		return err
	}
	if res.Failed == 0 {
		return nil
	}
	var failed [][]string
	for _, j := range res.Jobs {
		if j.Err != nil {
			failed = append(failed, []string{j.Name, strings.TrimSpace(j.Err.Error())})
		}
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	return table(out, []string{"failed", "error"}, failed)
}
