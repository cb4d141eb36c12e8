package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clearclown/markpdfdown/internal/container"
	"github.com/clearclown/markpdfdown/internal/convert"
	"github.com/clearclown/markpdfdown/internal/envfile"
	"github.com/clearclown/markpdfdown/internal/history"
	"github.com/clearclown/markpdfdown/internal/pagecount"
	"github.com/clearclown/markpdfdown/internal/worker"
	"github.com/clearclown/markpdfdown/pkg/types"
)

const (
	defaultPagesPerJob = 50
	defaultMaxParallel = 4
	defaultStartDelay  = 1 * time.Second
	defaultJobTimeout  = 15 * time.Minute
	defaultImage       = "markpdfdown:latest"
)

var convertCmd = &cobra.Command{
	Use:   "convert INPUT OUTPUT [PAGES_PER_JOB [MAX_PARALLEL]]",
	Short: "Convert a document to Markdown with parallel page-range workers",
	Long: `Convert runs the full pipeline against one document: discover the page
count, split it into contiguous ranges of at most PAGES_PER_JOB pages, convert
every range with its own worker, and merge the parts into OUTPUT in page
order. Failed ranges leave gaps instead of aborting the run.

The optional positional PAGES_PER_JOB and MAX_PARALLEL override their flags.
A single range covering the whole document invokes the worker without page
bounds, letting the worker pick its own strategy.`,
	Args: cobra.RangeArgs(2, 4),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Int("pages", 0, "explicit page count (skips discovery)")
	convertCmd.Flags().Int("pages-per-job", defaultPagesPerJob, "maximum pages per worker job")
	convertCmd.Flags().Int("max-parallel", defaultMaxParallel, "maximum jobs running at once")
	convertCmd.Flags().Duration("start-delay", defaultStartDelay, "delay between consecutive job starts")
	convertCmd.Flags().Duration("job-timeout", defaultJobTimeout, "per-job timeout (0 disables)")
	convertCmd.Flags().String("backend", "container", "worker backend: container or command")
	convertCmd.Flags().String("image", defaultImage, "container image for the worker")
	convertCmd.Flags().String("worker-cmd", "", "worker executable for the command backend")
	convertCmd.Flags().String("env-file", "", "dotenv file passed through to workers")
	convertCmd.Flags().String("pages-backend", "native", "page discovery backend: native or pdfinfo")
	convertCmd.Flags().String("work-dir", "", "parent directory for the run-scoped parts dir")
	convertCmd.Flags().Bool("keep-parts", false, "keep the parts directory after the run")
	convertCmd.Flags().Bool("manifest", false, "write a YAML run manifest next to the artifact")
	convertCmd.Flags().Bool("no-history", false, "skip recording the run in the history ledger")

	_ = viper.BindPFlag("worker.backend", convertCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("worker.image", convertCmd.Flags().Lookup("image"))
	_ = viper.BindPFlag("worker.command", convertCmd.Flags().Lookup("worker-cmd"))
	_ = viper.BindPFlag("worker.env_file", convertCmd.Flags().Lookup("env-file"))
	_ = viper.BindPFlag("pages.backend", convertCmd.Flags().Lookup("pages-backend"))
	_ = viper.BindPFlag("run.pages_per_job", convertCmd.Flags().Lookup("pages-per-job"))
	_ = viper.BindPFlag("run.max_parallel", convertCmd.Flags().Lookup("max-parallel"))
	_ = viper.BindPFlag("run.start_delay", convertCmd.Flags().Lookup("start-delay"))
	_ = viper.BindPFlag("run.job_timeout", convertCmd.Flags().Lookup("job-timeout"))
	_ = viper.BindPFlag("history.disabled", convertCmd.Flags().Lookup("no-history"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	settings := runSettings()
	if len(args) >= 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("pages per job must be an integer, got %q", args[2])
		}
		settings.PagesPerJob = n
	}
	if len(args) == 4 {
		n, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("max parallel must be an integer, got %q", args[3])
		}
		settings.MaxParallel = n
	}

	env, err := envfile.Load(viper.GetString("worker.env_file"))
	if err != nil {
		return err
	}
	if len(env) > 0 {
		fmt.Fprintf(os.Stderr, "Loaded worker env: %v\n", envfile.Keys(env))
	}

	counter, err := buildCounter()
	if err != nil {
		return err
	}
	invoker, err := buildInvoker(env)
	if err != nil {
		return err
	}

	pages, _ := cmd.Flags().GetInt("pages")
	keepParts, _ := cmd.Flags().GetBool("keep-parts")
	manifest, _ := cmd.Flags().GetBool("manifest")
	workDir, _ := cmd.Flags().GetString("work-dir")

	opts := convert.Options{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		Pages:       pages,
		PagesPerJob: settings.PagesPerJob,
		MaxParallel: settings.MaxParallel,
		StartDelay:  settings.StartDelay,
		JobTimeout:  settings.JobTimeout,
		KeepParts:   keepParts,
		Manifest:    manifest,
		WorkDir:     workDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := convert.Deps{Counter: counter, Invoker: invoker, Log: logger}
	report, err := convert.Run(ctx, deps, opts, os.Stdout)
	if err != nil {
		cmd.SilenceUsage = !errors.Is(err, convert.ErrValidation)
		return err
	}

	recordRun(report)

	if report.HasFailures() {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d job(s) failed", report.Failed, report.TotalJobs)
	}
	return nil
}

// --- shared helpers ---

func runSettings() types.RunConfig {
	return types.RunConfig{
		PagesPerJob: viper.GetInt("run.pages_per_job"),
		MaxParallel: viper.GetInt("run.max_parallel"),
		StartDelay:  viper.GetDuration("run.start_delay"),
		JobTimeout:  viper.GetDuration("run.job_timeout"),
	}
}

func buildCounter() (pagecount.Counter, error) {
	backend := types.PageCountBackend(viper.GetString("pages.backend"))
	switch backend {
	case types.CountNative, "":
		return pagecount.NativeCounter{}, nil
	case types.CountPdfinfo:
		c := pagecount.NewPdfinfoCounter()
		if !c.Available() {
			return nil, fmt.Errorf("pdfinfo not found in PATH")
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown pages backend %q (use native or pdfinfo)", backend)
	}
}

func buildInvoker(env map[string]string) (worker.Invoker, error) {
	backend := types.WorkerBackend(viper.GetString("worker.backend"))
	switch backend {
	case types.WorkerContainer, "":
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return worker.NewContainerInvoker(rt, viper.GetString("worker.image"), viper.GetString("worker.env_file"))
	case types.WorkerCommand:
		return worker.NewCommandInvoker(viper.GetString("worker.command"), env)
	default:
		return nil, fmt.Errorf("unknown worker backend %q (use container or command)", backend)
	}
}

// recordRun appends the report to the history ledger. History failures are
// warnings; a finished conversion never turns into an error here.
func recordRun(report types.RunReport) {
	if viper.GetBool("history.disabled") {
		return
	}

	path := viper.GetString("history.path")
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
			return
		}
		path = p
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Record(context.Background(), report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
	}
}
