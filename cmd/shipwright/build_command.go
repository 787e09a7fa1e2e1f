package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"shipwright/internal/buildlock"
	"shipwright/internal/graph"
	"shipwright/internal/logging"
	"shipwright/internal/services"
	"shipwright/internal/state"
	"shipwright/internal/targets"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var jobs int
	var force bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "build [target...]",
		Short: "Run the build graph for the requested targets",
		Long: "Build runs the requested targets and their dependency closure. " +
			"With no arguments every distribution artifact is built. Targets " +
			"whose sources are unchanged since the last run are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := args
			if len(requested) == 0 {
				requested = []string{"all"}
			}
			return runBuild(ctx, cmd, requested, jobs, force, verbose)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Maximum concurrent target actions (default from configuration)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild targets even when fingerprints match")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log per-target progress instead of the progress bar")
	return cmd
}

func runBuild(ctx *commandContext, cmd *cobra.Command, requested []string, jobs int, force, verbose bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logger)

	lock, err := buildlock.New(cfg.Paths.StateDir)
	if err != nil {
		return err
	}
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, buildlock.ErrHeld) {
			return fmt.Errorf("another build is already running (lock %s)", lock.Path())
		}
		return err
	}
	defer lock.Release()

	store, err := state.Open(cfg.Paths.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := targets.Build(targets.Wire(cfg, logger))
	if err != nil {
		return err
	}
	plan, err := g.Closure(requested)
	if err != nil {
		return err
	}

	if jobs <= 0 {
		jobs = cfg.Build.Jobs
	}

	var observer func(graph.Event)
	out := cmd.OutOrStdout()
	if !verbose && isTerminal() {
		bar := progressbar.NewOptions(len(plan),
			progressbar.OptionSetDescription("building"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowCount(),
		)
		observer = func(event graph.Event) {
			_ = bar.Add(1)
		}
		defer func() {
			_ = bar.Finish()
		}()
	}

	runner, err := graph.NewRunner(graph.RunnerOptions{
		Graph:    g,
		Store:    store,
		Logger:   logger,
		Jobs:     jobs,
		Force:    force,
		Observer: observer,
	})
	if err != nil {
		return err
	}

	result, runErr := runner.Run(runCtx, requested)
	if result != nil {
		completed, skipped := 0, 0
		for _, status := range result.FinalState {
			switch status {
			case graph.StatusCompleted:
				completed++
			case graph.StatusSkipped:
				skipped++
			}
		}
		fmt.Fprintf(out, "%d built, %d up to date", completed, skipped)
		if len(result.Failed) > 0 {
			fmt.Fprintf(out, ", %d failed", len(result.Failed))
		}
		fmt.Fprintln(out)
	}
	return runErr
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
