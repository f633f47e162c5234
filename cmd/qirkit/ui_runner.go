package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qirkit/internal/batch"
	"qirkit/internal/qir"
	"qirkit/internal/ui"
)

type batchOutcome struct {
	result *batch.Result
	err    error
}

func runBatchWithUI(ctx context.Context, title string, jobs []batch.Job, m *qir.Module, opts batch.Options) (*batch.Result, error) {
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = batch.ChannelSink{Ch: events}
		res, err := batch.Run(ctx, m, jobs, optsCopy)
		outcomeCh <- batchOutcome{result: res, err: err}
		close(events)
	}()

	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// The view may quit early; keep draining so the batch can finish.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
