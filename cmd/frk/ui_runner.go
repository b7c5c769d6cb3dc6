package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"frkernel/internal/driver"
	"frkernel/internal/kernel"
	"frkernel/internal/ui"
)

type checkResult struct {
	result *driver.Result
	err    error
}

func runCheckWithUI(parent context.Context, title string, k *kernel.Kernel, decls []kernel.Decl, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkResult, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Check(ctx, k, decls, runOpts)
		outcomeCh <- checkResult{result: res, err: err}
		close(events)
	}()

	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// The model may stop reading early (ctrl+c or a UI failure): cancel the
	// remaining declarations and drain so the run can finish.
	var outcome checkResult
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		go func() {
			for range events {
			}
		}()
		outcome = <-outcomeCh
	}
	if uiErr != nil && outcome.err == nil && parent.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
