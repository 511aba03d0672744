package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/desertthunder/tunehost/internal/ui"
	"github.com/urfave/cli/v3"
)

// Menu opens the interactive browser over the plugin menu actions.
func (r *Runner) Menu(ctx context.Context, cmd *cli.Command) error {
	// Log records go to a file so they do not interfere with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	model := ui.NewMenuModel(ctx, app.UserInterface)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
