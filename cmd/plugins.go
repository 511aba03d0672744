package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/tunehost/internal/plugins"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/urfave/cli/v3"
)

type pluginInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// PluginsList lists the registered plugins and whether the configuration enables them.
func (r *Runner) PluginsList(ctx context.Context, cmd *cli.Command) error {
	descriptions := make(map[string]string, len(plugins.Bundled))
	for _, b := range plugins.Bundled {
		descriptions[b.Name] = b.Description
	}

	var infos []pluginInfo
	for _, name := range r.plugins.Available() {
		infos = append(infos, pluginInfo{
			Name:        name,
			Description: descriptions[name],
			Enabled:     slices.Contains(r.config.Plugins.Enabled, name),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Plugins")
	for _, p := range infos {
		mark := r.styles.Help("disabled")
		if p.Enabled {
			mark = r.styles.OK("enabled")
		}
		r.writePlain("%-14s %-9s %s\n", p.Name, mark, p.Description)
	}
	return nil
}

// PluginsActions lists the menu actions added by the loaded plugins.
func (r *Runner) PluginsActions(ctx context.Context, cmd *cli.Command) error {
	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	found := 0
	for _, loc := range app.UserInterface.Locations() {
		for _, a := range app.UserInterface.MenuItems(loc) {
			found++
			state := ""
			if !a.Enabled() {
				state = " " + r.styles.Help("(disabled)")
			}
			r.writePlain("%s\t%s%s\n", loc, a.Text, state)
		}
	}
	if found == 0 {
		r.writePlain("%s\n", r.styles.Warn("No plugin added a menu action."))
	}
	return nil
}

// PluginsRun triggers the menu action at location whose text matches.
func (r *Runner) PluginsRun(ctx context.Context, cmd *cli.Command) error {
	location := cmd.StringArg("location")
	text := cmd.StringArg("text")
	if location == "" || text == "" {
		return fmt.Errorf("%w: menu location and action text", shared.ErrMissingArgument)
	}

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	action, ok := app.UserInterface.FindAction(location, text)
	if !ok {
		return fmt.Errorf("%w: no action %q in %s menu", shared.ErrInvalidArgument, text, location)
	}
	if err := action.Trigger(ctx); err != nil {
		return fmt.Errorf("%s failed: %w", action.Text, err)
	}

	if song, ok := app.Player.CurrentSong(); ok {
		r.writePlain("%s %s\n", r.styles.OK("✓ "+action.Text+":"), song)
	} else {
		r.writePlain("%s\n", r.styles.OK("✓ "+action.Text))
	}
	return nil
}
