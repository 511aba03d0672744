package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/logbridge"
	"github.com/desertthunder/tunehost/internal/plugins"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/desertthunder/tunehost/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	plugins *host.Manager
	logger  *log.Logger
	output  io.Writer
	styles  *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Plugins *host.Manager // constructors available to the host; defaults to the bundled plugins
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Plugins == nil {
		opts.Plugins = host.NewManager(opts.Logger.WithPrefix("plugins"))
		if err := plugins.RegisterAll(opts.Plugins); err != nil {
			opts.Logger.Error("failed to register bundled plugins", "err", err)
		}
	}

	return &Runner{
		config:  opts.Config,
		plugins: opts.Plugins,
		logger:  opts.Logger,
		output:  opts.Output,
		styles:  ui.Styles(),
	}
}

// SetLogger replaces the logger records are rendered on.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:     "tunehost",
		Usage:    "Run media library plugins against a local song database",
		Version:  "0.1.0",
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, libraryCommand, songsCommand, pluginsCommand, playerCommand, menuCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration for cmd: the file named by --config when set,
// then the --database and --plugin overrides.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	config := *r.config
	if cmd.IsSet("config") {
		loaded, err := shared.LoadConfig(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		config = *loaded
	}

	if cmd.IsSet("database") {
		config.Database.URL = cmd.String("database")
	}
	if cmd.IsSet("plugin") {
		config.Plugins.Enabled = cmd.StringSlice("plugin")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// start bootstraps the host with the log bridge rendering onto the runner's logger.
func (r *Runner) start(ctx context.Context, cmd *cli.Command) (*host.Application, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.LogLevel()))

	app, err := host.Bootstrap(ctx, config, host.BootstrapOptions{
		Sink:     logbridge.ConsoleSink(r.logger),
		Fallback: os.Stderr,
		Plugins:  r.plugins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start host: %w", err)
	}
	return app, nil
}

func (r *Runner) closeApp(app *host.Application) {
	if err := app.Close(); err != nil {
		r.logger.Warn("failed to shut down cleanly", "err", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", r.styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
