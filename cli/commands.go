// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Output formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/richinex/healthrouter/config"
	"github.com/richinex/healthrouter/server"
	"github.com/richinex/healthrouter/storage"
	"github.com/richinex/healthrouter/tools"
)

// Options holds flag overrides applied on top of environment settings.
type Options struct {
	Provider     string
	Addr         string
	DBPath       string
	IndexBackend string
	LogLevel     string
	Verbose      bool
}

// LoadSettings reads settings from the environment and applies opts.
func LoadSettings(opts Options) (config.Settings, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.Addr != "" {
		settings.Server.Addr = opts.Addr
	}
	if opts.DBPath != "" {
		settings.Data.SQLitePath = opts.DBPath
	}
	if opts.IndexBackend != "" {
		settings.Retrieval.Backend = opts.IndexBackend
	}
	if opts.LogLevel != "" {
		settings.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		settings.Log.Level = "debug"
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// Serve runs the HTTP endpoint until SIGINT or SIGTERM.
func Serve(ctx context.Context, opts Options) error {
	settings, err := LoadSettings(opts)
	if err != nil {
		return err
	}
	app, err := Build(settings)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(app.Pipeline, settings.Server.RequestTimeout, app.Logger)
	return srv.Run(ctx, settings.Server.Addr)
}

// Ask answers one question and prints the envelope as JSON.
func Ask(ctx context.Context, question string, opts Options, out io.Writer) error {
	settings, err := LoadSettings(opts)
	if err != nil {
		return err
	}
	app, err := Build(settings)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(ctx, settings.Server.RequestTimeout)
	defer cancel()

	envelope, trace, err := app.Pipeline.AnswerTraced(ctx, question)
	if opts.Verbose && trace != nil {
		fmt.Fprintf(out, "--- Trace [%s] ---\n%s\n", trace.RequestID, trace)
		if len(trace.Stages) > 1 {
			fmt.Fprintf(out, "Routing: %s\n\n", trace.Decision.Rationale)
		}
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}

// ListTools prints the routing tools.
func ListTools(out io.Writer, verbose bool) {
	registry := tools.NewRegistry()

	// Register both tools (errors ignored - kinds differ)
	_ = registry.Register(tools.NewSQLTool(nil, nil))
	_ = registry.Register(tools.NewDocumentTool(nil, nil, 0, nil))

	fmt.Fprintln(out, "Available tools:")
	fmt.Fprintln(out)

	for _, meta := range registry.List() {
		fmt.Fprintf(out, "  %s\n", meta.Name)
		fmt.Fprintf(out, "    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Fprintln(out, "    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Fprintf(out, "      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Fprintln(out)
	}
}

// SampleDB writes the demo healthcare database to path.
func SampleDB(path string, out io.Writer) error {
	if err := storage.CreateSampleDatabase(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sample database written to %s\n", path)
	return nil
}
