package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/modhost/internal/ansi"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/server"
)

// Output formats for module results.
const (
	formatAuto = "auto"
	formatRaw  = "raw"
	formatHTML = "html"
	formatText = "text"
)

func newRootCmd() *cobra.Command {
	cfg := config.LoadOrDefault()

	root := &cobra.Command{
		Use:   "modrun",
		Short: "Run the advisory review module from the command line",
		Long: `modrun loads the review module (WASI or JavaScript) the same way the
server does and prints its output, or renders ANSI-coloured text to HTML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Module.URL, "module", cfg.Module.URL, "Module artifact URL or path")
	flags.StringVar(&cfg.Module.Name, "name", cfg.Module.Name, "Command name passed as argv[0]")
	flags.BoolVar(&cfg.Module.Streaming, "streaming", cfg.Module.Streaming, "Try the streaming load strategy first")
	flags.DurationVar(&cfg.Module.Timeout, "timeout", cfg.Module.Timeout, "Run timeout (0 disables)")
	flags.StringVar(&cfg.Logging.Level, "log-level", cliLogLevel(cfg), "Log level (LOG_LEVEL, default error)")

	root.AddCommand(newExecCmd(cfg), newQueryCmd(cfg), newRenderCmd())
	return root
}

// cliLogLevel honours LOG_LEVEL when it is set and keeps the CLI quiet
// otherwise.
func cliLogLevel(cfg *config.Config) string {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		return cfg.Logging.Level
	}
	return "error"
}

// runModule executes argv-less args through a fresh engine and writes the
// output in the requested format.
func runModule(ctx context.Context, cfg *config.Config, args []string, format string, out io.Writer) error {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	defer func() { _ = logger.Sync() }()

	engine, err := server.NewEngine(cfg.Module, logger, nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close(context.Background()) }()

	text, err := engine.Bridge.Execute(ctx, cfg.Module.Name, args)
	if err != nil {
		return err
	}
	return writeFormatted(out, text, format, false)
}

func writeFormatted(out io.Writer, text, format string, sanitize bool) error {
	switch resolveFormat(format, out) {
	case formatRaw:
		_, err := io.WriteString(out, text)
		return err
	case formatHTML:
		html := ansi.Render(text)
		if sanitize {
			html = ansi.Policy().Sanitize(html)
		}
		_, err := io.WriteString(out, html)
		return err
	case formatText:
		_, err := io.WriteString(out, ansi.Strip(text))
		return err
	default:
		return fmt.Errorf("unknown format %q (want %s)", format,
			strings.Join([]string{formatAuto, formatRaw, formatHTML, formatText}, ", "))
	}
}

// resolveFormat keeps colours for terminals and strips them otherwise.
func resolveFormat(format string, out io.Writer) string {
	if format != formatAuto {
		return format
	}
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return formatRaw
	}
	return formatText
}
