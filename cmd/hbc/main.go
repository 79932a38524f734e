package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"hbc/common"
	"hbc/config"
	"hbc/convert"
	"hbc/misc"
	"hbc/state"
)

// errLogged is set once failure of a command went to the log, so main does
// not print it again.
var errLogged bool

// setupEnv runs after command line is parsed: loads configuration and
// brings up logging and optional debug report.
func setupEnv(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	cfgPath := cmd.String("config")

	var err error
	if env.Cfg, err = config.LoadConfiguration(cfgPath); err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if err = startReport(env, cfgPath); err != nil {
			return ctx, err
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to set up logging: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Started",
		zap.Strings("args", os.Args),
		zap.String("version", misc.GetVersion()),
		zap.String("git", misc.GetGitHash()),
		zap.String("go", runtime.Version()))
	if env.Rpt != nil {
		env.Log.Info("Debug report requested", zap.String("archive", env.Rpt.Name()))
	}
	if cfgPath == "" {
		env.Log.Info("No configuration file, running with defaults")
	}
	return ctx, nil
}

// startReport opens debug report and puts effective configuration in it.
func startReport(env *state.LocalEnv, cfgPath string) (err error) {
	if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
		return fmt.Errorf("unable to start debug report: %w", err)
	}
	if cfgPath == "" {
		return nil
	}
	if data, err := config.Dump(env.Cfg); err == nil {
		env.Rpt.StoreData("config/"+filepath.Base(cfgPath), data)
	}
	return nil
}

// teardownEnv flushes logs, closes debug report and cleans up empty panic
// log.
func teardownEnv(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Finished", zap.Duration("elapsed", env.Uptime()), zap.Strings("args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	// from here on errors go to stderr only
	if env.Rpt != nil {
		if e := env.Rpt.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to finish debug report: %w", e))
		}
	}
	if env.Cfg == nil || env.Cfg.Logging.FileLogger.Destination == "" {
		return err
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	panicLog := env.Cfg.Logging.PanicLogName()
	if fi, e := os.Stat(panicLog); e == nil && fi.Size() == 0 {
		if e := os.Remove(panicLog); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log %q: %w", panicLog, e))
		}
	}
	return err
}

func logCommandError(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Command failed", zap.Error(err))
		errLogged = true
	}
}

func passUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command ignored", zap.String("command", name))
	}
}

const convertHelp = `%s
SOURCE:
    HTML or XHTML document(s) to convert:
        single file:             "[dir]page.html"
        directory (recursive):   "[dir]pages" - symbolic links are not followed
        file inside zip archive: "[dir]pages.zip/[path]/page.xhtml"
        zip archive subtree:     "[dir]pages.zip[/path]" - every document under path

    Only .html, .htm, .xhtml and .xht files are looked at, nested archives
    are not opened.

DESTINATION:
    directory for results, current directory when absent; output names come
    from configuration template or source name plus --to extension
`

const dumpConfigHelp = `%s

DESTINATION:
    file to write configuration to, STDOUT when absent

Without --default writes effective configuration: embedded defaults merged
with the file given by --config.
`

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts HTML documents to content blocks",
		ArgsUsage:    "SOURCE [DESTINATION]",
		OnUsageError: passUsageError,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: common.OutputFmtYaml.String(),
				Usage: "result encoding `FORMAT` (" + strings.Join(common.OutputFmtNames(), ", ") + ")"},
			&cli.StringFlag{Name: "input", Value: "auto",
				Usage: "node tree supplier `KIND` (auto, " + strings.Join(common.InputFmtNames(), ", ") + ")"},
			&cli.BoolFlag{Name: "tree", Usage: "keep nested blocks as linked tree nodes instead of flat list"},
			&cli.BoolFlag{Name: "hoist", Usage: "in flat mode replace empty top level containers with blocks they hold"},
			&cli.StringFlag{Name: "base-url", Usage: "resolve relative links against `URL`"},
			&cli.BoolFlag{Name: "stable-keys", Usage: "generate predictable block keys"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "put all results directly into destination"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing results"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "decode non UTF-8 names of archive entries using IANA `CHARSET`"},
		},
		CustomHelpTemplate: fmt.Sprintf(convertHelp, cli.CommandHelpTemplate),
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Writes default or effective configuration (YAML)",
		ArgsUsage:    "[DESTINATION]",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write embedded defaults"},
		},
		CustomHelpTemplate: fmt.Sprintf(dumpConfigHelp, cli.CommandHelpTemplate),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converts HTML documents into rich text editor content blocks",
		Version:         fmt.Sprintf("%s (%s) : %s", misc.GetVersion(), runtime.Version(), misc.GetGitHash()),
		HideHelpCommand: true,
		Before:          setupEnv,
		After:           teardownEnv,
		OnUsageError:    passUsageError,
		ExitErrHandler:  logCommandError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose troubleshooting mode, produces report archive"},
		},
		Commands: []*cli.Command{convertCommand(), dumpConfigCommand()},
	}
}

// dumpConfig writes configuration to the file named by the first argument
// or to stdout.
func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Extra arguments ignored", zap.Strings("args", cmd.Args().Slice()[1:]))
	}

	var data []byte
	if cmd.Bool("default") {
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to produce configuration: %w", err)
	}

	var out io.Writer = os.Stdout
	dst := cmd.Args().Get(0)
	if dst != "" {
		f, e := os.Create(dst)
		if e != nil {
			return fmt.Errorf("unable to create %q: %w", dst, e)
		}
		defer func() {
			if e := f.Close(); err == nil && e != nil {
				err = e
			}
		}()
		out = f
	}

	env.Log.Info("Writing configuration", zap.Bool("default", cmd.Bool("default")), zap.String("to", orDefault(dst, "STDOUT")))
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		// logging may be not ready yet or already closed
		if !errLogged {
			fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
		}
		os.Exit(1)
	}
}
