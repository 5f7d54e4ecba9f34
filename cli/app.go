// Package cli contains all business logic needed by the liemotion command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"go.viam.com/liemotion/logging"
)

// CLI flags.
const (
	debugFlag      = "debug"
	logLevelFlag   = "log-level"
	degreesFlag    = "degrees"
	rotationalFlag = "rotational"
	inverseFlag    = "inverse"
	withFlag       = "with"
	exprFlag       = "expr"
	iterationsFlag = "iterations"
	roundsFlag     = "rounds"
	workersFlag    = "workers"

	loggerMetadataKey = "logger"
)

// NewApp returns a new app with the liemotion commands, Writer set to out and ErrWriter set to
// errOut. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "liemotion",
		Usage:           "rotation, rigid transform and coupled motion transform algebra",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				EnvVars: []string{"LIEMOTION_DEBUG"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:    logLevelFlag,
				EnvVars: []string{"LIEMOTION_LOG_LEVEL"},
				Value:   "warn",
				Usage:   "minimum `LEVEL` to log (debug, info, warn, error)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "exp",
				Usage:     "exponentiate a rotation vector (3 numbers) or a twist (6 numbers) and print the matrix",
				ArgsUsage: "<numbers...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  degreesFlag,
						Usage: "read the angular part in degrees",
					},
				},
				Action: ExpAction,
			},
			{
				Name:      "log",
				Usage:     "take the logarithm of a 3x3 rotation or 4x4 homogeneous matrix, given row-major",
				ArgsUsage: "<numbers...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  degreesFlag,
						Usage: "print the angular part in degrees",
					},
				},
				Action: LogAction,
			},
			{
				Name:      "compose",
				Usage:     "compose the transforms of two or more twists, left to right",
				ArgsUsage: "<twist> <twist> [twist...]",
				Action:    ComposeAction,
			},
			{
				Name:  "cmtm",
				Usage: "build a coupled motion transform matrix from a base motion and its derivatives",
				UsageText: "liemotion cmtm [--rotational] BASE [DERIVATIVE...]\n\n" +
					"BASE and each DERIVATIVE are 6 numbers (3 with --rotational). BASE is exponentiated.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  rotationalFlag,
						Usage: "build a rotational CMTM from rotation vectors",
					},
					&cli.BoolFlag{
						Name:  inverseFlag,
						Usage: "print the inverse",
					},
					&cli.StringFlag{
						Name:  withFlag,
						Usage: "compose with a second CMTM given as comma separated `NUMBERS`",
					},
				},
				Action: CMTMAction,
			},
			{
				Name:  "bench",
				Usage: "measure the cost of the core operations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    iterationsFlag,
						EnvVars: []string{"LIEMOTION_BENCH_ITERATIONS"},
						Value:   100000,
						Usage:   "iterations per sample",
					},
					&cli.IntFlag{
						Name:    roundsFlag,
						EnvVars: []string{"LIEMOTION_BENCH_ROUNDS"},
						Value:   5,
						Usage:   "samples per worker",
					},
					&cli.IntFlag{
						Name:    workersFlag,
						EnvVars: []string{"LIEMOTION_BENCH_WORKERS"},
						Value:   1,
						Usage:   "concurrent workers per round",
					},
				},
				Action: BenchAction,
			},
			{
				Name:      "lua",
				Usage:     "run a lua script with the SO3, SE3 and CMTM bindings",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    exprFlag,
						Aliases: []string{"e"},
						Usage:   "run `SCRIPT` instead of a file",
					},
				},
				Action: LuaAction,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	level := zapcore.DebugLevel
	if !c.Bool(debugFlag) {
		var err error
		if level, err = logging.LevelFromString(c.String(logLevelFlag)); err != nil {
			return err
		}
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[loggerMetadataKey] = logging.NewWriterLogger("liemotion", c.App.ErrWriter, level)
	return nil
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerMetadataKey].(logging.Logger); ok {
		return logger
	}
	return logging.Global()
}
