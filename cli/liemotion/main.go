// Package main is the liemotion command itself.
package main

import (
	"os"

	"go.uber.org/zap/zapcore"

	"go.viam.com/liemotion/cli"
	"go.viam.com/liemotion/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.NewWriterLogger("liemotion", os.Stderr, zapcore.ErrorLevel).Fatal(err)
	}
}
