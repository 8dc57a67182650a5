// Package main is the iklink command itself.
package main

import (
	"os"

	"go.viam.com/iklink/cli"
	"go.viam.com/iklink/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Fatal(err)
	}
}
