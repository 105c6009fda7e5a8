package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "tunex CLI"
	app.Usage = "Command line interface for the tunex marketplace client"
	app.Commands = append(
		app.Commands,
		&catalog,
		&track,
		&buy,
		&balance,
		&withdraw,
		&history,
		&publish,
		&download,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[tunex] %v\n", err)
	os.Exit(1)
}
