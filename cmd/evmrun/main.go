// Command evmrun loads an evm.json test-vector file and runs every vector
// against the interpreter, exiting non-zero on the first failure.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/evmexec/evmexec/harness"
	"github.com/evmexec/evmexec/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "evmrun",
		Usage: "run EVM bytecode test vectors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Value: "evm.json",
				Usage: "path to the evm.json test-vector file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug-level logging",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetDefault(log.New(slog.LevelDebug))
	}

	path := c.String("file")
	vectors, err := harness.LoadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	summary := harness.RunAll(vectors)
	for i, r := range summary.Results {
		fmt.Println(harness.FormatResult(vectors[i], r))
	}

	if idx := summary.FirstFailure(); idx >= 0 {
		return cli.Exit(fmt.Sprintf("first failure: %s", summary.Results[idx].Name), 1)
	}
	return nil
}
