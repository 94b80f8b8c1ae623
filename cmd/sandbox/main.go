package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/sandbox-risk/internal/version"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "sandbox",
		Usage:   "Inspect and manage leveraged paper positions on the sandbox backend",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("SANDBOX_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Sandbox backend URL, overrides the config file and SANDBOX_BASE_URL",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Bearer token, overrides SANDBOX_TOKEN",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			metricsCommand(),
			closeCommand(),
			cancelCommand(),
			updateCommand(),
			forceCheckCommand(),
			historyCommand(),
			schemaCommand(),
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+errors.Message(err)))

		if code := errors.GetCode(err); code != errors.ErrCodeUnknown {
			fmt.Fprintln(os.Stderr, HelpStyle.Render(fmt.Sprintf("code %d: %v", code, err)))
		}

		os.Exit(1)
	}
}
