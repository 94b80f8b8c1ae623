package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/sandbox-risk/internal/config"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/urfave/cli/v3"
)

const (
	schemaFileName = "sandbox-config.json"
	sampleFileName = "sandbox-config.yaml"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the config file JSON schema, or write it with a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write " + schemaFileName + " and " + sampleFileName + " into `DIR`",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.Schema()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, "failed to generate schema", err)
			}

			dir := cmd.String("out")
			if dir == "" {
				fmt.Fprintln(cmd.Root().Writer, schema)

				return nil
			}

			written, err := writeSchema(dir, schema)
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintln(cmd.Root().Writer, SuccessStyle.Render("Wrote "+path))
			}

			return nil
		},
	}
}

// writeSchema writes the schema into dir, plus a sample config pointing at it
// unless one already exists.
func writeSchema(dir, schema string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", dir)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", schemaPath)
	}

	written := []string{schemaPath}

	samplePath := filepath.Join(dir, sampleFileName)
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		sample := config.Default()

		yamlBytes, err := sample.Marshal()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to marshal sample config", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), yamlBytes...)

		if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", samplePath)
		}

		written = append(written, samplePath)
	}

	return written, nil
}
