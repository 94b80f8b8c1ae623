package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rxtech-lab/sandbox-risk/internal/monitor"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// snapshotFile is the positions and orders payload of the sandbox backend.
type snapshotFile struct {
	Positions []types.Position     `json:"positions"`
	Orders    []types.PendingOrder `json:"orders"`
}

func loadSnapshot(path string, stdin io.Reader) (snapshotFile, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return snapshotFile{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to read positions from %s", path)
	}

	var snapshot snapshotFile
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshotFile{}, errors.Wrap(errors.ErrCodeDecodeFailed, "failed to decode positions file", err)
	}

	return snapshot, nil
}

func metricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Compute P&L, liquidation risk and funding for open positions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "JSON `FILE` with positions and orders as returned by the backend, - for stdin",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "price",
				Aliases: []string{"p"},
				Usage:   "Current price as `SYMBOL=PRICE`, repeatable; uses the static provider",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print metrics as JSON",
			},
		},
		Action: metricsAction,
	}
}

func metricsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	snapshot, err := loadSnapshot(cmd.String("file"), os.Stdin)
	if err != nil {
		return err
	}

	for _, position := range snapshot.Positions {
		if err := position.Validate(); err != nil {
			a.log.Debug("Incomplete position snapshot", zap.String("id", position.ID), zap.Error(err))
		}
	}

	source, err := a.priceSource(cmd.StringSlice("price"))
	if err != nil {
		return err
	}

	result, err := monitor.New(source, a.log).Evaluate(ctx, snapshot.Positions, snapshot.Orders)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	}

	renderSnapshot(a.out, a.formatter, result)

	return nil
}
