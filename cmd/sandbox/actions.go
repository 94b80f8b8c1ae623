package main

import (
	"context"
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/urfave/cli/v3"
)

func idFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    usage,
		Required: true,
	}
}

func closeCommand() *cli.Command {
	return &cli.Command{
		Name:  "close",
		Usage: "Close an open position in full or in part",
		Flags: []cli.Flag{
			idFlag("Position `ID`"),
			&cli.IntFlag{
				Name:  "partial",
				Usage: "Close only `PERCENT` of the position (10-90, multiples of 10)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			closeType := types.CloseTypeManual
			percentage := optional.None[int]()

			if cmd.IsSet("partial") {
				closeType = types.CloseTypePartial
				percentage = optional.Some(int(cmd.Int("partial")))
			}

			return runAction(ctx, cmd, func(a *app) (sandbox.Result, error) {
				actions, err := a.actions()
				if err != nil {
					return sandbox.Result{}, err
				}

				return actions.ClosePosition(ctx, cmd.String("id"), closeType, percentage)
			})
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:  "cancel",
		Usage: "Cancel a pending order",
		Flags: []cli.Flag{
			idFlag("Order `ID`"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAction(ctx, cmd, func(a *app) (sandbox.Result, error) {
				actions, err := a.actions()
				if err != nil {
					return sandbox.Result{}, err
				}

				return actions.CancelOrder(ctx, cmd.String("id"))
			})
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Set the stop loss and/or take profit of a position",
		Flags: []cli.Flag{
			idFlag("Position `ID`"),
			&cli.FloatFlag{
				Name:  "stop-loss",
				Usage: "Stop loss `PRICE`",
			},
			&cli.FloatFlag{
				Name:  "take-profit",
				Usage: "Take profit `PRICE`",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			stopLoss := optional.None[float64]()
			if cmd.IsSet("stop-loss") {
				stopLoss = optional.Some(cmd.Float("stop-loss"))
			}

			takeProfit := optional.None[float64]()
			if cmd.IsSet("take-profit") {
				takeProfit = optional.Some(cmd.Float("take-profit"))
			}

			return runAction(ctx, cmd, func(a *app) (sandbox.Result, error) {
				actions, err := a.actions()
				if err != nil {
					return sandbox.Result{}, err
				}

				return actions.UpdateRiskLevels(ctx, cmd.String("id"), stopLoss, takeProfit)
			})
		},
	}
}

func forceCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "force-check",
		Usage: "Run the backend stop loss, take profit and liquidation sweep now",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAction(ctx, cmd, func(a *app) (sandbox.Result, error) {
				client, err := a.client()
				if err != nil {
					return sandbox.Result{}, err
				}

				return client.ForceCheckPositions(ctx)
			})
		},
	}
}

func runAction(_ context.Context, cmd *cli.Command, execute func(a *app) (sandbox.Result, error)) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	result, err := execute(a)
	if err != nil {
		return err
	}

	message := result.Message
	if message == "" {
		message = "Done"
	}

	fmt.Fprintln(a.out, SuccessStyle.Render(message))

	return nil
}
