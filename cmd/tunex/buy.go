package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/pkg/valueutil"
)

var buy = cli.Command{
	Name:      "buy",
	Usage:     "purchase a track, paying its exact recorded price",
	ArgsUsage: "<id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "offered amount in whole units, must equal the recorded price",
			Required: true,
		},
	},
	Action: buyAction,
}

func buyAction(ctx *cli.Context) error {
	id, err := parseTrackID(ctx)
	if err != nil {
		return err
	}
	offerWei, err := valueutil.ToWei(ctx.String("amount"))
	if err != nil {
		return err
	}

	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	intent, err := svc.purchase.Buy(context.Background(), id, offerWei)
	if err != nil {
		return err
	}
	return reportIntent(intent)
}

func reportIntent(intent *domain.Intent) error {
	switch {
	case intent.IsConfirmed():
		fmt.Printf(
			"%s confirmed at height %d (tx %s)\n",
			intent.Kind, intent.ConfirmedHeight, intent.TxID,
		)
		return nil
	case intent.IsReverted():
		return fmt.Errorf("%s reverted: %s", intent.Kind, intent.RevertReason)
	case intent.IsRejected():
		return fmt.Errorf("%s rejected by the user", intent.Kind)
	case intent.IsTimedOut():
		return fmt.Errorf(
			"%s not confirmed in time, status unknown (tx %s)", intent.Kind, intent.TxID,
		)
	default:
		return fmt.Errorf("%s ended in unexpected status %d", intent.Kind, intent.Status)
	}
}
