package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tunex-network/tunex-client/internal/core/application"
	"github.com/tunex-network/tunex-client/pkg/valueutil"
)

var publish = cli.Command{
	Name:  "publish",
	Usage: "upload a new track with its media payload and revenue splits",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Usage:    "track title",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "price",
			Usage:    "price per download in whole units",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "file",
			Usage:    "path of the media payload",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  "split",
			Usage: "revenue split as address:percentage, repeatable",
		},
	},
	Action: publishAction,
}

func publishAction(ctx *cli.Context) error {
	priceWei, err := valueutil.ToWei(ctx.String("price"))
	if err != nil {
		return err
	}
	contributors, splits, err := parseSplits(ctx.StringSlice("split"))
	if err != nil {
		return err
	}

	media, err := os.Open(ctx.String("file"))
	if err != nil {
		return err
	}
	defer media.Close()

	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	intent, err := svc.pub.Publish(context.Background(), application.TrackDraft{
		Title:        ctx.String("title"),
		PriceWei:     priceWei,
		Contributors: contributors,
		Splits:       splits,
		Media:        media,
	})
	if err != nil {
		return err
	}
	return reportIntent(intent)
}

func parseSplits(pairs []string) ([]string, []uint64, error) {
	contributors := make([]string, 0, len(pairs))
	splits := make([]uint64, 0, len(pairs))
	for _, pair := range pairs {
		address, percentage, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, nil, fmt.Errorf("malformed split %q, want address:percentage", pair)
		}
		split, err := strconv.ParseUint(percentage, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed split percentage in %q", pair)
		}
		contributors = append(contributors, address)
		splits = append(splits, split)
	}
	return contributors, splits, nil
}
