package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tunex-network/tunex-client/pkg/valueutil"
)

var catalog = cli.Command{
	Name:   "catalog",
	Usage:  "list all finalized tracks on the ledger",
	Action: catalogAction,
}

var track = cli.Command{
	Name:      "track",
	Usage:     "show the details of one track",
	ArgsUsage: "<id>",
	Action:    trackAction,
}

func catalogAction(ctx *cli.Context) error {
	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	snapshot, err := svc.catalog.Refresh(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("catalog at height %d\n", snapshot.Height)
	for _, t := range snapshot.Tracks {
		owned := ""
		if t.Purchased {
			owned = " (purchased)"
		}
		fmt.Printf(
			"%4d  %-30s  %s ETH  by %s%s\n",
			t.ID, t.Title, valueutil.FromWei(t.PriceWei), t.Artist, owned,
		)
	}
	return nil
}

func trackAction(ctx *cli.Context) error {
	id, err := parseTrackID(ctx)
	if err != nil {
		return err
	}

	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	snapshot, err := svc.catalog.Refresh(context.Background())
	if err != nil {
		return err
	}
	t, ok := snapshot.TrackByID(id)
	if !ok {
		return fmt.Errorf("no track with id %d", id)
	}

	splits := make([]string, 0, len(t.Contributors))
	for i, contributor := range t.Contributors {
		splits = append(splits, fmt.Sprintf("%s:%d%%", contributor, t.Splits[i]))
	}

	fmt.Printf("id:           %d\n", t.ID)
	fmt.Printf("title:        %s\n", t.Title)
	fmt.Printf("price:        %s ETH (%s wei)\n", valueutil.FromWei(t.PriceWei), t.PriceWei)
	fmt.Printf("artist:       %s\n", t.Artist)
	fmt.Printf("content id:   %s\n", t.ContentID)
	fmt.Printf("splits:       %s\n", strings.Join(splits, ", "))
	fmt.Printf("purchased:    %t\n", t.Purchased)
	return nil
}

func parseTrackID(ctx *cli.Context) (uint64, error) {
	if ctx.NArg() < 1 {
		return 0, fmt.Errorf("track id required")
	}
	id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("malformed track id %q", ctx.Args().First())
	}
	return id, nil
}
