package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tunex-network/tunex-client/pkg/valueutil"
)

var history = cli.Command{
	Name:   "history",
	Usage:  "list the purchases of the active account in chronological order",
	Action: historyAction,
}

func historyAction(ctx *cli.Context) error {
	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	session, err := svc.sessions.Current()
	if err != nil {
		return err
	}
	records, anomalies, err := svc.history.History(context.Background(), session.Account)
	if err != nil {
		return err
	}

	for _, record := range records {
		fmt.Printf(
			"%s  track %d  %s ETH  (height %d, log %d)\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.TrackID, valueutil.FromWei(record.AmountWei),
			record.Height, record.LogIndex,
		)
	}
	for _, anomaly := range anomalies {
		fmt.Printf("warning: %s\n", anomaly)
	}
	return nil
}
