package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tunex-network/tunex-client/pkg/valueutil"
)

var balance = cli.Command{
	Name:   "balance",
	Usage:  "show the accrued earnings of the active account",
	Action: balanceAction,
}

var withdraw = cli.Command{
	Name:   "withdraw",
	Usage:  "withdraw the accrued earnings of the active account",
	Action: withdrawAction,
}

func balanceAction(ctx *cli.Context) error {
	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	session, err := svc.sessions.Current()
	if err != nil {
		return err
	}
	bal, err := svc.earnings.FetchBalance(context.Background(), session.Account)
	if err != nil {
		return err
	}
	fmt.Printf(
		"%s ETH (%s wei) accrued by %s\n",
		valueutil.FromWei(bal.AmountWei), bal.AmountWei, bal.Account,
	)
	return nil
}

func withdrawAction(ctx *cli.Context) error {
	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	intent, bal, err := svc.earnings.Withdraw(context.Background())
	if err != nil {
		return err
	}
	if err := reportIntent(intent); err != nil {
		return err
	}
	fmt.Printf("remaining balance: %s ETH\n", valueutil.FromWei(bal.AmountWei))
	return nil
}
