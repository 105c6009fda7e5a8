package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

var download = cli.Command{
	Name:      "download",
	Usage:     "download the media payload of a purchased track",
	ArgsUsage: "<id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "out",
			Usage:    "output file path",
			Required: true,
		},
	},
	Action: downloadAction,
}

func downloadAction(ctx *cli.Context) error {
	id, err := parseTrackID(ctx)
	if err != nil {
		return err
	}

	svc, teardown, err := connect(context.Background())
	if err != nil {
		return err
	}
	defer teardown()

	payload, err := svc.pub.Fetch(context.Background(), id)
	if err != nil {
		return err
	}
	defer payload.Close()

	out, err := os.Create(ctx.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := io.Copy(out, payload)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", written, ctx.String("out"))
	return nil
}
