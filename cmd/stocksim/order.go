package main

import (
	"github.com/urfave/cli/v2"
)

var order = cli.Command{
	Name:   "order",
	Usage:  "place a market or book order",
	Action: orderAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ticker", Usage: "ticker symbol", Required: true},
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
		&cli.Int64Flag{Name: "quantity", Usage: "shares to trade, ignored for market orders", Value: 1},
		&cli.StringFlag{Name: "price", Usage: "limit price, or the quoted price for market orders", Required: true},
		&cli.StringFlag{Name: "owner", Usage: "account id", Required: true},
		&cli.StringFlag{Name: "execution", Usage: "market or book", Value: "market"},
	},
}

var cancel = cli.Command{
	Name:   "cancel",
	Usage:  "cancel resting quantity at a price",
	Action: cancelAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ticker", Usage: "ticker symbol", Required: true},
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
		&cli.Int64Flag{Name: "quantity", Usage: "shares to cancel", Required: true},
		&cli.StringFlag{Name: "price", Usage: "resting price", Required: true},
		&cli.StringFlag{Name: "owner", Usage: "account id", Required: true},
	},
}

var listorders = cli.Command{
	Name:   "listorders",
	Usage:  "list all resting orders of an owner",
	Action: listOrdersAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "owner", Usage: "account id", Required: true},
	},
}

func orderAction(c *cli.Context) error {
	resp, err := postJSON("/v1/orders", map[string]interface{}{
		"ticker":    c.String("ticker"),
		"side":      c.String("side"),
		"quantity":  c.Int64("quantity"),
		"price":     c.String("price"),
		"owner":     c.String("owner"),
		"execution": c.String("execution"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func cancelAction(c *cli.Context) error {
	resp, err := postJSON("/v1/orders/cancel", map[string]interface{}{
		"ticker":   c.String("ticker"),
		"side":     c.String("side"),
		"quantity": c.Int64("quantity"),
		"price":    c.String("price"),
		"owner":    c.String("owner"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func listOrdersAction(c *cli.Context) error {
	resp, err := getJSON("/v1/orders", map[string]string{
		"owner": c.String("owner"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
