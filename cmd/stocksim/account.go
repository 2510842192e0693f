package main

import (
	"github.com/urfave/cli/v2"
)

var account = cli.Command{
	Name:   "account",
	Usage:  "create or inspect a trading account",
	Action: getAccountAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "account id", Required: true},
	},
	Subcommands: []*cli.Command{
		{
			Name:   "create",
			Usage:  "provision an account with a starting balance",
			Action: createAccountAction,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Usage: "account id", Required: true},
				&cli.StringFlag{Name: "balance", Usage: "starting cash balance", Value: "0"},
			},
		},
	},
}

var deposit = cli.Command{
	Name:   "deposit",
	Usage:  "credit cash or shares to an account",
	Action: depositAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "account id", Required: true},
		&cli.StringFlag{Name: "cash", Usage: "cash amount to credit", Value: "0"},
		&cli.StringFlag{Name: "ticker", Usage: "ticker of the shares to credit"},
		&cli.Int64Flag{Name: "shares", Usage: "share quantity to credit"},
	},
}

func getAccountAction(c *cli.Context) error {
	resp, err := getJSON("/v1/accounts", map[string]string{
		"id": c.String("id"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func createAccountAction(c *cli.Context) error {
	resp, err := postJSON("/v1/accounts", map[string]interface{}{
		"id":      c.String("id"),
		"balance": c.String("balance"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func depositAction(c *cli.Context) error {
	resp, err := postJSON("/v1/accounts/deposit", map[string]interface{}{
		"id":     c.String("id"),
		"cash":   c.String("cash"),
		"ticker": c.String("ticker"),
		"shares": c.Int64("shares"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
