package main

import (
	"github.com/urfave/cli/v2"
)

var newmarket = cli.Command{
	Name:   "newmarket",
	Usage:  "list a new ticker with its reserves and price bounds",
	Action: newMarketAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ticker", Usage: "ticker symbol", Required: true},
		&cli.StringFlag{Name: "base_reserve", Usage: "initial share reserve", Required: true},
		&cli.StringFlag{Name: "quote_reserve", Usage: "initial cash reserve", Required: true},
		&cli.StringFlag{Name: "price_floor", Usage: "lower price bound", Required: true},
		&cli.StringFlag{Name: "price_ceil", Usage: "upper price bound", Required: true},
	},
}

var listmarkets = cli.Command{
	Name:   "listmarkets",
	Usage:  "list all created markets",
	Action: listMarketsAction,
}

var quotes = cli.Command{
	Name:   "quotes",
	Usage:  "print the current top of book of a ticker",
	Action: quotesAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ticker", Usage: "ticker symbol", Required: true},
	},
}

var book = cli.Command{
	Name:   "book",
	Usage:  "print one side of a ticker's order book",
	Action: bookAction,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ticker", Usage: "ticker symbol", Required: true},
		&cli.StringFlag{Name: "side", Usage: "buy or sell", Required: true},
	},
}

func newMarketAction(c *cli.Context) error {
	resp, err := postJSON("/v1/markets", map[string]interface{}{
		"ticker":       c.String("ticker"),
		"baseReserve":  c.String("base_reserve"),
		"quoteReserve": c.String("quote_reserve"),
		"priceFloor":   c.String("price_floor"),
		"priceCeil":    c.String("price_ceil"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func listMarketsAction(c *cli.Context) error {
	resp, err := getJSON("/v1/markets", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func quotesAction(c *cli.Context) error {
	resp, err := getJSON("/v1/quotes", map[string]string{
		"ticker": c.String("ticker"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

func bookAction(c *cli.Context) error {
	resp, err := getJSON("/v1/book", map[string]string{
		"ticker": c.String("ticker"),
		"side":   c.String("side"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
