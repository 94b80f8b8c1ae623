package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/rxtech-lab/sandbox-risk/internal/config"
	"github.com/rxtech-lab/sandbox-risk/internal/format"
	"github.com/rxtech-lab/sandbox-risk/internal/inflight"
	"github.com/rxtech-lab/sandbox-risk/internal/logger"
	"github.com/rxtech-lab/sandbox-risk/internal/pricefeed"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/urfave/cli/v3"
)

// app holds what every command needs once the config is loaded.
type app struct {
	config    config.Config
	log       *logger.Logger
	formatter *format.Formatter
	out       io.Writer
}

func newApp(cmd *cli.Command) (*app, error) {
	root := cmd.Root()

	cfg, err := config.Load(root.String("config"))
	if err != nil {
		return nil, err
	}

	if v := root.String("base-url"); v != "" {
		cfg.Sandbox.BaseURL = v
	}

	if v := root.String("token"); v != "" {
		cfg.Token = v
	}

	if v := root.String("log-level"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	formatter, err := format.NewFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}

	return &app{
		config:    cfg,
		log:       log,
		formatter: formatter,
		out:       root.Writer,
	}, nil
}

func (a *app) client() (*sandbox.Client, error) {
	client, err := sandbox.NewClient(a.config.Sandbox, sandbox.StaticToken(a.config.Token))
	if err != nil {
		return nil, err
	}

	return client.WithLogger(a.log), nil
}

func (a *app) actions() (*inflight.Actions, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	return inflight.NewActions(client, nil, a.log), nil
}

// priceSource returns the configured provider, or a static source when
// prices are given on the command line.
func (a *app) priceSource(overrides []string) (pricefeed.Source, error) {
	if len(overrides) > 0 || a.config.Prices.Provider == pricefeed.ProviderStatic {
		prices, err := parsePrices(overrides)
		if err != nil {
			return nil, err
		}

		static := pricefeed.NewStatic(a.config.Prices.Static)
		for symbol, price := range prices {
			static.Set(symbol, price)
		}

		return static, nil
	}

	return pricefeed.NewSource(a.config.Prices.Provider, a.config.Prices.APIKey)
}

// parsePrices parses SYMBOL=PRICE pairs.
func parsePrices(pairs []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(pairs))

	for _, pair := range pairs {
		symbol, value, ok := strings.Cut(pair, "=")
		symbol = strings.TrimSpace(symbol)
		if !ok || symbol == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "price %q must look like SYMBOL=PRICE", pair)
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || price <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "price %q must be a positive number", pair)
		}

		prices[strings.ToUpper(symbol)] = price
	}

	return prices, nil
}
