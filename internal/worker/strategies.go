package worker

import (
	"context"
	"fmt"

	"WealthSentinel/internal/model"
)

var strategies = map[string]func(*model.IncomeStream) Worker{
	"API Monetization": func(s *model.IncomeStream) Worker { return &APIMonetization{Passive{name: s.Name}} },
	"Crypto Arbitrage": func(s *model.IncomeStream) Worker { return &CryptoArbitrage{Active{name: s.Name}} },
}

// APIMonetization bills usage of hosted endpoints. Without live endpoints it
// reports the passive baseline.
type APIMonetization struct {
	Passive
}

func (a *APIMonetization) Execute(ctx context.Context, task model.Task) (Result, error) {
	res, err := a.Passive.Execute(ctx, task)
	if err != nil {
		return res, err
	}
	res.Detail = fmt.Sprintf("api usage billed: %s", res.Detail)
	return res, nil
}

// CryptoArbitrage scans exchanges for spreads and trades them. With no
// exchanges wired it reports the active baseline.
type CryptoArbitrage struct {
	Active
}

func (c *CryptoArbitrage) Execute(ctx context.Context, task model.Task) (Result, error) {
	opportunities := c.scan(task)
	res, err := c.Active.Execute(ctx, task)
	if err != nil {
		return res, err
	}
	res.Detail = fmt.Sprintf("%d opportunities: %s", opportunities, res.Detail)
	return res, nil
}

func (c *CryptoArbitrage) scan(_ model.Task) int {
	return 0
}
