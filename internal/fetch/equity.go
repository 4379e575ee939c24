package fetch

import (
	"context"

	"github.com/yourorg/lending-monitor/internal/model"
)

const equityPath = "/rest/v1/equity_curve?select=*&order=record_date.asc"

// FetchEquity reads the full equity curve, ascending by date.
func (c *Client) FetchEquity(ctx context.Context) ([]model.EquityPoint, error) {
	var points []model.EquityPoint
	if err := c.getJSON(ctx, equityPath, &points); err != nil {
		return nil, err
	}
	return points, nil
}
