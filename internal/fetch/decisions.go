package fetch

import (
	"context"

	"github.com/yourorg/lending-monitor/internal/model"
)

// decisionLimit caps how much of the append-only log one cycle consumes.
const decisionLimit = 100

const decisionsPath = "/rest/v1/bot_decisions?select=*&order=created_at.desc&limit=100"

// FetchDecisions reads the most recent decision log entries, newest first.
func (c *Client) FetchDecisions(ctx context.Context) ([]model.DecisionRecord, error) {
	var decisions []model.DecisionRecord
	if err := c.getJSON(ctx, decisionsPath, &decisions); err != nil {
		return nil, err
	}
	if len(decisions) > decisionLimit {
		decisions = decisions[:decisionLimit]
	}
	return decisions, nil
}
