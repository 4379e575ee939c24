package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/lending-monitor/internal/model"
	"github.com/yourorg/lending-monitor/internal/validation"
)

// snapshotPath selects the single cache row the engine overwrites.
const snapshotPath = "/rest/v1/system_cache?id=eq.1&limit=1"

// snapshotRow is the wire shape of the cache table.
type snapshotRow struct {
	UpdatedAt string          `json:"updated_at"`
	Payload   json.RawMessage `json:"payload"`
}

// snapshotPayload decodes the payload with the record lists shadowed into
// loose maps. Older engine versions wrote alternate field names and
// stringified numbers in the lists; validation resolves both shapes, so
// they must never be decoded strictly here.
type snapshotPayload struct {
	model.Snapshot
	Loans  []map[string]interface{} `json:"loans"`
	Offers []map[string]interface{} `json:"offers"`
}

// FetchSnapshot reads the latest engine snapshot. It returns the decoded
// snapshot and the row's source timestamp. An empty cache table means the
// engine has not run yet: that is an empty snapshot, not an error. A
// type-mismatched payload field degrades to its zero value rather than
// discarding the row.
func (c *Client) FetchSnapshot(ctx context.Context) (model.Snapshot, string, error) {
	var rows []snapshotRow
	if err := c.getJSON(ctx, snapshotPath, &rows); err != nil {
		return model.Snapshot{}, "", err
	}
	if len(rows) == 0 {
		logrus.Debug("Snapshot table empty, engine has not written yet")
		return model.Snapshot{}, "", nil
	}

	row := rows[0]

	var p snapshotPayload
	if err := json.Unmarshal(row.Payload, &p); err != nil {
		// A type error leaves the offending field zeroed and the rest
		// decoded; anything else means the payload itself is broken.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return model.Snapshot{}, "", fmt.Errorf("decode payload: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"field": typeErr.Field,
		}).Warn("Snapshot field has unexpected type, using zero value")
	}

	snap := p.Snapshot
	snap.Loans = validation.NormalizeLoans(p.Loans)
	snap.Offers = validation.NormalizeOffers(p.Offers)
	return snap, row.UpdatedAt, nil
}
