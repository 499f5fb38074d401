package client

import (
	"context"
)

// checkOverflow detects a truncated unbatched result.
//
// A row count below the page cap is complete. At the cap, the second page is
// requested with the same query; any rows there mean the first page was cut
// short and the call fails with *OverflowError. An empty second page means the
// result held exactly PageCap rows.
func (c *Client) checkOverflow(ctx context.Context, ep Endpoint, query string, res *FetchResult) error {
	if res.RowCount < c.config.PageCap {
		return nil
	}

	overflowProbesTotal.WithLabelValues(ep.Name).Inc()
	c.logger.Debug().
		Str("endpoint", ep.Name).
		Int("row_count", res.RowCount).
		Msg("Result reached the page cap, probing second page")

	probe, err := c.fetch(ctx, ep, query+OverflowProbe)
	if err != nil {
		return err
	}

	if probe.RowCount > 0 {
		c.logger.Warn().
			Str("endpoint", ep.Name).
			Int("page_cap", c.config.PageCap).
			Int("next_page_rows", probe.RowCount).
			Msg("Result exceeds the page cap")
		return &OverflowError{Cap: c.config.PageCap, Endpoint: ep.Name}
	}

	return nil
}
