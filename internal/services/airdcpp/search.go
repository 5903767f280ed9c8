package airdcpp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"comicgrabr/internal/logging"
	"comicgrabr/internal/services"
)

// searchExpirationMinutes bounds how long a search instance lives server-side.
const searchExpirationMinutes = 5

// extensionAttempts are the hub search filters tried in order. Comic archives
// come as cbz or cbr; the final unrestricted attempt catches hubs that do not
// index extensions.
var extensionAttempts = [][]string{
	{"cbz"},
	{"cbr"},
	nil,
}

// Search runs the three-step AirDC++ search flow: create a search instance,
// fire the hub search, then poll for results with a growing delay. Results
// are filtered to comic archives and ordered cbz before cbr; within an
// extension the hub's own ranking is preserved. An empty slice with a nil
// error means the hubs returned nothing usable.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	instanceID, err := c.createInstance(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.hubSearch(ctx, instanceID, query); err != nil {
		return nil, err
	}

	raw, err := c.pollResults(ctx, instanceID, query)
	if err != nil {
		return nil, err
	}

	return rankResults(raw), nil
}

func (c *Client) createInstance(ctx context.Context) (int64, error) {
	var resp searchInstanceResponse
	payload := searchInstanceRequest{Expiration: searchExpirationMinutes}
	if err := c.postJSON(ctx, "search", payload, &resp); err != nil {
		return 0, services.Wrap(classify(err), "airdcpp", "create search instance", "", err)
	}
	if resp.ID == 0 {
		return 0, services.Wrap(services.ErrTransient, "airdcpp", "create search instance",
			"response carried no instance id", nil)
	}
	return resp.ID, nil
}

func (c *Client) hubSearch(ctx context.Context, instanceID int64, query string) error {
	path := fmt.Sprintf("search/%d/hub_search", instanceID)

	var lastErr error
	for _, extensions := range extensionAttempts {
		payload := hubSearchRequest{Query: hubSearchQuery{Pattern: query, FileExtensions: extensions}}
		var resp hubSearchResponse
		err := c.postJSON(ctx, path, payload, &resp)
		if err == nil && resp.SearchID != 0 {
			return nil
		}
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
		}
		c.logger.Debug("hub search attempt yielded no search id",
			logging.String("query", query),
			logging.String("extensions", strings.Join(extensions, ",")),
		)
	}

	if lastErr != nil {
		return services.Wrap(classify(lastErr), "airdcpp", "hub search", query, lastErr)
	}
	return services.Wrap(services.ErrTransient, "airdcpp", "hub search",
		fmt.Sprintf("no hub accepted the search for %q", query), nil)
}

func (c *Client) pollResults(ctx context.Context, instanceID int64, query string) ([]searchResult, error) {
	path := fmt.Sprintf("search/%d/results/0/%d", instanceID, c.resultLimit)

	var lastErr error
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		delay := c.pollInitialDelay + time.Duration(attempt)*c.pollDelayIncrement
		if err := c.sleep(ctx, delay); err != nil {
			return nil, services.Wrap(classify(err), "airdcpp", "poll results", query, err)
		}

		var results []searchResult
		if err := c.getJSON(ctx, path, &results); err != nil {
			lastErr = err
			c.logger.Debug("result poll failed",
				logging.String("query", query),
				logging.Int("attempt", attempt+1),
				logging.Error(err),
			)
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
		c.logger.Debug("no results yet",
			logging.String("query", query),
			logging.Int("attempt", attempt+1),
		)
	}

	if lastErr != nil {
		return nil, services.Wrap(classify(lastErr), "airdcpp", "poll results", query, lastErr)
	}
	return nil, nil
}

// rankResults keeps comic archives and orders cbz ahead of cbr, preserving
// the hub ordering within each extension.
func rankResults(raw []searchResult) []Result {
	var cbz, cbr []Result
	for _, r := range raw {
		result := Result{
			ID:   r.ID,
			Name: r.Name,
			Path: r.Path,
			Size: r.Size,
			TTH:  r.TTH,
		}
		if r.Dupe != nil {
			result.OnDisk = strings.Contains(r.Dupe.ID, "share")
			result.InQueue = strings.Contains(r.Dupe.ID, "queue")
		}
		switch {
		case strings.HasSuffix(strings.ToLower(r.Path), ".cbz"):
			cbz = append(cbz, result)
		case strings.HasSuffix(strings.ToLower(r.Path), ".cbr"):
			cbr = append(cbr, result)
		}
	}
	return append(cbz, cbr...)
}
