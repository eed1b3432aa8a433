// Package harvest discovers currently-live channel names by paginating the
// public catalog: one batch of top categories, then ten concurrent pages of
// the live-streams listing per category, all categories in parallel. The
// result is a flat name list; deduplication is the registry's job.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/onnwee/giftwatch/telemetry"
)

const (
	topGamesURL = "https://api.twitch.tv/kraken/games/top"
	streamsURL  = "https://api.twitch.tv/kraken/streams"

	acceptV5 = "application/vnd.twitchtv.v5+json"

	pageSize         = 100
	pagesPerCategory = 10
)

// Client issues catalog requests. The zero value works without a Client-ID
// for testing; production use should set one.
type Client struct {
	ClientID   string
	UserAgent  string
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// errorPayload is the structured body the catalog returns on client errors.
type errorPayload struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, rawURL string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", acceptV5)
	if c.ClientID != "" {
		req.Header.Set("Client-Id", c.ClientID)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.http().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode == http.StatusBadRequest {
		var ep errorPayload
		if err := json.NewDecoder(resp.Body).Decode(&ep); err != nil {
			return fmt.Errorf("decode error payload: %w", err)
		}
		return fmt.Errorf("request rejected: %s", ep.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TopCategories fetches one batch of the category rankings (offset 0,
// limit 100), order as returned upstream.
func (c *Client) TopCategories(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(pageSize))

	var body struct {
		Top []struct {
			Game struct {
				Name string `json:"name"`
			} `json:"game"`
		} `json:"top"`
	}
	if err := c.get(ctx, topGamesURL, q, &body); err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}

	names := make([]string, 0, len(body.Top))
	for _, entry := range body.Top {
		names = append(names, entry.Game.Name)
	}
	return names, nil
}

// StreamsPage fetches one page of the live-streams listing for a category
// and keeps only each stream's channel name.
func (c *Client) StreamsPage(ctx context.Context, category string, offset int) ([]string, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("game", category)

	var body struct {
		Streams []struct {
			Channel struct {
				Name string `json:"name"`
			} `json:"channel"`
		} `json:"streams"`
	}
	if err := c.get(ctx, streamsURL, q, &body); err != nil {
		return nil, fmt.Errorf("streams page (game=%q offset=%d): %w", category, offset, err)
	}

	names := make([]string, 0, len(body.Streams))
	for _, s := range body.Streams {
		names = append(names, s.Channel.Name)
	}
	return names, nil
}

// Harvest runs the full discovery pass. All page fetches for all categories
// run concurrently; if any one fails the whole harvest fails and no partial
// list is returned. Within a category, results keep page order; across
// categories, the order the rankings listed them.
func (c *Client) Harvest(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "harvest", "harvest")
	defer span.End()

	log := telemetry.LoggerWithCorr(ctx)

	categories, err := c.TopCategories(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	log.Info("found categories", slog.Int("count", len(categories)))
	log.Info("getting streams", slog.Int("up_to", pagesPerCategory*pageSize*len(categories)))

	byCategory := make([][]string, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			names, err := c.categoryStreams(gctx, category)
			if err != nil {
				return err
			}
			byCategory[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var channels []string
	for _, names := range byCategory {
		channels = append(channels, names...)
	}
	telemetry.SetSpanSuccess(span)
	return channels, nil
}

// categoryStreams fetches the ten fixed pages for one category concurrently.
// The pages commit atomically: one failed page fails the category.
func (c *Client) categoryStreams(ctx context.Context, category string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "harvest", "category streams")
	defer span.End()

	pages := make([][]string, pagesPerCategory)
	g, gctx := errgroup.WithContext(ctx)
	for i := range pages {
		offset := i * pageSize
		g.Go(func() error {
			names, err := c.StreamsPage(gctx, category, offset)
			if err != nil {
				return err
			}
			telemetry.HarvestPages.Inc()
			pages[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var names []string
	for _, page := range pages {
		names = append(names, page...)
	}
	telemetry.LoggerWithCorr(ctx).Info("found channels streaming category",
		slog.Int("count", len(names)), slog.String("category", category))
	return names, nil
}
