package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-note/internal/models"
)

// racerNameSelector targets the racer-name anchors on the official race-list
// page. If the page structure changes this stops matching, which surfaces as
// ErrCardNotPublished rather than a crash.
const racerNameSelector = "div.is-fs18.is-fBold a"

// BoatraceClient scrapes the official race-list page for a race's ordered
// competitor names.
type BoatraceClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     logrus.FieldLogger
}

// NewBoatraceClient creates a client for the official race-list pages.
func NewBoatraceClient(httpClient *RateLimitedHTTPClient, baseURL string, logger logrus.FieldLogger) *BoatraceClient {
	if baseURL == "" {
		baseURL = "https://www.boatrace.jp/owpc/pc/race"
	}
	return &BoatraceClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// FetchCard retrieves the race card. Unreachable network and missing lane
// table are reported as distinct coded errors; both are recoverable.
func (c *BoatraceClient) FetchCard(ctx context.Context, key RaceKey) ([]models.CompetitorEntry, error) {
	venueCode, ok := models.VenueCode(key.VenueName)
	if !ok {
		return nil, NewSourceError(c.Name(), ErrCodeNotPublished,
			fmt.Sprintf("unknown venue %q", key.VenueName), ErrCardNotPublished)
	}

	url := fmt.Sprintf("%s/racelist?rno=%d&jcd=%s&hd=%s", c.baseURL, key.RaceNumber, venueCode, key.Date)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "failed to fetch race list", ErrSourceUnreachable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewSourceError(c.Name(), ErrCodeServerError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), ErrSourceUnreachable)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNotPublished, "failed to parse race list page", ErrCardNotPublished)
	}

	rows := parseRacerNames(doc)
	if len(rows) == 0 {
		// Reachable page without the lane table: not yet published, or the
		// page layout changed underneath the selector.
		return nil, NewSourceError(c.Name(), ErrCodeNotPublished, "lane table not found on page", ErrCardNotPublished)
	}

	c.logger.WithFields(logrus.Fields{
		"race":   key.String(),
		"racers": len(rows),
	}).Debug("fetched race card")

	return rows, nil
}

// Name returns the data source name.
func (c *BoatraceClient) Name() string {
	return "boatrace_official"
}

// parseRacerNames extracts up to six racer names in boat-number order.
func parseRacerNames(doc *goquery.Document) []models.CompetitorEntry {
	var rows []models.CompetitorEntry
	doc.Find(racerNameSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 6 {
			return false
		}
		name := strings.TrimSpace(s.Text())
		if name == "" {
			return true
		}
		rows = append(rows, models.CompetitorEntry{BoatNumber: i + 1, Name: name})
		return true
	})
	return rows
}
