//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-note/internal/datasource"
	"github.com/yourusername/kyotei-note/test/helpers"
)

const racelistPage = `
<html><body>
<table>
  <div class="is-fs18 is-fBold"><a href="/racer/1">山田 太郎</a></div>
  <div class="is-fs18 is-fBold"><a href="/racer/2">佐藤 次郎</a></div>
  <div class="is-fs18 is-fBold"><a href="/racer/3">鈴木 三郎</a></div>
  <div class="is-fs18 is-fBold"><a href="/racer/4">田中 四郎</a></div>
  <div class="is-fs18 is-fBold"><a href="/racer/5">高橋 五郎</a></div>
  <div class="is-fs18 is-fBold"><a href="/racer/6">伊藤 六郎</a></div>
</table>
</body></html>`

// TestBoatraceClientAgainstServer runs the HTTP client stack against a local
// race-card server.
func TestBoatraceClientAgainstServer(t *testing.T) {
	if testing.Short() {
		t.Skip(skipIntegration)
	}

	server := helpers.MockRaceCardServer(t, map[string]string{
		"7|01|20260412": racelistPage,
	})
	defer server.Close()

	testLogger := logrus.New()
	testLogger.SetLevel(logrus.PanicLevel)

	cfg := datasource.DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 1
	httpClient := datasource.NewRateLimitedHTTPClient(cfg, testLogger)
	defer httpClient.Close()

	client := datasource.NewBoatraceClient(httpClient, server.URL, testLogger)

	t.Run("PublishedCard", func(t *testing.T) {
		rows, err := client.FetchCard(context.Background(), datasource.RaceKey{
			Date:       "20260412",
			VenueName:  "桐生",
			RaceNumber: 7,
		})
		require.NoError(t, err)
		require.Len(t, rows, 6)
		assert.Equal(t, "山田 太郎", rows[0].Name)
		assert.Equal(t, 1, rows[0].BoatNumber)
		assert.Equal(t, "伊藤 六郎", rows[5].Name)
	})

	t.Run("UnpublishedCard", func(t *testing.T) {
		_, err := client.FetchCard(context.Background(), datasource.RaceKey{
			Date:       "20260412",
			VenueName:  "桐生",
			RaceNumber: 8,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, datasource.ErrCardNotPublished))
	})
}
