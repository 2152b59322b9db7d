package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"crypto-market-scanner/internal/core/domain/analysis/movers_analyzer"
	"crypto-market-scanner/internal/core/domain/analysis/volatility_analyzer"
	"crypto-market-scanner/internal/core/domain/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Snapshot {
	vol := []volatility_analyzer.Entry{{Symbol: "BTCUSDT", Score: 1.5}, {Symbol: "ETHUSDT", Score: 1.2}}
	movers := map[string]movers_analyzer.MoversForInterval{
		"1h": {
			Interval: "1h",
			Gainers:  []movers_analyzer.ChangeEntry{{Symbol: "SOLUSDT", ChangePct: 4.2}},
			Losers:   []movers_analyzer.ChangeEntry{{Symbol: "XRPUSDT", ChangePct: -3.1}},
		},
	}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return New("scan-1", ts, vol, []string{"1h", "4h"}, movers)
}

func TestSnapshot_AccessorsReturnCopies(t *testing.T) {
	s := sample()

	vol := s.TopVolatility()
	vol[0].Score = 999
	assert.Equal(t, 1.5, s.TopVolatility()[0].Score)

	intervals := s.MoverIntervals()
	intervals[0] = "1w"
	assert.Equal(t, []string{"1h", "4h"}, s.MoverIntervals())

	m, ok := s.Movers("1h")
	require.True(t, ok)
	m.Gainers[0].ChangePct = -1
	again, _ := s.Movers("1h")
	assert.Equal(t, 4.2, again.Gainers[0].ChangePct)

	all := s.MoversByInterval()
	all["1h"].Losers[0].Symbol = "HACK"
	again, _ = s.Movers("1h")
	assert.Equal(t, market.Symbol("XRPUSDT"), again.Losers[0].Symbol)
}

func TestSnapshot_ConstructorCopiesInput(t *testing.T) {
	vol := []volatility_analyzer.Entry{{Symbol: "A", Score: 1}}
	s := New("id", time.Now(), vol, []string{"1h"}, nil)

	vol[0].Symbol = "B"
	assert.Equal(t, market.Symbol("A"), s.TopVolatility()[0].Symbol)
}

func TestSnapshot_MissingIntervalHasEmptyLists(t *testing.T) {
	s := sample()

	m, ok := s.Movers("4h")
	require.True(t, ok)
	assert.Equal(t, "4h", m.Interval)
	assert.Empty(t, m.Gainers)
	assert.Empty(t, m.Losers)

	_, ok = s.Movers("1d")
	assert.False(t, ok)
}

func TestSnapshot_IsEmpty(t *testing.T) {
	assert.False(t, sample().IsEmpty())
	assert.True(t, New("id", time.Now(), nil, []string{"1h"}, nil).IsEmpty())
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := sample()

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scan_id":"scan-1"`)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, s.ScanID(), restored.ScanID())
	assert.True(t, s.Timestamp().Equal(restored.Timestamp()))
	assert.Equal(t, s.TopVolatility(), restored.TopVolatility())
	assert.Equal(t, s.MoverIntervals(), restored.MoverIntervals())
	assert.Equal(t, s.MoversByInterval(), restored.MoversByInterval())
}
