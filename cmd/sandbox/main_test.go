package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const snapshotJSON = `{
  "positions": [
    {
      "id": "pos-1",
      "symbol": "btcusdt",
      "side": "long",
      "quantity": 2,
      "leverage": 5,
      "entryPrice": 100,
      "marginUsed": 40,
      "fees": {"funding": 1, "trading": 1},
      "entryTime": "2024-01-01T00:00:00Z"
    }
  ],
  "orders": []
}`

type SandboxCmdTestSuite struct {
	suite.Suite
	tempDir string
	server  *httptest.Server
	mu      sync.Mutex
	bodies  map[string]map[string]any
}

func TestSandboxCmdSuite(t *testing.T) {
	suite.Run(t, new(SandboxCmdTestSuite))
}

func (suite *SandboxCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.bodies = make(map[string]map[string]any)

	for _, key := range []string{"SANDBOX_CONFIG", "SANDBOX_BASE_URL", "SANDBOX_TOKEN", "SANDBOX_LOG_LEVEL", "POLYGON_API_KEY"} {
		suite.T().Setenv(key, "")
	}

	router := mux.NewRouter()
	record := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		suite.mu.Lock()
		suite.bodies[r.Method+" "+r.URL.Path] = body
		suite.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"message":"ok from backend"}`)
	}

	router.HandleFunc(sandbox.PathCloseTrade, record).Methods(http.MethodPost)
	router.HandleFunc(sandbox.PathCancelOrder, record).Methods(http.MethodPost)
	router.HandleFunc(sandbox.PathUpdateTrade, record).Methods(http.MethodPut)
	router.HandleFunc(sandbox.PathForceCheckPositions, record).Methods(http.MethodPost)
	router.HandleFunc(sandbox.PathHistory, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"data": [
				{"kind": "transaction", "id": "tx-1", "type": "deposit", "amount": 1000, "createdAt": "2024-01-05T00:00:00Z"}
			],
			"pagination": {"page": 1, "hasMore": false, "totalItems": 1}
		}`)
	}).Methods(http.MethodGet)

	suite.server = httptest.NewServer(router)
}

func (suite *SandboxCmdTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *SandboxCmdTestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out
	cmd.ErrWriter = io.Discard

	base := []string{"sandbox", "--base-url", suite.server.URL, "--token", "secret", "--log-level", "error"}
	err := cmd.Run(context.Background(), append(base, args...))

	return out.String(), err
}

func (suite *SandboxCmdTestSuite) body(key string) map[string]any {
	suite.mu.Lock()
	defer suite.mu.Unlock()

	return suite.bodies[key]
}

func (suite *SandboxCmdTestSuite) writeSnapshot() string {
	path := filepath.Join(suite.tempDir, "snapshot.json")
	suite.Require().NoError(os.WriteFile(path, []byte(snapshotJSON), 0644))

	return path
}

func (suite *SandboxCmdTestSuite) TestParsePrices() {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]float64
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]float64{}},
		{name: "normalizes symbol", pairs: []string{" btcusdt = 64000.5"}, want: map[string]float64{"BTCUSDT": 64000.5}},
		{name: "several", pairs: []string{"A=1", "B=2"}, want: map[string]float64{"A": 1, "B": 2}},
		{name: "missing separator", pairs: []string{"BTC"}, wantErr: true},
		{name: "missing symbol", pairs: []string{"=10"}, wantErr: true},
		{name: "not a number", pairs: []string{"BTC=abc"}, wantErr: true},
		{name: "zero price", pairs: []string{"BTC=0"}, wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, err := parsePrices(tc.pairs)
			if tc.wantErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

				return
			}

			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}

func (suite *SandboxCmdTestSuite) TestLoadSnapshot() {
	snapshot, err := loadSnapshot(suite.writeSnapshot(), nil)
	suite.Require().NoError(err)
	suite.Require().Len(snapshot.Positions, 1)
	suite.Equal("pos-1", snapshot.Positions[0].ID)
	suite.Equal(5.0, snapshot.Positions[0].Leverage)

	snapshot, err = loadSnapshot("-", strings.NewReader(snapshotJSON))
	suite.Require().NoError(err)
	suite.Len(snapshot.Positions, 1)

	_, err = loadSnapshot(filepath.Join(suite.tempDir, "missing.json"), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = loadSnapshot("-", strings.NewReader("{"))
	suite.True(errors.HasCode(err, errors.ErrCodeDecodeFailed))
}

func (suite *SandboxCmdTestSuite) TestMetricsJSON() {
	out, err := suite.run("metrics", "--file", suite.writeSnapshot(), "--price", "BTCUSDT=105", "--json")
	suite.Require().NoError(err)

	var result struct {
		Positions []struct {
			PositionID   string  `json:"positionId"`
			CurrentPrice float64 `json:"currentPrice"`
			Notional     float64 `json:"notional"`
			Leverage     float64 `json:"leverage"`
		} `json:"positions"`
		Prices map[string]float64 `json:"prices"`
	}
	suite.Require().NoError(json.Unmarshal([]byte(out), &result))
	suite.Require().Len(result.Positions, 1)
	suite.Equal("pos-1", result.Positions[0].PositionID)
	suite.Equal(105.0, result.Positions[0].CurrentPrice)
	suite.InDelta(1050.0, result.Positions[0].Notional, 1e-9)
	suite.Equal(5.0, result.Positions[0].Leverage)
}

func (suite *SandboxCmdTestSuite) TestMetricsTable() {
	out, err := suite.run("metrics", "--file", suite.writeSnapshot(), "--price", "BTCUSDT=105")
	suite.Require().NoError(err)
	suite.Contains(out, "Open positions")
	suite.Contains(out, "pos-1")
	suite.Contains(out, "5x")
}

func (suite *SandboxCmdTestSuite) TestMetricsBadPrice() {
	_, err := suite.run("metrics", "--file", suite.writeSnapshot(), "--price", "BTCUSDT")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *SandboxCmdTestSuite) TestClosePartial() {
	out, err := suite.run("close", "--id", "pos-1", "--partial", "50")
	suite.Require().NoError(err)
	suite.Contains(out, "ok from backend")

	body := suite.body("POST " + sandbox.PathCloseTrade)
	suite.Equal("pos-1", body["tradeId"])
	suite.Equal("partial", body["closeType"])
	suite.Equal(50.0, body["partialPercentage"])
}

func (suite *SandboxCmdTestSuite) TestCloseRejectsBadPercentage() {
	_, err := suite.run("close", "--id", "pos-1", "--partial", "95")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPartialPercentage))
	suite.Nil(suite.body("POST " + sandbox.PathCloseTrade))
}

func (suite *SandboxCmdTestSuite) TestCancel() {
	_, err := suite.run("cancel", "--id", "ord-7")
	suite.Require().NoError(err)
	suite.Equal("ord-7", suite.body("POST " + sandbox.PathCancelOrder)["orderId"])
}

func (suite *SandboxCmdTestSuite) TestUpdate() {
	_, err := suite.run("update", "--id", "pos-1", "--stop-loss", "90")
	suite.Require().NoError(err)

	body := suite.body("PUT " + sandbox.PathUpdateTrade)
	suite.Equal("pos-1", body["tradeId"])
	suite.Equal(90.0, body["stopLoss"])
	suite.NotContains(body, "takeProfit")
}

func (suite *SandboxCmdTestSuite) TestForceCheck() {
	out, err := suite.run("force-check")
	suite.Require().NoError(err)
	suite.Contains(out, "ok from backend")
}

func (suite *SandboxCmdTestSuite) TestHistory() {
	out, err := suite.run("history", "--json")
	suite.Require().NoError(err)
	suite.Contains(out, "tx-1")

	out, err = suite.run("history", "--all")
	suite.Require().NoError(err)
	suite.Contains(out, "tx-1")
	suite.Contains(out, "deposit")
}

func (suite *SandboxCmdTestSuite) TestSchema() {
	out, err := suite.run("schema")
	suite.Require().NoError(err)
	suite.True(json.Valid([]byte(out)))

	dir := filepath.Join(suite.tempDir, "config")
	_, err = suite.run("schema", "--out", dir)
	suite.Require().NoError(err)

	sample, err := os.ReadFile(filepath.Join(dir, sampleFileName))
	suite.Require().NoError(err)
	suite.Contains(string(sample), "# yaml-language-server: $schema="+schemaFileName)
	suite.NotContains(string(sample), "token")

	_, err = os.Stat(filepath.Join(dir, schemaFileName))
	suite.NoError(err)
}
