package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/sandbox-risk/internal/history"
	"github.com/rxtech-lab/sandbox-risk/internal/types"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type recordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Query     map[string]string
	Body      map[string]any
}

type ClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	router   *mux.Router
	client   *Client
	mu       sync.Mutex
	requests []recordedRequest
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.requests = nil
	suite.router = mux.NewRouter()
	suite.router.Use(suite.record)
	suite.server = httptest.NewServer(suite.router)

	client, err := NewClient(ClientConfig{
		BaseURL:    suite.server.URL,
		Timeout:    2 * time.Second,
		APIVersion: "1.0.0",
	}, StaticToken("secret-token"))
	suite.Require().NoError(err)
	suite.client = client
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ClientTestSuite) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get(HeaderRequestID),
			Query:     map[string]string{},
			Body:      nil,
		}

		for key := range r.URL.Query() {
			rec.Query[key] = r.URL.Query().Get(key)
		}

		if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
			_ = json.Unmarshal(body, &rec.Body)
		}

		suite.mu.Lock()
		suite.requests = append(suite.requests, rec)
		suite.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (suite *ClientTestSuite) last() recordedRequest {
	suite.mu.Lock()
	defer suite.mu.Unlock()

	suite.Require().NotEmpty(suite.requests)

	return suite.requests[len(suite.requests)-1]
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func (suite *ClientTestSuite) TestNewClientValidation() {
	_, err := NewClient(ClientConfig{BaseURL: "", Timeout: time.Second}, StaticToken("t"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost", Timeout: 0}, StaticToken("t"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost", Timeout: time.Second}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *ClientTestSuite) TestClosePartial() {
	suite.router.HandleFunc(PathCloseTrade, respond(http.StatusOK, `{"success":true,"message":"closed 50%"}`)).Methods(http.MethodPost)

	req, err := NewCloseRequest("pos-1", types.CloseTypePartial, optional.Some(50))
	suite.Require().NoError(err)

	result, err := suite.client.Close(context.Background(), req)
	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Equal("closed 50%", result.Message)

	rec := suite.last()
	suite.Equal(http.MethodPost, rec.Method)
	suite.Equal("Bearer secret-token", rec.Auth)
	suite.NotEmpty(rec.RequestID)
	suite.Equal(map[string]any{"tradeId": "pos-1", "closeType": "partial", "partialPercentage": float64(50)}, rec.Body)
}

func (suite *ClientTestSuite) TestCancelOrder() {
	suite.router.HandleFunc(PathCancelOrder, respond(http.StatusOK, `{"success":true}`)).Methods(http.MethodPost)

	req, err := NewCancelOrderRequest("ord-9")
	suite.Require().NoError(err)

	_, err = suite.client.CancelOrder(context.Background(), req)
	suite.Require().NoError(err)
	suite.Equal(map[string]any{"orderId": "ord-9"}, suite.last().Body)
}

func (suite *ClientTestSuite) TestUpdateRiskLevelsUsesPut() {
	suite.router.HandleFunc(PathUpdateTrade, respond(http.StatusOK, `{"success":true}`)).Methods(http.MethodPut)

	req, err := NewUpdateRiskLevelsRequest("pos-1", optional.Some(90.0), optional.None[float64]())
	suite.Require().NoError(err)

	_, err = suite.client.UpdateRiskLevels(context.Background(), req)
	suite.Require().NoError(err)

	rec := suite.last()
	suite.Equal(http.MethodPut, rec.Method)
	suite.Equal(map[string]any{"tradeId": "pos-1", "stopLoss": float64(90)}, rec.Body)
}

func (suite *ClientTestSuite) TestForceCheckPositions() {
	suite.router.HandleFunc(PathForceCheckPositions, respond(http.StatusOK, `{"success":true,"message":"2 positions closed"}`)).Methods(http.MethodPost)

	result, err := suite.client.ForceCheckPositions(context.Background())
	suite.Require().NoError(err)
	suite.Equal("2 positions closed", result.Message)
	suite.Nil(suite.last().Body)
}

func (suite *ClientTestSuite) TestEachMutationGetsItsOwnRequestID() {
	suite.router.HandleFunc(PathForceCheckPositions, respond(http.StatusOK, `{"success":true}`)).Methods(http.MethodPost)

	_, err := suite.client.ForceCheckPositions(context.Background())
	suite.Require().NoError(err)
	first := suite.last().RequestID

	_, err = suite.client.ForceCheckPositions(context.Background())
	suite.Require().NoError(err)

	suite.NotEqual(first, suite.last().RequestID)
}

func (suite *ClientTestSuite) TestErrorMessagePassthrough() {
	tests := []struct {
		name    string
		status  int
		body    string
		code    errors.ErrorCode
		message string
	}{
		{"message field", http.StatusBadRequest, `{"success":false,"message":"Position not found"}`, errors.ErrCodeRequestFailed, "Position not found"},
		{"error field", http.StatusInternalServerError, `{"error":"database unavailable"}`, errors.ErrCodeRequestFailed, "database unavailable"},
		{"no body", http.StatusBadGateway, ``, errors.ErrCodeRequestFailed, "request failed with status 502"},
		{"html body", http.StatusServiceUnavailable, `<html>down</html>`, errors.ErrCodeRequestFailed, "request failed with status 503"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"Unauthorized"}`, errors.ErrCodeUnauthorized, "Unauthorized"},
		{"forbidden", http.StatusForbidden, ``, errors.ErrCodeUnauthorized, "request failed with status 403"},
		{"rejected with ok status", http.StatusOK, `{"success":false,"error":"Trade already closed"}`, errors.ErrCodeRequestFailed, "Trade already closed"},
	}

	var current struct {
		status int
		body   string
	}

	suite.router.HandleFunc(PathCloseTrade, func(w http.ResponseWriter, r *http.Request) {
		suite.mu.Lock()
		status, body := current.status, current.body
		suite.mu.Unlock()

		respond(status, body)(w, r)
	}).Methods(http.MethodPost)

	req, err := NewCloseRequest("pos-1", types.CloseTypeManual, optional.None[int]())
	suite.Require().NoError(err)

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.mu.Lock()
			current.status = tc.status
			current.body = tc.body
			suite.mu.Unlock()

			_, err := suite.client.Close(context.Background(), req)
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
			suite.Equal(tc.message, errors.Message(err))
			suite.Equal(tc.status, errors.StatusCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestTransportFailure() {
	suite.server.Close()

	_, err := suite.client.ForceCheckPositions(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeRequestFailed))
	suite.Equal(0, errors.StatusCode(err))
}

func (suite *ClientTestSuite) TestNoRetry() {
	suite.router.HandleFunc(PathForceCheckPositions, respond(http.StatusInternalServerError, `{"error":"boom"}`)).Methods(http.MethodPost)

	_, err := suite.client.ForceCheckPositions(context.Background())
	suite.Require().Error(err)

	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.Len(suite.requests, 1)
}

func (suite *ClientTestSuite) TestTokenSourceFailure() {
	client, err := NewClient(ClientConfig{BaseURL: suite.server.URL, Timeout: time.Second}, StaticToken(""))
	suite.Require().NoError(err)

	_, err = client.ForceCheckPositions(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeUnauthorized))

	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.Empty(suite.requests)
}

func (suite *ClientTestSuite) TestAPIVersionCheck() {
	suite.router.HandleFunc(PathForceCheckPositions, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderAPIVersion, "v1.0.3")
		respond(http.StatusOK, `{"success":true}`)(w, r)
	}).Methods(http.MethodPost)

	suite.router.HandleFunc(PathHistory, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderAPIVersion, "2.0.0")
		respond(http.StatusOK, `{"data":[]}`)(w, r)
	}).Methods(http.MethodGet)

	// A differing patch version is compatible.
	_, err := suite.client.ForceCheckPositions(context.Background())
	suite.NoError(err)

	query, err := NewHistoryQuery(1, 20)
	suite.Require().NoError(err)

	_, err = suite.client.History(context.Background(), query)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeVersionMismatch))
}

func (suite *ClientTestSuite) TestVersionMismatchKeepsMutationResult() {
	suite.router.HandleFunc(PathCloseTrade, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderAPIVersion, "1.1.0")
		respond(http.StatusOK, `{"success":true,"message":"Position closed"}`)(w, r)
	}).Methods(http.MethodPost)

	req, err := NewCloseRequest("pos-1", types.CloseTypeManual, optional.None[int]())
	suite.Require().NoError(err)

	result, err := suite.client.Close(context.Background(), req)
	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Equal("Position closed", result.Message)

	// The backend already acted on the first request; the next one never leaves the client.
	_, err = suite.client.Close(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeVersionMismatch))

	suite.mu.Lock()
	defer suite.mu.Unlock()
	suite.Len(suite.requests, 1)
}

func (suite *ClientTestSuite) TestHistory() {
	suite.router.HandleFunc(PathHistory, respond(http.StatusOK, `{
		"success": true,
		"data": [
			{"kind": "trade", "id": "t1", "symbol": "BTCUSDT", "side": "short", "quantity": 1, "leverage": 10,
			 "entryPrice": 100, "marginUsed": 10, "entryTime": "2024-01-01T00:00:00Z",
			 "exitPrice": 95, "exitTime": "2024-01-02T00:00:00Z", "realizedPnL": 50, "closeReason": "manual"},
			{"kind": "transaction", "id": "x1", "type": "deposit", "amount": 500,
			 "balanceBefore": 0, "balanceAfter": 500, "createdAt": "2024-01-05T00:00:00Z"}
		],
		"pagination": {"hasMore": false, "totalItems": 2}
	}`)).Methods(http.MethodGet)

	query, err := NewHistoryQuery(1, 20)
	suite.Require().NoError(err)

	page, err := suite.client.History(context.Background(), query)
	suite.Require().NoError(err)

	suite.Equal(map[string]string{"page": "1", "limit": "20"}, suite.last().Query)
	suite.Empty(suite.last().RequestID)
	suite.Equal(1, page.Page)
	suite.False(page.HasMore)
	suite.Equal(2, page.TotalItems)
	suite.Require().Len(page.Items, 2)
	suite.Equal(history.ItemKindTransaction, page.Items[0].Kind)
	suite.Equal(history.ItemKindTrade, page.Items[1].Kind)
}

func (suite *ClientTestSuite) TestContextCancellation() {
	suite.router.HandleFunc(PathForceCheckPositions, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}).Methods(http.MethodPost)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := suite.client.ForceCheckPositions(ctx)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeRequestFailed))
}
