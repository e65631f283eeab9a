package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auction-engine/internal/autobid"
	"auction-engine/internal/bidding"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/sweeper"

	"github.com/gin-gonic/gin"
)

// syncCascade runs the cascade inline so test assertions observe its outcome
// without polling.
type syncCascade struct {
	resolver *autobid.Resolver
}

func (s syncCascade) Trigger(auctionID string) {
	_ = s.resolver.Resolve(auctionID)
}

// testStack wires the full engine over the in-memory store.
type testStack struct {
	Store   *repository.MemoryStore
	Ledger  *ledger.Ledger
	Wallet  *gateway.MemoryWallet
	Hub     *broadcast.Hub
	Sweeper *sweeper.Sweeper
	Router  *gin.Engine
}

// SetupTestStack builds a router backed by a fresh in-memory engine with a
// synchronous cascade.
func SetupTestStack() *testStack {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	lgr := ledger.New(store)
	wallet := gateway.NewMemoryWallet(1_000_000)
	hub := broadcast.NewHub()
	notify := gateway.NewLogNotifier()

	resolver := autobid.NewResolver(store, lgr, wallet, hub, notify)
	svc := bidding.NewService(store, lgr, wallet, hub, notify, syncCascade{resolver: resolver})

	return &testStack{
		Store:   store,
		Ledger:  lgr,
		Wallet:  wallet,
		Hub:     hub,
		Sweeper: sweeper.New(store, lgr, wallet, hub, notify),
		Router:  server.SetupRouter(svc, hub),
	}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request and parses the JSON envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case nil:
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// dataField extracts resp["data"] as an object.
func dataField(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()

	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}

// createAuction lists an auction over the API and returns its id.
func createAuction(t *testing.T, stack *testStack, sellerID string, startPrice, reservePrice int64) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, stack.Router, "POST", "/auctions", map[string]any{
		"title":         "integration lot",
		"description":   "exercise the full engine",
		"seller_id":     sellerID,
		"start_price":   startPrice,
		"reserve_price": reservePrice,
		"end_at":        time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if w.Code != 201 {
		t.Fatalf("create auction failed: %d %s", w.Code, w.Body.String())
	}
	return dataField(t, resp)["auction_id"].(string)
}
