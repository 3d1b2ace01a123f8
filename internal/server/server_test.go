package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/render"
	"cryptoStats/internal/statsapi"
)

// fakeStatsAPI serves the two stats endpoints and counts requests per path.
type fakeStatsAPI struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]int
}

func (f *fakeStatsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	coin := r.URL.Query().Get("coin")
	f.mu.Lock()
	f.calls = append(f.calls, r.URL.Path+"?"+coin)
	status := f.fail[r.URL.Path]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	switch r.URL.Path {
	case "/api/stats":
		fmt.Fprint(w, `{"price": 65000.1234, "marketCap": 1280000000000, "24hChange": 2.5}`)
	case "/api/deviation":
		fmt.Fprint(w, `{"deviation": 134.56}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeStatsAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestServer(t *testing.T, api *fakeStatsAPI) (*dashboard.Dashboard, *httptest.Server) {
	t.Helper()

	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	client, err := statsapi.NewClient(statsapi.Config{BaseURL: apiSrv.URL + "/api"}, zap.NewNop())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	dash, err := dashboard.New(dashboard.Config{}, client, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	t.Cleanup(dash.Close)

	srv := httptest.NewServer(New(dash, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return dash, srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestIndexRendersCards(t *testing.T) {
	dash, srv := newTestServer(t, &fakeStatsAPI{})
	dash.Start(context.Background())
	dash.Wait()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "$65000.12") {
		t.Fatalf("page missing price")
	}
}

func TestSelectCoin(t *testing.T) {
	api := &fakeStatsAPI{}
	dash, srv := newTestServer(t, api)

	resp, err := noRedirectClient().PostForm(srv.URL+"/select", url.Values{"coin": {"ethereum"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	dash.Wait()
	want := []string{"/api/stats?ethereum", "/api/deviation?ethereum"}
	got := api.Calls()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("calls mismatch: %v != %v", got, want)
	}
	if dash.State().Coin.ID != "ethereum" {
		t.Fatalf("selection not applied")
	}
}

func TestSelectUnknownCoin(t *testing.T) {
	api := &fakeStatsAPI{}
	_, srv := newTestServer(t, api)

	resp, err := noRedirectClient().PostForm(srv.URL+"/select", url.Values{"coin": {"dogecoin"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if len(api.Calls()) != 0 {
		t.Fatalf("no api calls expected: %v", api.Calls())
	}
}

func TestRefreshAndStateAfterStatsFailure(t *testing.T) {
	api := &fakeStatsAPI{fail: map[string]int{"/api/stats": http.StatusInternalServerError}}
	dash, srv := newTestServer(t, api)

	resp, err := noRedirectClient().Post(srv.URL+"/refresh", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	dash.Wait()

	resp, err = http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()

	var view render.View
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Error != "Failed to fetch stats" || view.ErrorKind != "stats" {
		t.Fatalf("unexpected error: %q (%s)", view.Error, view.ErrorKind)
	}
	if view.Loading || view.Cards != nil {
		t.Fatalf("unexpected view: %+v", view)
	}
	for _, call := range api.Calls() {
		if strings.HasPrefix(call, "/api/deviation") {
			t.Fatalf("deviation must not be requested after stats failure")
		}
	}
}

func TestCoinsAndHealth(t *testing.T) {
	_, srv := newTestServer(t, &fakeStatsAPI{})

	resp, err := http.Get(srv.URL + "/api/coins")
	if err != nil {
		t.Fatalf("get coins: %v", err)
	}
	var list []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode coins: %v", err)
	}
	resp.Body.Close()
	if len(list) != 3 || list[1]["id"] != "matic-network" {
		t.Fatalf("unexpected coins: %v", list)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected health status: %d", resp.StatusCode)
	}
}

func TestWebsocketPushesState(t *testing.T) {
	dash, srv := newTestServer(t, &fakeStatsAPI{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var initial render.View
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if initial.Cards != nil || initial.Generation != 0 {
		t.Fatalf("unexpected initial view: %+v", initial)
	}

	dash.Refresh()

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for {
		var view render.View
		if err := conn.ReadJSON(&view); err != nil {
			t.Fatalf("read update: %v", err)
		}
		if !view.Loading && view.Cards != nil {
			if view.Cards.Price != "$65000.12" || view.Deviation != "134.56" {
				t.Fatalf("unexpected pushed view: %+v", view)
			}
			return
		}
	}
}
