package targetserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/torosent/trafficsim/internal/logging"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(logging.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{"user by id", http.MethodGet, "/users/42", "", 200, "application/json", `"id":"42"`},
		{"update user", http.MethodPut, "/users/7", `{"name":"Ada"}`, 200, "application/json", `"name":"Ada"`},
		{"delete user", http.MethodDelete, "/users/7", "", 200, "application/json", `"deleted":true`},
		{"create order", http.MethodPost, "/orders", `{"qty":3}`, 201, "application/json", `"qty":3`},
		{"order item", http.MethodGet, "/orders/5/items/9", "", 200, "application/json", `"item_id":"9"`},
		{"search html", http.MethodGet, "/search?q=<b>", "", 200, "text/html", "&lt;b&gt;"},
		{"blob", http.MethodGet, "/blob", "", 200, "application/octet-stream", ""},
		{"status", http.MethodGet, "/status/503", "", 503, "application/json", `"status":503`},
		{"bad status", http.MethodGet, "/status/abc", "", 400, "application/json", "invalid"},
		{"options", http.MethodOptions, "/users/1", "", 204, "", ""},
		{"head", http.MethodHead, "/users/1", "", 200, "application/json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatalf("do request: %v", err)
			}
			defer resp.Body.Close()
			data, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, data)
			}
			if tt.wantType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", resp.Header.Get("Content-Type"), tt.wantType)
			}
			if tt.wantContain != "" && !strings.Contains(string(data), tt.wantContain) {
				t.Errorf("body %q does not contain %q", data, tt.wantContain)
			}
		})
	}
}

func TestBrokenReturnsMalformedJSON(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/broken")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var v any
	if err := json.NewDecoder(resp.Body).Decode(&v); err == nil {
		t.Fatal("expected malformed JSON")
	}
}

func TestEchoReflectsRequest(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Post(srv.URL+"/echo?a=1", "text/plain", strings.NewReader("name=Ada"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var echoed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if echoed["body"] != "name=Ada" || echoed["query"] != "a=1" || echoed["content_type"] != "text/plain" {
		t.Errorf("unexpected echo: %v", echoed)
	}
}
