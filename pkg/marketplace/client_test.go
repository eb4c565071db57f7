package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/torqueline/partsource/pkg/cache"
	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/session"
)

func testCred() session.Credential {
	cookies := map[string]string{"JSESSIONID": "abc123"}
	return session.Credential{Cookies: cookies, Header: session.BuildHeader(cookies)}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, cache.NewNullCache(), nil)
}

func TestExecuteReturnsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Cookie"); got != "JSESSIONID=abc123" {
			t.Errorf("Cookie header = %q", got)
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.OperationName != "VehicleByVin" {
			t.Errorf("operationName = %q", req.OperationName)
		}

		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"ok": true}})
	})

	data, err := client.Execute(context.Background(), "VehicleByVin", vehicleByVinQuery,
		map[string]any{"vin": "x"}, testCred())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Execute() data = %s", data)
	}
}

func TestExecuteStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.Code
	}{
		{name: "401 is session expiry", status: http.StatusUnauthorized, code: errors.ErrCodeSessionExpired},
		{name: "403 is session expiry", status: http.StatusForbidden, code: errors.ErrCodeSessionExpired},
		{name: "500 is network", status: http.StatusInternalServerError, code: errors.ErrCodeNetwork},
		{name: "502 is network", status: http.StatusBadGateway, code: errors.ErrCodeNetwork},
		{name: "404 is network", status: http.StatusNotFound, code: errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Execute(context.Background(), "op", "query", nil, testCred())
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestExecuteEmbeddedErrorsAreSearchFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{
				{"message": "unsupported part type"},
				{"message": "second error ignored"},
			},
		})
	})

	_, err := client.Execute(context.Background(), "op", "query", nil, testCred())
	if !errors.Is(err, errors.ErrCodeSearchFailed) {
		t.Fatalf("Execute() code = %v, want SEARCH_FAILED", errors.GetCode(err))
	}
	if errors.UserMessage(err) != "unsupported part type" {
		t.Errorf("message = %q, want first embedded error", errors.UserMessage(err))
	}
}

func TestExecuteTransportFailureIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(server.URL, cache.NewNullCache(), nil)
	server.Close()

	_, err := client.Execute(context.Background(), "op", "query", nil, testCred())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Execute() code = %v, want NETWORK_ERROR", errors.GetCode(err))
	}
}

func TestExecuteMalformedBodyIsNetwork(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.Execute(context.Background(), "op", "query", nil, testCred())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Execute() code = %v, want NETWORK_ERROR", errors.GetCode(err))
	}
}
