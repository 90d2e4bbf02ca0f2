package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/nugraph/pkg/cache"
	"github.com/matzehuels/nugraph/pkg/httputil"
)

// registration is a trimmed registration leaf, enough to see a decoded body.
type registration struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// feed serves handler and returns a client pointed at it, backed by a
// file cache in a temp dir.
func feed(t *testing.T, headers map[string]string, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	client := NewClient(store, "nuget:", time.Hour, headers)
	client.SetHTTPClient(server.Client())
	return client, server
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"X-NuGet-ApiKey": "key"}
	client := NewClient(nil, "nuget:", time.Hour, headers)

	if client.HTTPClient() == nil {
		t.Fatal("HTTPClient() = nil")
	}
	if client.HTTPClient().Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient().Timeout, httpTimeout)
	}
	if client.Headers()["X-NuGet-ApiKey"] != "key" {
		t.Errorf("Headers() = %v", client.Headers())
	}
	if _, ok := client.cache.(cache.NullCache); !ok {
		t.Errorf("nil backend gave %T, want cache.NullCache", client.cache)
	}
	if client.attempts != 1 {
		t.Errorf("attempts = %d, want 1", client.attempts)
	}
}

func TestClientGet(t *testing.T) {
	tests := []struct {
		name      string
		defaults  map[string]string
		extra     map[string]string
		status    int
		wantAuth  string
		wantErr   error
		retryable bool
	}{
		{name: "decodes body", status: http.StatusOK},
		{name: "default headers", defaults: map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, status: http.StatusOK, wantAuth: "Basic dXNlcjpwYXNz"},
		{name: "request headers win", defaults: map[string]string{"Authorization": "Basic old"}, extra: map[string]string{"Authorization": "Basic new"}, status: http.StatusOK, wantAuth: "Basic new"},
		{name: "missing package", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "forbidden feed", status: http.StatusForbidden, wantErr: ErrNetwork},
		{name: "feed down", status: http.StatusServiceUnavailable, wantErr: ErrNetwork, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var auth string
			client, server := feed(t, tt.defaults, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s, want GET", r.Method)
				}
				auth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(registration{ID: "Serilog", Version: "4.3.0"})
			})

			var got registration
			err := client.GetWithHeaders(context.Background(), server.URL+"/registration/serilog/4.3.0.json", tt.extra, &got)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				var retry *httputil.RetryableError
				if errors.As(err, &retry) != tt.retryable {
					t.Errorf("retryable = %v, want %v (%T)", !tt.retryable, tt.retryable, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetWithHeaders() error: %v", err)
			}
			if got.ID != "Serilog" || got.Version != "4.3.0" {
				t.Errorf("decoded %+v", got)
			}
			if auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", auth, tt.wantAuth)
			}
		})
	}
}

func TestClientGetInvalidJSON(t *testing.T) {
	client, server := feed(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>login</html>"))
	})
	var got registration
	if err := client.Get(context.Background(), server.URL, &got); err == nil {
		t.Fatal("Get() of an HTML page should fail")
	}
}

func TestClientGetText(t *testing.T) {
	client, server := feed(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<package/>"))
	})
	text, err := client.GetText(context.Background(), server.URL+"/serilog.nuspec")
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "<package/>" {
		t.Errorf("GetText() = %q", text)
	}
}

func TestClientCached(t *testing.T) {
	client := NewClient(nil, "nuget:", time.Hour, nil)
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	client.cache = store

	fetches := 0
	load := func(refresh bool) (registration, error) {
		var v registration
		err := client.Cached(context.Background(), "serilog", refresh, &v, func() error {
			fetches++
			v = registration{ID: "Serilog", Version: "4.3.0"}
			return nil
		})
		return v, err
	}

	for i, step := range []struct {
		refresh     bool
		wantFetches int
	}{
		{false, 1}, // miss
		{false, 1}, // hit
		{true, 2},  // refresh bypasses the read
		{false, 2}, // and stored the fresh value
	} {
		v, err := load(step.refresh)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if v.Version != "4.3.0" {
			t.Errorf("step %d: value = %+v", i, v)
		}
		if fetches != step.wantFetches {
			t.Errorf("step %d: fetches = %d, want %d", i, fetches, step.wantFetches)
		}
	}

	if _, ok, _ := store.Get(context.Background(), "nuget:serilog"); !ok {
		t.Error("value not stored under the client prefix")
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "nuget:", time.Hour, nil)
	store := cache.NewNullCache()
	client.cache = store

	var v registration
	err := client.Cached(context.Background(), "missing", false, &v, func() error { return ErrNotFound })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		want      error
		retryable bool
	}{
		{code: http.StatusOK},
		{code: http.StatusNotFound, want: ErrNotFound},
		{code: http.StatusUnauthorized, want: ErrNetwork},
		{code: http.StatusBadRequest, want: ErrNetwork},
		{code: http.StatusInternalServerError, want: ErrNetwork, retryable: true},
		{code: http.StatusBadGateway, want: ErrNetwork, retryable: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("checkStatus(%d) = %v", tt.code, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.want)
			}
			var retry *httputil.RetryableError
			if errors.As(err, &retry) != tt.retryable {
				t.Errorf("checkStatus(%d) retryable = %v", tt.code, !tt.retryable)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := map[string]string{
		"Serilog":                      "serilog",
		"Microsoft.Extensions.Logging": "microsoft.extensions.logging",
		"  Newtonsoft.Json  ":          "newtonsoft.json",
		"xunit":                        "xunit",
		"":                             "",
	}
	for in, want := range tests {
		if got := NormalizeID(in); got != want {
			t.Errorf("NormalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURLEncode(t *testing.T) {
	tests := map[string]string{
		"serilog":     "serilog",
		"my feed":     "my%20feed",
		"1.0.0+build": "1.0.0+build",
		"a/b":         "a%2Fb",
	}
	for in, want := range tests {
		if got := URLEncode(in); got != want {
			t.Errorf("URLEncode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientGetCached(t *testing.T) {
	var hits atomic.Int32
	client, server := feed(t, nil, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(registration{ID: "Serilog", Version: "4.3.0"})
	})

	for i := range 2 {
		var got registration
		if err := client.GetCached(context.Background(), server.URL+"/index.json", false, &got); err != nil {
			t.Fatalf("GetCached() #%d error: %v", i, err)
		}
		if got.ID != "Serilog" {
			t.Errorf("GetCached() #%d = %+v", i, got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("feed hits = %d, want 1", n)
	}
}

func TestClientNoRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	client, server := feed(t, nil, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	var got registration
	if err := client.GetCached(context.Background(), server.URL, true, &got); err == nil {
		t.Fatal("GetCached() should fail on 503")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("feed hits = %d, want 1", n)
	}
}

func TestClientSetAttempts(t *testing.T) {
	client := NewClient(nil, "nuget:", time.Hour, nil)
	for _, tt := range []struct{ in, want int }{{0, 1}, {-2, 1}, {3, 3}} {
		client.SetAttempts(tt.in)
		if client.attempts != tt.want {
			t.Errorf("SetAttempts(%d): attempts = %d, want %d", tt.in, client.attempts, tt.want)
		}
	}
}

func TestClientOpenRange(t *testing.T) {
	content := []byte("PK\x03\x04 serilog.nuspec")
	client, server := feed(t, map[string]string{"Authorization": "Basic x"}, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic x" {
			t.Errorf("%s without default headers", r.Method)
		}
		http.ServeContent(w, r, "serilog.4.3.0.nupkg", time.Time{}, bytes.NewReader(content))
	})

	r, err := client.OpenRange(context.Background(), server.URL+"/serilog.4.3.0.nupkg")
	if err != nil {
		t.Fatalf("OpenRange() error: %v", err)
	}
	if r.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", r.Size(), len(content))
	}
	buf := make([]byte, 7)
	if _, err := r.ReadAt(buf, 5); err != nil {
		t.Fatalf("ReadAt() error: %v", err)
	}
	if string(buf) != "serilog" {
		t.Errorf("ReadAt() = %q, want %q", buf, "serilog")
	}
}
