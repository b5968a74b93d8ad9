package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAPILocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/203.0.113.7/json/":
			w.Write([]byte(`{"ip":"203.0.113.7","city":"Bangkok","country_name":"Thailand"}`))
		case "/json/":
			w.Write([]byte(`{"city":"Chiang Mai","country_name":"Thailand"}`))
		case "/10.0.0.1/json/":
			w.Write([]byte(`{"error":true,"reason":"Reserved IP Address"}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	l := NewIPAPI(srv.URL+"/", time.Second)
	ctx := context.Background()

	loc, err := l.Locate(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, "Bangkok", loc.City)
	assert.Equal(t, "Thailand", loc.Country)

	loc, err = l.Locate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Chiang Mai", loc.City)

	_, err = l.Locate(ctx, "10.0.0.1")
	assert.ErrorContains(t, err, "Reserved IP Address")

	_, err = l.Locate(ctx, "198.51.100.1")
	assert.ErrorContains(t, err, "429")
}

func TestIPAPITimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	l := NewIPAPI(srv.URL, 50*time.Millisecond)
	_, err := l.Locate(context.Background(), "203.0.113.7")
	assert.Error(t, err)
}

func TestOpenMaxMindMissingFile(t *testing.T) {
	_, err := OpenMaxMind("testdata/does-not-exist.mmdb")
	assert.Error(t, err)
}
