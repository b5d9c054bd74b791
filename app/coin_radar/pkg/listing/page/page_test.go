package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/model"
)

const announcementsHTML = `<html><body>
<ul class="news">
  <li><a class="title">Binance Will List Solayer (LAYER)</a></li>
  <li><a class="title">Binance Will Delist Several Spot Pairs</a></li>
  <li><a class="title">Binance Will List Berachain (BERA) with Seed Tag Applied</a></li>
</ul>
</body></html>`

func TestSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(announcementsHTML))
	}))
	defer srv.Close()

	src := NewSource(config.PageConfig{URL: srv.URL, Selector: "ul.news a.title", Timeout: 5})
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.AssetIdentifier{"LAYER", "BERA"}, got)
}

func TestSource_Fetch_SelectorMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(announcementsHTML))
	}))
	defer srv.Close()

	src := NewSource(config.PageConfig{URL: srv.URL, Selector: "div.bn-tab", Timeout: 5})
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestSource_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewSource(config.PageConfig{URL: srv.URL, Selector: "a", Timeout: 5})
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}
