package shopemu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/PriceBox/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClient_LowestPrices_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/offers.json", r.URL.Path)
		require.Equal(t, "demo", r.URL.Query().Get("apiKey"))
		require.Equal(t, "amiami", r.URL.Query().Get("module"))
		require.Equal(t, "4571245296405", r.URL.Query().Get("jan"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "ok",
  "data": {
    "offers": [
      {"condition":"new","price":"12,800¥","url":"https://amiami.example/1"},
      {"condition":"new","price":"11,500¥","url":"https://amiami.example/2"},
      {"condition":"used","price":"9,800¥","url":"https://amiami.example/3"}
    ]
  }
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "demo", "amiami")
	item := &models.Item{ID: 1, JAN: 4571245296405}

	res, err := c.LowestPrices(context.Background(), item)
	require.NoError(t, err)

	require.NotNil(t, res.New)
	require.InDelta(t, 11500.0, res.New.Amount, 1e-9)
	require.Equal(t, "11,500¥", res.New.Currency)
	require.Equal(t, "https://amiami.example/2", res.New.URL)

	require.NotNil(t, res.Used)
	require.InDelta(t, 9800.0, res.Used.Amount, 1e-9)
}

func TestClient_LowestPrices_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","data":{"offers":[]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "demo", "amiami")
	_, err := c.LowestPrices(context.Background(), &models.Item{JAN: 1})
	require.Error(t, err)
}

func TestClient_UpdateItemDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/item_info.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "ok",
  "data": {
    "description": "Nendoroid Example",
    "term_en": "nendoroid example",
    "term_jp": "ねんどろいど",
    "image": "https://amiami.example/img/1.jpg"
  }
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "demo", "amiami")
	item := &models.Item{ID: 1, JAN: 4571245296405, Description: "old"}

	require.NoError(t, c.UpdateItemDetails(context.Background(), item))
	require.Equal(t, "Nendoroid Example", item.Description)
	require.Equal(t, "nendoroid example", item.TermEN)
	require.Equal(t, "ねんどろいど", item.TermJP)
	require.Equal(t, "https://amiami.example/img/1.jpg", item.Image)
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "demo", "amiami")
	_, err := c.LowestPrices(context.Background(), &models.Item{JAN: 1})
	require.Error(t, err)
}
