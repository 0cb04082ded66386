package items_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/PriceBox/internal/models"
	"github.com/BearBump/PriceBox/internal/services/items"
)

type stubRepo struct {
	byJAN      map[int64]*models.Item
	conditions []*models.Condition
	lowest     *models.Price
	prices     []*models.Price
}

func (r *stubRepo) CreateOrGetItems(ctx context.Context, inputs []models.ItemCreateInput) ([]*models.Item, error) {
	out := make([]*models.Item, 0, len(inputs))
	for i, in := range inputs {
		out = append(out, &models.Item{ID: uint64(i + 1), JAN: in.JAN})
	}
	return out, nil
}

func (r *stubRepo) GetItemsByIDs(ctx context.Context, ids []uint64) ([]*models.Item, error) {
	return nil, nil
}

func (r *stubRepo) GetItemByJAN(ctx context.Context, jan int64) (*models.Item, error) {
	return r.byJAN[jan], nil
}

func (r *stubRepo) ListActiveItems(ctx context.Context) ([]*models.Item, error) {
	return []*models.Item{{ID: 1, JAN: 1}}, nil
}

func (r *stubRepo) SetItemDisabled(ctx context.Context, itemID uint64, disabled bool) error {
	return nil
}

func (r *stubRepo) AddCondition(ctx context.Context, c *models.Condition) error {
	c.ID = 77
	r.conditions = append(r.conditions, c)
	return nil
}

func (r *stubRepo) ListEnabledConditions(ctx context.Context, itemID uint64) ([]*models.Condition, error) {
	return r.conditions, nil
}

func (r *stubRepo) SetConditionDisabled(ctx context.Context, conditionID uint64, disabled bool) error {
	return nil
}

func (r *stubRepo) LowestPrice(ctx context.Context, itemID uint64) (*models.Price, error) {
	return r.lowest, nil
}

func (r *stubRepo) ListPrices(ctx context.Context, itemID uint64, limit, offset int) ([]*models.Price, error) {
	return r.prices, nil
}

func newTestServer(repo *stubRepo) *httptest.Server {
	svc := items.New(repo, nil, 0)
	h := New(svc)

	r := chi.NewRouter()
	r.Route("/", h.Routes)
	return httptest.NewServer(r)
}

func TestCreateItems(t *testing.T) {
	srv := newTestServer(&stubRepo{})
	defer srv.Close()

	body := bytes.NewBufferString(`{"items":[{"jan":4571245296405}]}`)
	resp, err := http.Post(srv.URL+"/items", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Items []*models.Item `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Items, 1)
	require.Equal(t, int64(4571245296405), out.Items[0].JAN)
}

func TestCreateItems_BadRequest(t *testing.T) {
	srv := newTestServer(&stubRepo{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/items", "application/json", bytes.NewBufferString(`{"items":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetItemByJAN(t *testing.T) {
	repo := &stubRepo{byJAN: map[int64]*models.Item{
		4571245296405: {ID: 1, JAN: 4571245296405, Description: "Nendoroid Example"},
	}}
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/items/jan/4571245296405")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item models.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	require.Equal(t, "Nendoroid Example", item.Description)

	resp, err = http.Get(srv.URL + "/items/jan/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddCondition(t *testing.T) {
	repo := &stubRepo{}
	srv := newTestServer(repo)
	defer srv.Close()

	body := bytes.NewBufferString(`{"type":"below_price","value":100}`)
	resp, err := http.Post(srv.URL+"/items/1/conditions", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cond models.Condition
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cond))
	require.Equal(t, uint64(77), cond.ID)
	require.Equal(t, models.ItemConditionAll, cond.ItemCondition)

	// неизвестный тип условия отклоняется
	body = bytes.NewBufferString(`{"type":"weird","value":100}`)
	resp, err = http.Post(srv.URL+"/items/1/conditions", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLowestPrice(t *testing.T) {
	repo := &stubRepo{lowest: &models.Price{ID: 2, ItemID: 1, ConvertedAmount: 85, ConvertedCurrency: "EUR"}}
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/items/1/prices/lowest")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Price
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.InDelta(t, 85.0, p.ConvertedAmount, 1e-9)
}

func TestLowestPrice_NoHistory(t *testing.T) {
	srv := newTestServer(&stubRepo{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/items/1/prices/lowest")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPrices(t *testing.T) {
	repo := &stubRepo{prices: []*models.Price{{ID: 1}, {ID: 2}}}
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/items/1/prices?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Prices []*models.Price `json:"prices"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Prices, 2)
}
