package shopemu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BearBump/PriceBox/internal/currency"
	"github.com/BearBump/PriceBox/internal/integrations/source"
	"github.com/BearBump/PriceBox/internal/models"
	"github.com/pkg/errors"
)

// Client ходит в shop emulator, который умеет изображать несколько
// маркетплейсов разом: module передаётся параметром запроса.
type Client struct {
	baseURL string
	apiKey  string
	module  string
	httpc   *http.Client
}

func New(baseURL, apiKey, module string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9100"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		module:  module,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) ModuleKey() string { return c.module }

type offersResp struct {
	Status string `json:"status"`
	Data   struct {
		Offers []struct {
			Condition string `json:"condition"`
			Price     string `json:"price"`
			URL       string `json:"url"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *Client) LowestPrices(ctx context.Context, item *models.Item) (source.Listings, error) {
	var r offersResp
	if err := c.getJSON(ctx, "/offers.json", item.JAN, &r); err != nil {
		return source.Listings{}, err
	}
	if r.Status != "ok" {
		return source.Listings{}, fmt.Errorf("shop emulator status=%s", r.Status)
	}

	var listings source.Listings
	for _, o := range r.Data.Offers {
		cond, err := models.ParseItemCondition(o.Condition)
		if err != nil || cond == models.ItemConditionAll {
			continue
		}

		amount, err := currency.ParseAmount(o.Price)
		if err != nil {
			return source.Listings{}, errors.Wrapf(err, "parse price %q", o.Price)
		}

		l := &source.Listing{
			Amount:    amount,
			Currency:  o.Price,
			URL:       o.URL,
			Condition: cond,
		}

		switch cond {
		case models.ItemConditionNew:
			if listings.New == nil || l.Amount < listings.New.Amount {
				listings.New = l
			}
		case models.ItemConditionUsed:
			if listings.Used == nil || l.Amount < listings.Used.Amount {
				listings.Used = l
			}
		}
	}

	return listings, nil
}

type infoResp struct {
	Status string `json:"status"`
	Data   struct {
		Description string `json:"description"`
		TermEN      string `json:"term_en"`
		TermJP      string `json:"term_jp"`
		Image       string `json:"image"`
	} `json:"data"`
}

func (c *Client) UpdateItemDetails(ctx context.Context, item *models.Item) error {
	var r infoResp
	if err := c.getJSON(ctx, "/item_info.json", item.JAN, &r); err != nil {
		return err
	}
	if r.Status != "ok" {
		return fmt.Errorf("shop emulator status=%s", r.Status)
	}

	// пустые поля ответа не затирают уже известные данные
	if r.Data.Description != "" {
		item.Description = r.Data.Description
	}
	if r.Data.TermEN != "" {
		item.TermEN = r.Data.TermEN
	}
	if r.Data.TermJP != "" {
		item.TermJP = r.Data.TermJP
	}
	if r.Data.Image != "" {
		item.Image = r.Data.Image
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, jan int64, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return errors.Wrap(err, "parse base url")
	}
	u.Path = path

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("module", c.module)
	q.Set("jan", strconv.FormatInt(jan, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("shop emulator http %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}
