// Package rates fetches daily currency reference rates from the ECB
// XML feed.
package rates

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/finbase/payment-service/internal/config"
)

// DailyRates holds one day of reference rates against the base currency
type DailyRates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client handles integration with the ECB reference-rate feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new rates client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RatesURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch retrieves the raw XML feed
func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Rates XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the dated rate set from the feed. The feed
// nests one dated Cube holding one Cube per currency.
func (c *Client) parseXMLResponse(rawBody []byte) (*DailyRates, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	dated := doc.FindElement("//Cube/Cube[@time]")
	if dated == nil {
		return nil, fmt.Errorf("no dated rate set found in XML")
	}

	result := &DailyRates{
		Base:  "EUR",
		Date:  dated.SelectAttrValue("time", ""),
		Rates: make(map[string]float64),
	}

	for _, el := range dated.SelectElements("Cube") {
		currency := el.SelectAttrValue("currency", "")
		rateStr := el.SelectAttrValue("rate", "")
		if currency == "" || rateStr == "" {
			continue
		}
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", currency, err)
		}
		result.Rates[currency] = rate
	}

	if len(result.Rates) == 0 {
		return nil, fmt.Errorf("no rates found in XML")
	}
	return result, nil
}

// GetDailyRates retrieves the current day's reference rates
func (c *Client) GetDailyRates() (*DailyRates, error) {
	body, err := c.fetch()
	if err != nil {
		return nil, err
	}

	rates, err := c.parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d reference rates for %s", len(rates.Rates), rates.Date)
	return rates, nil
}
