// Command seed posts demo buy requests and listings to a running service
// so the matching pipeline can be exercised end to end.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultTimeout = 10 * time.Second

type listingSeed struct {
	SellerID       string  `json:"seller_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	Quantity       int     `json:"quantity"`
	Unit           string  `json:"unit"`
	SellerVerified bool    `json:"seller_verified"`
}

type requestSeed struct {
	BuyerID     string  `json:"buyer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	MaxBudget   float64 `json:"max_budget"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	Location    string  `json:"location"`
	Urgency     string  `json:"urgency"`
}

var listings = []listingSeed{
	{
		SellerID: "seller-abebe", Title: "Premium Teff Grain", Description: "White teff grain from Gojjam, freshly milled",
		Category: "AGRICULTURAL_PRODUCTS", Price: 9500, Currency: "ETB", Quantity: 500, Unit: "quintal", SellerVerified: true,
	},
	{
		SellerID: "seller-hana", Title: "Washed Arabica Coffee Beans", Description: "Grade 1 washed arabica from Yirgacheffe",
		Category: "AGRICULTURAL_PRODUCTS", Price: 32000, Currency: "ETB", Quantity: 120, Unit: "quintal", SellerVerified: true,
	},
	{
		SellerID: "seller-tadesse", Title: "Portland Cement 50kg Bags", Description: "OPC 42.5 grade cement, factory sealed",
		Category: "CONSTRUCTION_MATERIALS", Price: 850, Currency: "ETB", Quantity: 2000, Unit: "bag", SellerVerified: false,
	},
}

var requests = []requestSeed{
	{
		BuyerID: "buyer-mekdes", Title: "Teff grain for flour mill", Description: "Looking for white teff grain, regular monthly supply",
		Category: "AGRICULTURAL_PRODUCTS", MaxBudget: 10000, Quantity: 300, Unit: "quintal", Location: "Addis Ababa", Urgency: "URGENT",
	},
	{
		BuyerID: "buyer-dawit", Title: "Arabica coffee beans for export", Description: "Grade 1 washed arabica coffee beans needed",
		Category: "AGRICULTURAL_PRODUCTS", MaxBudget: 35000, Quantity: 100, Unit: "quintal", Location: "Dire Dawa", Urgency: "NORMAL",
	},
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8090", "Base URL of the service")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout*time.Duration(len(listings)+len(requests)))
	defer cancel()

	client := &http.Client{Timeout: *timeout}

	for _, l := range listings {
		if err := post(ctx, client, *baseURL+"/listings", l); err != nil {
			os.Stderr.WriteString("seeding listing failed: " + err.Error() + "\n")
			return
		}
	}
	// Requests go last so each creation immediately matches against the
	// seeded catalog.
	for _, r := range requests {
		if err := post(ctx, client, *baseURL+"/requests", r); err != nil {
			os.Stderr.WriteString("seeding request failed: " + err.Error() + "\n")
			return
		}
	}

	fmt.Printf("seeded %d listings and %d buy requests\n", len(listings), len(requests))
}

func post(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return nil
}
