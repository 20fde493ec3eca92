package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// LedgerClient posts funds-transfer requests to the external token
// ledger. The ledger exposes a single JSON endpoint and responds with
// 2xx on success.
type LedgerClient struct {
	url        string
	httpClient *http.Client
}

// NewLedgerClient creates a new ledger client
func NewLedgerClient(url string) *LedgerClient {
	return &LedgerClient{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type fundsTransferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Memo   string `json:"memo"`
}

// Transfer sends funds to an account
func (c *LedgerClient) Transfer(ctx context.Context, toAccountID string, amount int64, memo string) error {
	if c.url == "" {
		return fmt.Errorf("ledger URL not configured")
	}

	req := fundsTransferRequest{
		To:     toAccountID,
		Amount: amount,
		Memo:   memo,
	}

	if err := postJSON(ctx, c.httpClient, c.url, req); err != nil {
		return fmt.Errorf("funds transfer to %s failed: %w", toAccountID, err)
	}

	log.WithFields(log.Fields{
		"to":     toAccountID,
		"amount": amount,
	}).Debug("Funds transfer issued")

	return nil
}

// CustodyClient posts item-transfer requests to the external custody
// service that holds auctioned items.
type CustodyClient struct {
	url        string
	httpClient *http.Client
}

// NewCustodyClient creates a new custody client
func NewCustodyClient(url string) *CustodyClient {
	return &CustodyClient{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type itemTransferRequest struct {
	To      string  `json:"to"`
	ItemIDs []int64 `json:"item_ids"`
	Memo    string  `json:"memo"`
}

// Transfer releases items to an account
func (c *CustodyClient) Transfer(ctx context.Context, toAccountID string, itemIDs []int64, memo string) error {
	if c.url == "" {
		return fmt.Errorf("custody URL not configured")
	}

	req := itemTransferRequest{
		To:      toAccountID,
		ItemIDs: itemIDs,
		Memo:    memo,
	}

	if err := postJSON(ctx, c.httpClient, c.url, req); err != nil {
		return fmt.Errorf("item transfer to %s failed: %w", toAccountID, err)
	}

	log.WithFields(log.Fields{
		"to":    toAccountID,
		"items": itemIDs,
	}).Debug("Item transfer issued")

	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, excerpt)
	}

	return nil
}
