package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const SandboxBaseURL = "https://app.sandbox.midtrans.com"

var enabledPayments = []string{
	"credit_card", "bca_va", "bni_va", "bri_va", "echannel", "permata_va",
	"other_va", "gopay", "shopeepay", "qris", "indomaret", "alfamart",
}

// SnapClient creates Snap transactions over the Midtrans REST API.
type SnapClient struct {
	baseURL   string
	serverKey string
	http      *http.Client
}

func NewSnapClient(baseURL, serverKey string, httpClient *http.Client) *SnapClient {
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SnapClient{baseURL: strings.TrimRight(baseURL, "/"), serverKey: serverKey, http: httpClient}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapCustomer struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type snapItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

type snapExpiry struct {
	StartTime string `json:"start_time"`
	Unit      string `json:"unit"`
	Duration  int64  `json:"duration"`
}

type snapCreditCard struct {
	Secure bool `json:"secure"`
}

type snapRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	CreditCard         snapCreditCard         `json:"credit_card"`
	CustomerDetails    snapCustomer           `json:"customer_details"`
	ItemDetails        []snapItem             `json:"item_details"`
	EnabledPayments    []string               `json:"enabled_payments,omitempty"`
	Expiry             *snapExpiry            `json:"expiry,omitempty"`
}

type snapError struct {
	ErrorMessages []string `json:"error_messages"`
}

func buildSnapRequest(req TransactionRequest) snapRequest {
	body := snapRequest{
		TransactionDetails: snapTransactionDetails{OrderID: req.Reference, GrossAmount: req.GrossAmount},
		CreditCard:         snapCreditCard{Secure: true},
		CustomerDetails:    snapCustomer{FirstName: req.Customer.FirstName, Email: req.Customer.Email},
		EnabledPayments:    enabledPayments,
	}
	for _, it := range req.Items {
		body.ItemDetails = append(body.ItemDetails, snapItem{
			ID: it.ID, Price: it.Price, Quantity: it.Quantity, Name: it.Name, Category: it.Category,
		})
	}
	if req.Expiry > 0 {
		start := req.StartTime
		if start.IsZero() {
			start = time.Now()
		}
		body.Expiry = &snapExpiry{
			StartTime: start.Format("2006-01-02 15:04:05 -0700"),
			Unit:      "minutes",
			Duration:  int64(req.Expiry / time.Minute),
		}
	}
	return body
}

func (c *SnapClient) CreateTransaction(ctx context.Context, req TransactionRequest) (Transaction, error) {
	payload, err := json.Marshal(buildSnapRequest(req))
	if err != nil {
		return Transaction{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap/v1/transactions", bytes.NewReader(payload))
	if err != nil {
		return Transaction{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.serverKey, "")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Transaction{}, fmt.Errorf("snap request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Transaction{}, fmt.Errorf("snap response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var se snapError
		if json.Unmarshal(body, &se) == nil && len(se.ErrorMessages) > 0 {
			return Transaction{}, fmt.Errorf("snap status %d: %s", resp.StatusCode, strings.Join(se.ErrorMessages, "; "))
		}
		return Transaction{}, fmt.Errorf("snap status %d", resp.StatusCode)
	}

	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return Transaction{}, fmt.Errorf("decode snap response: %w", err)
	}
	if tx.Token == "" {
		return Transaction{}, fmt.Errorf("snap response missing token")
	}
	return tx, nil
}
