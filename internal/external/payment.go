package external

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"stagepass/internal/models"
)

// LedgerClient talks to the payment ledger. Every money movement in the
// system goes through it; a refused or timed-out call is treated as a
// declined operation and never retried here.
type LedgerClient struct {
	baseURL    string
	accountKey string
	secret     string
	httpClient *http.Client
}

type LedgerConfig struct {
	BaseURL    string
	AccountKey string
	Secret     string
	Timeout    time.Duration
}

type paymentRequest struct {
	AccountKey   string  `json:"accountKey"`
	Token        string  `json:"token"`
	PayerAccount string  `json:"payerAccount"`
	PayeeAccount string  `json:"payeeAccount"`
	Amount       float64 `json:"amount"`
}

type paymentResponse struct {
	Success bool `json:"success"`
}

type transactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

func NewLedgerClient(cfg LedgerConfig) *LedgerClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &LedgerClient{
		baseURL:    cfg.BaseURL,
		accountKey: cfg.AccountKey,
		secret:     cfg.Secret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs a request: parameter values sorted by key,
// concatenated with the account key and secret, SHA-256 hashed.
func (lc *LedgerClient) generateToken(params map[string]string) string {
	params["AccountKey"] = lc.accountKey
	params["Secret"] = lc.secret

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

func (lc *LedgerClient) post(path, payer, payee string, amount float64) (bool, error) {
	token := lc.generateToken(map[string]string{
		"Amount":       strconv.FormatFloat(amount, 'f', 2, 64),
		"PayerAccount": payer,
		"PayeeAccount": payee,
	})

	req := paymentRequest{
		AccountKey:   lc.accountKey,
		Token:        token,
		PayerAccount: payer,
		PayeeAccount: payee,
		Amount:       amount,
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := lc.httpClient.Post(lc.baseURL+path, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return false, fmt.Errorf("ledger call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Success, nil
}

// ProcessPayment moves amount from payer to payee. False means the ledger
// refused the payment; the refusal is atomic on the ledger side.
func (lc *LedgerClient) ProcessPayment(payer, payee string, amount float64) (bool, error) {
	return lc.post("/api/v1/payments", payer, payee, amount)
}

// ProcessRefund moves amount back from payer to payee.
func (lc *LedgerClient) ProcessRefund(payer, payee string, amount float64) (bool, error) {
	return lc.post("/api/v1/refunds", payer, payee, amount)
}

// FindTransactionsByPayer returns the ledger's transactions originating from
// the given account.
func (lc *LedgerClient) FindTransactionsByPayer(account string) ([]models.Transaction, error) {
	resp, err := lc.httpClient.Get(lc.baseURL + "/api/v1/transactions?payer=" + url.QueryEscape(account))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Transactions, nil
}
