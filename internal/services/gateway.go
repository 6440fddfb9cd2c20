package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/giglink/backend/internal/config"
)

// GatewayInitRequest is the payload for initializing a hosted transaction.
// Amount is in the gateway's smallest currency unit.
type GatewayInitRequest struct {
	Email       string
	Amount      int64
	Reference   string
	CallbackURL string
	Currency    string
	Metadata    map[string]interface{}
}

// GatewayInitResult is the gateway's acceptance of an initialize call.
type GatewayInitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// GatewayVerifyResult is the gateway's authoritative record of a transaction.
type GatewayVerifyResult struct {
	Status          string // gateway-side status, e.g. "success", "failed", "abandoned"
	Amount          int64  // smallest currency unit
	PaidAt          *time.Time
	Channel         string
	Fees            int64 // smallest currency unit
	GatewayResponse string
}

// Succeeded reports whether the gateway settled the transaction.
func (r *GatewayVerifyResult) Succeeded() bool {
	return r.Status == "success"
}

// PaymentGateway abstracts the hosted payment collaborator so the
// reconciliation flow can be exercised with a stub in tests.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *GatewayInitRequest) (*GatewayInitResult, error)
	Verify(ctx context.Context, reference string) (*GatewayVerifyResult, error)
}

// PaystackClient talks to the Paystack REST API.
type PaystackClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystackClient(cfg *config.PaystackConfig) *PaystackClient {
	return &PaystackClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
	PaidAt          string `json:"paid_at"`
	Channel         string `json:"channel"`
	Fees            int64  `json:"fees"`
}

// Initialize creates a hosted transaction and returns the authorization URL.
func (p *PaystackClient) Initialize(ctx context.Context, req *GatewayInitRequest) (*GatewayInitResult, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.Amount,
		"reference": req.Reference,
		"currency":  req.Currency,
		"metadata":  req.Metadata,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}

	env, err := p.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("gateway rejected initialize: %s", env.Message)
	}

	var data paystackInitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}

	return &GatewayInitResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify fetches the gateway's record for a reference.
func (p *PaystackClient) Verify(ctx context.Context, reference string) (*GatewayVerifyResult, error) {
	env, err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("gateway rejected verify: %s", env.Message)
	}

	var data paystackVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	result := &GatewayVerifyResult{
		Status:          data.Status,
		Amount:          data.Amount,
		Channel:         data.Channel,
		Fees:            data.Fees,
		GatewayResponse: data.GatewayResponse,
	}
	if data.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			result.PaidAt = &t
		}
	}
	return result, nil
}

func (p *PaystackClient) do(ctx context.Context, method, path string, body interface{}) (*paystackEnvelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("gateway returned non-JSON response (status %d)", resp.StatusCode)
	}
	return &env, nil
}
