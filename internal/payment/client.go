package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"bookmart/internal/config"
	"bookmart/internal/model"

	"github.com/rs/zerolog"
)

const requestType = "payWithMethod"

// Gateway is the outbound payment contract. It exists as an interface so the
// payment flow can be tested without a live gateway.
type Gateway interface {
	// CreatePayment sends a signed payment-intent request for the order and
	// returns the gateway's payable URLs.
	CreatePayment(ctx context.Context, orderID string, amount int64, extraData string) (*CreateResult, error)

	// VerifyIPN checks the gateway's signature on an inbound notification.
	VerifyIPN(n *IPNRequest) bool
}

// CreateResult carries the payable URLs returned by the gateway.
type CreateResult struct {
	PayURL    string `json:"payUrl"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// gatewayResponse is the gateway's raw create-payment response.
type gatewayResponse struct {
	PayURL     string `json:"payUrl"`
	QRCodeURL  string `json:"qrCodeUrl"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

// IPNRequest is the gateway's asynchronous payment notification.
type IPNRequest struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// Client is the HTTP client for the external payment gateway. It carries its
// own timeout so a hung gateway cannot hang a checkout that already committed
// its order.
type Client struct {
	cfg        config.PaymentConfig
	signer     *Signer
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a gateway client from validated configuration. Missing
// credentials are a deployment defect, reported as a configuration error and
// never retried.
func NewClient(cfg config.PaymentConfig, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("payment gateway configuration is incomplete")
		return nil, model.ErrConfiguration.WithDetails(err.Error())
	}

	return &Client{
		cfg:    cfg,
		signer: NewSigner(cfg.SecretKey),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}, nil
}

// buildParams assembles the flat signature parameter set for one payment
// intent. The order id doubles as the gateway's request/idempotency id.
func (c *Client) buildParams(orderID string, amount int64, extraData string) map[string]string {
	ref := orderID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	orderInfo := fmt.Sprintf("Thanh toan don hang %s", ref)

	return map[string]string{
		"accessKey":   c.cfg.AccessKey,
		"amount":      strconv.FormatInt(amount, 10),
		"orderId":     orderID,
		"orderInfo":   orderInfo,
		"partnerCode": c.cfg.PartnerCode,
		"redirectUrl": c.cfg.RedirectURL + orderID,
		"ipnUrl":      c.cfg.IPNURL,
		"requestId":   orderID,
		"requestType": requestType,
		"extraData":   extraData,
	}
}

// CreatePayment signs and sends one payment-intent request, returning the
// payable URLs from the gateway.
func (c *Client) CreatePayment(ctx context.Context, orderID string, amount int64, extraData string) (*CreateResult, error) {
	params := c.buildParams(orderID, amount, extraData)
	signature := c.signer.Sign(params)

	body := make(map[string]string, len(params)+2)
	for k, v := range params {
		body[k] = v
	}
	body["lang"] = "vi"
	body["signature"] = signature

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("payment gateway unreachable")
		return nil, model.ErrGatewayUnreachable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to read gateway response")
		return nil, model.ErrGatewayUnreachable
	}

	var gw gatewayResponse
	if err := json.Unmarshal(raw, &gw); err != nil || gw.PayURL == "" {
		c.logger.Error().
			Str("order_id", orderID).
			Int("status", resp.StatusCode).
			Str("payload", string(raw)).
			Msg("payment gateway rejected the request")
		return nil, model.ErrGatewayRejected.WithDetails(string(raw))
	}

	c.logger.Info().
		Str("order_id", orderID).
		Int64("amount", amount).
		Msg("payment intent created")

	return &CreateResult{PayURL: gw.PayURL, QRCodeURL: gw.QRCodeURL}, nil
}

// VerifyIPN recomputes the signature over the notification's canonicalized
// parameters, with the shared access key substituted in.
func (c *Client) VerifyIPN(n *IPNRequest) bool {
	params := map[string]string{
		"accessKey":    c.cfg.AccessKey,
		"amount":       strconv.FormatInt(n.Amount, 10),
		"extraData":    n.ExtraData,
		"message":      n.Message,
		"orderId":      n.OrderID,
		"orderInfo":    n.OrderInfo,
		"orderType":    n.OrderType,
		"partnerCode":  n.PartnerCode,
		"payType":      n.PayType,
		"requestId":    n.RequestID,
		"responseTime": strconv.FormatInt(n.ResponseTime, 10),
		"resultCode":   strconv.Itoa(n.ResultCode),
		"transId":      strconv.FormatInt(n.TransID, 10),
	}
	return c.signer.Verify(params, n.Signature)
}
