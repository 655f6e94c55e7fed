package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"resort/internal/config"
	"resort/internal/domain"
)

const momoRequestType = "captureWallet"

// MoMo talks to the MoMo wallet v2 API. Amounts are whole VND.
type MoMo struct {
	cfg    config.MoMoConfig
	client *http.Client
	newID  func() string
}

func NewMoMo(cfg config.MoMoConfig, client *http.Client) *MoMo {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MoMo{cfg: cfg, client: client, newID: uuid.NewString}
}

func (m *MoMo) Name() string { return domain.MethodMoMo }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	Deeplink   string `json:"deeplink"`
	QRCodeURL  string `json:"qrCodeUrl"`
}

// momoIPN is the instant payment notification MoMo posts to ipnUrl.
type momoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	AccessKey    string `json:"accessKey"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderID      string `json:"orderId"`
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

func (m *MoMo) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	amount := req.Amount.Round(0).IntPart()
	if amount <= 0 {
		return nil, fmt.Errorf("%w: momo amount must be positive", ErrValidation)
	}
	body := momoCreateRequest{
		PartnerCode: m.cfg.PartnerCode,
		AccessKey:   m.cfg.AccessKey,
		RequestID:   m.newID(),
		Amount:      amount,
		OrderID:     req.OrderID,
		OrderInfo:   req.Description,
		RedirectURL: m.cfg.RedirectURL,
		IPNURL:      m.cfg.IPNURL,
		RequestType: momoRequestType,
		Lang:        "vi",
	}
	body.Signature = m.sign(body.createRaw())

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: momo request: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	var out momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: momo response (HTTP %d): %v", ErrGateway, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || out.ResultCode != 0 || out.PayURL == "" {
		return nil, fmt.Errorf("%w: momo result %d: %s", ErrGateway, out.ResultCode, out.Message)
	}
	return &Checkout{RequestID: body.RequestID, PayURL: out.PayURL}, nil
}

func (m *MoMo) ParseCallback(body []byte, _ http.Header) (*CallbackResult, error) {
	var ipn momoIPN
	if err := json.Unmarshal(body, &ipn); err != nil {
		return nil, fmt.Errorf("%w: malformed momo notification", ErrValidation)
	}
	ipn.AccessKey = m.cfg.AccessKey
	if !hmac.Equal([]byte(m.sign(ipn.raw())), []byte(ipn.Signature)) {
		return nil, ErrInvalidSignature
	}
	return &CallbackResult{
		OrderID:       ipn.OrderID,
		Amount:        decimal.NewFromInt(ipn.Amount),
		TransactionID: strconv.FormatInt(ipn.TransID, 10),
		Success:       ipn.ResultCode == 0,
		Message:       ipn.Message,
	}, nil
}

// sign is HMAC-SHA256 over raw keyed by the partner secret, lowercase hex.
func (m *MoMo) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func (r momoCreateRequest) createRaw() string {
	return fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		r.AccessKey, r.Amount, r.ExtraData, r.IPNURL, r.OrderID, r.OrderInfo, r.PartnerCode, r.RedirectURL, r.RequestID, r.RequestType)
}

func (n momoIPN) raw() string {
	return fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		n.AccessKey, n.Amount, n.ExtraData, n.Message, n.OrderID, n.OrderInfo, n.OrderType, n.PartnerCode, n.PayType, n.RequestID, n.ResponseTime, n.ResultCode, n.TransID)
}
