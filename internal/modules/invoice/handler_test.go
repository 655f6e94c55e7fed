package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/internal/domain"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newRouter(f *fixture, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", int64(7))
		c.Set("role", role)
	})
	NewHandler(f.invoices, f.payments, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHandler_InvoiceAndPayment(t *testing.T) {
	f := newFixture(t)
	b := f.stay(t, domain.BookingCheckedOut, "2025-06-01", "2025-06-02", "1000000")
	desk := newRouter(f, "receptionist")

	code, env := do(t, desk, http.MethodPost, fmt.Sprintf("/api/v1/invoices/from-booking/%d", b.ID), nil)
	require.Equal(t, http.StatusCreated, code)
	var inv domain.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, "1100000", inv.TotalAmount.String())

	code, env = do(t, desk, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoice_id": inv.ID,
		"amount":     "1200000",
		"method":     "cash",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "PAYMENT_REJECTED", env.Error.Code)

	code, env = do(t, desk, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoice_id": inv.ID,
		"amount":     "0",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = do(t, desk, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoice_id": inv.ID,
		"amount":     "1100000",
		"method":     "bitcoin",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, desk, http.MethodPost, "/api/v1/payments", map[string]any{
		"invoice_id": inv.ID,
		"amount":     "1100000",
	})
	require.Equal(t, http.StatusCreated, code)
	var p domain.Payment
	require.NoError(t, json.Unmarshal(env.Data, &p))

	code, env = do(t, desk, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/refund", p.ID), map[string]any{
		"amount": "100000", "reason": "late checkout waived",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	accounts := newRouter(f, "accountant")
	code, _ = do(t, accounts, http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/refund", p.ID), map[string]any{
		"amount": "100000", "reason": "late checkout waived",
	})
	assert.Equal(t, http.StatusCreated, code)

	code, env = do(t, accounts, http.MethodGet, fmt.Sprintf("/api/v1/invoices/%d", inv.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var bal Balance
	require.NoError(t, json.Unmarshal(env.Data, &bal))
	assert.Equal(t, "1000000", bal.Paid.String())
	assert.Equal(t, "100000", bal.Remaining.String())
	assert.Equal(t, domain.InvoicePartial, bal.Invoice.Status)

	code, env = do(t, accounts, http.MethodGet, "/api/v1/invoices/9999", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
