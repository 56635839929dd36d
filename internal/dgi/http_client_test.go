package dgi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			Multiplier:      2.0,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func signedBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(SignResponse{
		Ncc:       "2505842N",
		Reference: "DGI-REF-AB12CD34",
		Token:     "https://fne.dgi.gouv.ci/verify/x",
		Invoice: &SignedInvoice{
			ID:        "e359054f-4a9c-4c6f-8f2e-9c1d8a56263b",
			Reference: "DGI-REF-AB12CD34",
			Items: []SignedItem{
				{ID: "d0e59056-dbeb-43e8-8086-5ae173cc8e62", Description: "x", Quantity: decimal.NewFromInt(2)},
			},
		},
	})
	require.NoError(t, err)
	return b
}

func sampleRequest() *SignRequest {
	return &SignRequest{
		InvoiceType:       "sale",
		PaymentMethod:     "cash",
		Template:          "B2C",
		ClientCompanyName: "Client Demo",
		Establishment:     "Etablissement 1",
		PointOfSale:       "Point de Vente 1",
		Items: []SignItem{
			{Taxes: []string{"TVA"}, Description: "x", Quantity: decimal.NewFromInt(2), Amount: decimal.NewFromInt(10000)},
		},
	}
}

func TestSignInvoiceSendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotReq SignRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write(signedBody(t))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	resp, err := c.SignInvoice(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sale", gotReq.InvoiceType)
	assert.Equal(t, "e359054f-4a9c-4c6f-8f2e-9c1d8a56263b", resp.Invoice.ID)
	assert.Equal(t, "d0e59056-dbeb-43e8-8086-5ae173cc8e62", resp.Invoice.Items[0].ID)
}

func TestRetryBudgetRecoversFrom503(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write(signedBody(t))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	resp, err := c.SignInvoice(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // initial + 2 retries
	assert.NotEmpty(t, resp.Reference)
}

func TestRetryBudgetExhaustedSurfacesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	_, err := c.SignInvoice(context.Background(), sampleRequest())
	require.Error(t, err)

	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusServiceUnavailable, serr.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"message":"bad ncc"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	_, err := c.SignInvoice(context.Background(), sampleRequest())

	var cerr *ClientError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, http.StatusUnprocessableEntity, cerr.Status)
	assert.Contains(t, cerr.Body, "bad ncc")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMissingInvoiceObjectIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ncc":"2505842N","reference":"DGI-REF-X","token":"t"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	_, err := c.SignInvoice(context.Background(), sampleRequest())

	var ierr *InvalidResponseError
	require.ErrorAs(t, err, &ierr)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewHTTPClient(testConfig(srv.URL), nil)
	_, err := c.SignInvoice(context.Background(), sampleRequest())

	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
}

func TestBackoffSchedule(t *testing.T) {
	r := RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 2 * time.Second,
		Multiplier:      2.0,
		MaxInterval:     10 * time.Second,
	}
	assert.Equal(t, 2*time.Second, r.Backoff(1))
	assert.Equal(t, 4*time.Second, r.Backoff(2))
	assert.Equal(t, 8*time.Second, r.Backoff(3))
	assert.Equal(t, 10*time.Second, r.Backoff(4)) // capped
}

func TestCreateRefundTargetsInvoicePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ncc":"2505842N","reference":"AVR-DGI-REF-1","token":"t"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), nil)
	resp, err := c.CreateRefund(context.Background(), "e359054f-4a9c-4c6f-8f2e-9c1d8a56263b", &RefundRequest{
		Items: []RefundItem{{ID: "d0e59056-dbeb-43e8-8086-5ae173cc8e62", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/external/invoices/e359054f-4a9c-4c6f-8f2e-9c1d8a56263b/refund", gotPath)
	assert.Equal(t, "AVR-DGI-REF-1", resp.Reference)
}
