package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ledger/internal/app"
	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/internal/repository/memory"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

func (r apiResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

type testServer struct {
	server *httptest.Server
	store  *repository.Store
	token  string
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			Secret:      "test-secret",
			Issuer:      "clinic-ledger-test",
			TokenExpiry: time.Hour,
			BcryptCost:  4,
		},
		Clinic: config.ClinicConfig{
			Name:        "Smile Dental",
			PhoneRegion: "IN",
		},
		Export: config.ExportConfig{Format: "xlsx"},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	svcs := app.NewServices(cfg, store, m)

	_, err := svcs.Auth.CreateUser(context.Background(), "reception", "front-desk-pass")
	require.NoError(t, err)

	r, err := app.NewRouter(cfg, store, svcs, m, reg)
	require.NoError(t, err)

	ts := &testServer{server: httptest.NewServer(r.Engine()), store: store}
	t.Cleanup(ts.server.Close)

	resp, status := ts.do(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "reception",
		"password": "front-desk-pass",
	})
	require.Equal(t, http.StatusOK, status, resp.Message)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	resp.decode(t, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	ts.token = tokens.AccessToken
	return ts
}

func (ts *testServer) raw(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.server.URL+"/api/v1"+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (apiResponse, int) {
	t.Helper()
	resp := ts.raw(t, method, path, body)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out, resp.StatusCode
}

func (ts *testServer) register(t *testing.T, name, mobile, date string) int64 {
	t.Helper()
	resp, status := ts.do(t, http.MethodPost, "/patients", map[string]string{
		"appointment_date": date,
		"name":             name,
		"patient_type":     "New",
		"mobile":           mobile,
		"city":             "Pune",
		"problem":          "Toothache",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var p struct {
		ID int64 `json:"id"`
	}
	resp.decode(t, &p)
	return p.ID
}

func (ts *testServer) pay(t *testing.T, patientID int64, amount, mode string) int64 {
	t.Helper()
	resp, status := ts.do(t, http.MethodPost, fmt.Sprintf("/patients/%d/payments", patientID), map[string]string{
		"payment_date": "2024-03-02",
		"amount":       amount,
		"mode":         mode,
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var p struct {
		ID int64 `json:"id"`
	}
	resp.decode(t, &p)
	return p.ID
}

func (ts *testServer) balance(t *testing.T, patientID int64) string {
	t.Helper()
	resp, status := ts.do(t, http.MethodGet, fmt.Sprintf("/patients/%d", patientID), nil)
	require.Equal(t, http.StatusOK, status, resp.Message)
	var snap struct {
		Totals struct {
			Balance string `json:"balance"`
		} `json:"totals"`
	}
	resp.decode(t, &snap)
	return snap.Totals.Balance
}

func TestLedgerFlow(t *testing.T) {
	ts := newTestServer(t)

	id := ts.register(t, "Asha Patil", "9999999999", "2024-03-01")

	resp, status := ts.do(t, http.MethodPut, fmt.Sprintf("/patients/%d/treatment", id), map[string]string{
		"plan":         "Root canal",
		"final_amount": "5000",
		"consultant":   "Dr. Rao",
	})
	require.Equal(t, http.StatusOK, status, resp.Message)

	cash := ts.pay(t, id, "2000", "Cash")
	ts.pay(t, id, "1000", "UPI")
	assert.Equal(t, "2000", ts.balance(t, id))

	ts.pay(t, id, "2000", "Card")
	assert.Equal(t, "0", ts.balance(t, id))

	resp, status = ts.do(t, http.MethodDelete, fmt.Sprintf("/payments/%d", cash), nil)
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Equal(t, "2000", ts.balance(t, id))

	// deleting again is a no-op
	resp, status = ts.do(t, http.MethodDelete, fmt.Sprintf("/payments/%d", cash), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":false}`, string(resp.Data))

	resp, status = ts.do(t, http.MethodGet, fmt.Sprintf("/patients/%d/payments", id), nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Payments []struct {
			Mode string `json:"mode"`
		} `json:"payments"`
		TotalPaid string `json:"total_paid"`
	}
	resp.decode(t, &list)
	require.Len(t, list.Payments, 2)
	assert.Equal(t, "UPI", list.Payments[0].Mode)
	assert.Equal(t, "Card", list.Payments[1].Mode)
	assert.Equal(t, "3000", list.TotalPaid)

	events, err := ts.store.Outbox.GetPendingEvents(context.Background(), 100, 3)
	require.NoError(t, err)
	// register, treatment, three payments, one delete
	assert.Len(t, events, 6)
}

func TestDuplicateMobileConflict(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "Asha Patil", "9999999999", "2024-03-01")

	resp, status := ts.do(t, http.MethodPost, "/patients", map[string]string{
		"appointment_date": "2024-03-05",
		"name":             "Someone Else",
		"patient_type":     "Old",
		"mobile":           "+91 99999 99999",
		"city":             "Mumbai",
		"problem":          "Cleaning",
	})
	require.Equal(t, http.StatusConflict, status)

	var details struct {
		ExistingID   int64  `json:"existing_id"`
		ExistingName string `json:"existing_name"`
	}
	require.NoError(t, json.Unmarshal(resp.Details, &details))
	assert.Equal(t, id, details.ExistingID)
	assert.Equal(t, "Asha Patil", details.ExistingName)

	resp, status = ts.do(t, http.MethodGet, "/patients", nil)
	require.Equal(t, http.StatusOK, status)
	var patients []json.RawMessage
	resp.decode(t, &patients)
	assert.Len(t, patients, 1)
}

func TestSearchByMobile(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "Asha Patil", "9999999999", "2024-03-01")

	resp, status := ts.do(t, http.MethodGet, "/patients/search?mobile=9999999999", nil)
	require.Equal(t, http.StatusOK, status)
	var p struct {
		ID int64 `json:"id"`
	}
	resp.decode(t, &p)
	assert.Equal(t, id, p.ID)

	_, status = ts.do(t, http.MethodGet, "/patients/search?mobile=8888888888", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, status = ts.do(t, http.MethodGet, "/patients/search", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		path  string
		body  interface{}
		field string
	}{
		{
			name: "missing name",
			path: "/patients",
			body: map[string]string{
				"appointment_date": "2024-03-01",
				"patient_type":     "New",
				"mobile":           "9999999999",
				"city":             "Pune",
				"problem":          "Toothache",
			},
			field: "name",
		},
		{
			name: "bad patient type",
			path: "/patients",
			body: map[string]string{
				"appointment_date": "2024-03-01",
				"name":             "Asha",
				"patient_type":     "Returning",
				"mobile":           "9999999999",
				"city":             "Pune",
				"problem":          "Toothache",
			},
			field: "patient_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, status := ts.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, string(resp.Details), tt.field)
		})
	}

	id := ts.register(t, "Asha Patil", "9999999999", "2024-03-01")

	_, status := ts.do(t, http.MethodPost, fmt.Sprintf("/patients/%d/payments", id), map[string]string{
		"payment_date": "2024-03-02",
		"amount":       "100",
		"mode":         "Cheque",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = ts.do(t, http.MethodPost, fmt.Sprintf("/patients/%d/payments", id), map[string]string{
		"payment_date": "2024-03-02",
		"amount":       "abc",
		"mode":         "Cash",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = ts.do(t, http.MethodPut, fmt.Sprintf("/patients/%d/treatment", id), map[string]string{
		"final_amount": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = ts.do(t, http.MethodPut, "/patients/999/treatment", map[string]string{
		"final_amount": "100",
	})
	assert.Equal(t, http.StatusNotFound, status)

	for _, amount := range []string{"0.004", "1000000000000"} {
		resp, status := ts.do(t, http.MethodPost, fmt.Sprintf("/patients/%d/payments", id), map[string]string{
			"payment_date": "2024-03-02",
			"amount":       amount,
			"mode":         "Cash",
		})
		assert.Equal(t, http.StatusBadRequest, status, amount)
		assert.Contains(t, string(resp.Details), "amount", amount)

		_, status = ts.do(t, http.MethodPut, fmt.Sprintf("/patients/%d/treatment", id), map[string]string{
			"final_amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, status, amount)
	}
	assert.Equal(t, "0", ts.balance(t, id))
}

func TestNotesLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "Asha Patil", "9999999999", "2024-03-01")

	resp, status := ts.do(t, http.MethodPost, fmt.Sprintf("/patients/%d/notes", id), map[string]string{
		"note_date": "2024-03-01",
		"body":      "Sensitivity on lower left molar",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var n struct {
		ID int64 `json:"id"`
	}
	resp.decode(t, &n)

	_, status = ts.do(t, http.MethodPut, fmt.Sprintf("/notes/%d", n.ID), map[string]string{
		"note_date": "2024-03-02",
		"body":      "Filling scheduled",
	})
	require.Equal(t, http.StatusOK, status)

	resp, status = ts.do(t, http.MethodGet, fmt.Sprintf("/patients/%d/notes", id), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), "Filling scheduled")

	_, status = ts.do(t, http.MethodDelete, fmt.Sprintf("/notes/%d", n.ID), nil)
	require.Equal(t, http.StatusOK, status)

	_, status = ts.do(t, http.MethodDelete, fmt.Sprintf("/notes/%d", n.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDocuments(t *testing.T) {
	ts := newTestServer(t)
	older := ts.register(t, "Older Patient", "9999999999", "2024-01-10")
	ts.register(t, "Newer Patient", "8888888888", "2024-02-10")

	_, status := ts.do(t, http.MethodPut, fmt.Sprintf("/patients/%d/treatment", older), map[string]string{
		"final_amount": "5000",
	})
	require.Equal(t, http.StatusOK, status)
	ts.pay(t, older, "1500.50", "UPI")

	resp := ts.raw(t, http.MethodGet, fmt.Sprintf("/patients/%d/invoice", older), nil)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = ts.raw(t, http.MethodGet, "/patients/999/invoice", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.raw(t, http.MethodGet, "/exports/patients?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "patients_financial_report_")
	records, err := csv.NewReader(resp.Body).ReadAll()
	resp.Body.Close()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Newer Patient", records[1][1])
	assert.Equal(t, "Older Patient", records[2][1])
	assert.Equal(t, "3499.50", records[2][6])

	resp = ts.raw(t, http.MethodGet, "/exports/patients?format=pdf", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	token := ts.token
	ts.token = ""
	_, status := ts.do(t, http.MethodGet, "/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	ts.token = token + "x"
	_, status = ts.do(t, http.MethodGet, "/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	ts.token = ""
	resp, status := ts.do(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "reception",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error", resp.Status)

	_, status = ts.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, status)

	metricsResp := ts.raw(t, http.MethodGet, "/health/metrics", nil)
	body, err := io.ReadAll(metricsResp.Body)
	metricsResp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "test_http_requests_total"))
}
