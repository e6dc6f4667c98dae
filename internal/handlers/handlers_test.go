package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-api/internal/config"
	"customer-api/internal/database"
	"customer-api/internal/models"
	"customer-api/internal/repositories/sqlstore"
	"customer-api/internal/services"
)

type testServer struct {
	router *gin.Engine
	db     *database.ConnectionManager
}

type fakeHealthChecker struct {
	err error
}

func (f *fakeHealthChecker) HealthCheck(ctx context.Context) error {
	return f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestServer(t *testing.T, mutate func(*RouterConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := testLogger()
	cm := database.NewConnectionManager(config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		DSN:             filepath.Join(t.TempDir(), "handlers.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		AutoMigrate:     true,
		ConnectAttempts: 1,
	}, logger)
	require.NoError(t, cm.Connect(context.Background()))
	t.Cleanup(func() { cm.Close() })

	repo := sqlstore.NewCustomerRepository(cm.GetDB(), logger)
	cfg := &RouterConfig{
		CustomerService: services.NewCustomerService(repo, logger),
		HealthChecker:   cm,
		Service:         config.ServiceConfig{Name: "Customer REST API Service", Version: "1.0"},
		HTTP:            config.HTTPConfig{MaxBodyBytes: 1 << 20},
		Logger:          logger,
	}
	if mutate != nil {
		mutate(cfg)
	}

	return &testServer{router: NewRouter(cfg), db: cm}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) create(t *testing.T, name, email string) models.Customer {
	t.Helper()
	w := s.do(http.MethodPost, "/customers", map[string]interface{}{
		"name":        name,
		"address":     "1 Main St",
		"email":       email,
		"phonenumber": "555-0101",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	return customer
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestCreateCustomer(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/customers", map[string]interface{}{
		"name":        "Eve",
		"address":     "1 Main St",
		"email":       "eve@example.com",
		"phonenumber": "555-0101",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.NotZero(t, customer.ID)
	assert.Equal(t, "Eve", customer.Name)
	assert.Equal(t, "1 Main St", customer.Address)
	assert.Equal(t, "eve@example.com", customer.Email)
	assert.Equal(t, "555-0101", customer.PhoneNumber)
	assert.False(t, customer.Blocked)
	assert.Equal(t, fmt.Sprintf("http://example.com/customers/%d", customer.ID), w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	get := s.do(http.MethodGet, w.Header().Get("Location"), nil)
	require.Equal(t, http.StatusOK, get.Code)

	var fetched models.Customer
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
	assert.Equal(t, customer, fetched)
}

func TestCreateCustomer_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{
			name:     "missing email",
			body:     `{"name":"Eve","address":"1 Main St","phonenumber":"555-0101"}`,
			contains: "email is required",
		},
		{
			name:     "invalid email",
			body:     `{"name":"Eve","address":"1 Main St","email":"not-an-email","phonenumber":"555-0101"}`,
			contains: "email must be a valid email address",
		},
		{
			name:     "blank name",
			body:     `{"name":"   ","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"}`,
			contains: "name is required",
		},
		{
			name:     "wrong type",
			body:     `{"name":42,"address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"}`,
			contains: "name must be of type string",
		},
		{
			name:     "blocked not a boolean",
			body:     `{"name":"Eve","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101","blocked":"yes"}`,
			contains: "blocked must be of type bool",
		},
		{
			name:     "array body",
			body:     `[{"name":"Eve"}]`,
			contains: "must be a JSON object",
		},
		{
			name:     "malformed json",
			body:     `{"name":`,
			contains: "",
		},
		{
			name:     "empty body",
			body:     "",
			contains: "Request body is empty",
		},
		{
			name:     "trailing data",
			body:     `{"name":"Eve","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"} trailing`,
			contains: "single JSON object",
		},
		{
			name:     "two objects",
			body:     `{"name":"Eve","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"}{}`,
			contains: "single JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Contains(t, resp.Message, tt.contains)
		})
	}

	list := s.do(http.MethodGet, "/customers", nil)
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestCreateCustomer_IgnoresUnknownFields(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/customers", map[string]interface{}{
		"name":        "Eve",
		"address":     "1 Main St",
		"email":       "eve@example.com",
		"phonenumber": "555-0101",
		"nickname":    "evie",
		"id":          12345,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.NotEqual(t, int64(12345), customer.ID)
}

func TestCreateCustomer_UnsupportedMediaType(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"name":"Eve","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"}`

	for _, contentType := range []string{"", "text/plain", "application/x-www-form-urlencoded"} {
		t.Run("content type "+contentType, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetCustomer(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/customers/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Not found", resp.Error)
	assert.Contains(t, resp.Message, "9999")

	w = s.do(http.MethodGet, "/customers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "abc")
}

func TestUpdateCustomer(t *testing.T) {
	s := newTestServer(t, nil)
	created := s.create(t, "Eve", "eve@example.com")

	path := fmt.Sprintf("/customers/%d", created.ID)
	w := s.do(http.MethodPut, path, map[string]interface{}{
		"name":        "Eve Adams",
		"address":     "2 High St",
		"email":       "eve.adams@example.com",
		"phonenumber": "555-0202",
		"blocked":     true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Eve Adams", updated.Name)
	assert.Equal(t, "2 High St", updated.Address)
	assert.True(t, updated.Blocked)

	// a full replace without blocked resets it
	w = s.do(http.MethodPut, path, map[string]interface{}{
		"name":        "Eve Adams",
		"address":     "2 High St",
		"email":       "eve.adams@example.com",
		"phonenumber": "555-0202",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.Blocked)

	w = s.do(http.MethodPut, path, map[string]interface{}{
		"name":    "Eve Adams",
		"address": "2 High St",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPut, "/customers/9999", map[string]interface{}{
		"name":        "Ghost",
		"address":     "Nowhere",
		"email":       "ghost@example.com",
		"phonenumber": "555-0000",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decodeError(t, w).Error)
}

func TestDeleteCustomer(t *testing.T) {
	s := newTestServer(t, nil)
	created := s.create(t, "Eve", "eve@example.com")
	path := fmt.Sprintf("/customers/%d", created.ID)

	w := s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/customers/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCustomers(t *testing.T) {
	s := newTestServer(t, nil)
	albert := s.create(t, "Albert", "albert@example.com")
	s.create(t, "Albert Einstein", "einstein@example.com")
	bob := s.create(t, "Bob", "bob@example.com")

	w := s.do(http.MethodPost, fmt.Sprintf("/customers/%d/action", bob.ID), map[string]string{"action": "suspend"})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name  string
		query string
		names []string
	}{
		{name: "no filters", query: "", names: []string{"Albert", "Albert Einstein", "Bob"}},
		{name: "exact name", query: "?name=Albert", names: []string{"Albert"}},
		{name: "no substring match", query: "?name=Alb", names: []string{}},
		{name: "by email", query: "?email=bob%40example.com", names: []string{"Bob"}},
		{name: "blocked", query: "?blocked=true", names: []string{"Bob"}},
		{name: "not blocked", query: "?blocked=false", names: []string{"Albert", "Albert Einstein"}},
		{name: "by id", query: fmt.Sprintf("?id=%d", albert.ID), names: []string{"Albert"}},
		{name: "combined", query: "?name=Bob&blocked=false", names: []string{}},
		{name: "unknown parameter ignored", query: "?colour=blue", names: []string{"Albert", "Albert Einstein", "Bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/customers"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var customers []models.Customer
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customers))

			names := make([]string, 0, len(customers))
			for _, c := range customers {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestListCustomers_InvalidQuery(t *testing.T) {
	s := newTestServer(t, nil)

	for _, query := range []string{"?id=abc", "?blocked=maybe"} {
		w := s.do(http.MethodGet, "/customers"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, "Invalid query parameters", decodeError(t, w).Error)
	}
}

func TestCustomerAction(t *testing.T) {
	s := newTestServer(t, nil)
	created := s.create(t, "Eve", "eve@example.com")
	path := fmt.Sprintf("/customers/%d/action", created.ID)

	w := s.do(http.MethodPost, path, map[string]string{"action": "suspend"})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		models.Customer
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Blocked)
	assert.Equal(t, "suspended", result.Action)
	assert.Equal(t, created.ID, result.ID)

	w = s.do(http.MethodPost, path, map[string]string{"action": "Activate"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Blocked)
	assert.Equal(t, "activated", result.Action)

	w = s.do(http.MethodPost, path, map[string]string{"action": "promote"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "promote")

	w = s.do(http.MethodPost, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/customers/9999/action", map[string]string{"action": "suspend"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "customers.local:8080"
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Customer REST API Service", resp.Name)
	assert.Equal(t, "1.0", resp.Version)
	assert.Equal(t, "http://customers.local:8080/customers", resp.Paths)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "api.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://api.example.com/customers", resp.Paths)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Healthy"}`, w.Body.String())

	down := newTestServer(t, func(cfg *RouterConfig) {
		cfg.HealthChecker = &fakeHealthChecker{err: errors.New("connection refused")}
	})
	w = down.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAVAILABLE", resp.Status)
	assert.Equal(t, "connection refused", resp.Message)
}

func TestDatabaseUnavailable(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.db.Close())

	w := s.do(http.MethodGet, "/customers/1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database unavailable", decodeError(t, w).Error)

	w = s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouting_NotFoundAndMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decodeError(t, w).Error)

	w = s.do(http.MethodPatch, "/customers/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decodeError(t, w).Error)

	w = s.do(http.MethodPut, "/customers", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.HTTP.MaxBodyBytes = 64
	})

	w := s.do(http.MethodPost, "/customers", map[string]interface{}{
		"name":        strings.Repeat("E", 40),
		"address":     strings.Repeat("1 Main St ", 10),
		"email":       "eve@example.com",
		"phonenumber": "555-0101",
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestStaticForm(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/static/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Customer REST API Service")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestSwaggerDocs(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/customers/{id}/action")
}
