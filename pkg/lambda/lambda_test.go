package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-api/internal/config"
)

func testManager(t *testing.T) *ConnectionManager {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Environment: "test",
		Service:     config.ServiceConfig{Name: "Customer REST API Service", Version: "1.0"},
		Database: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			DSN:             filepath.Join(t.TempDir(), "lambda.db"),
			MaxOpenConns:    2,
			MaxIdleConns:    2,
			AutoMigrate:     true,
			ConnectAttempts: 1,
		},
		HTTP: config.HTTPConfig{MaxBodyBytes: 1 << 20},
	}

	cm := NewConnectionManager(cfg, logger)
	t.Cleanup(func() { cm.Cleanup() })
	return cm
}

func TestRequestFromEvent(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/customers",
		Headers:               map[string]string{"Content-Type": "application/json"},
		MultiValueHeaders:     map[string][]string{"Accept": {"application/json", "text/plain"}},
		QueryStringParameters: map[string]string{"name": "Eve"},
		MultiValueQueryStringParameters: map[string][]string{
			"blocked": {"true"},
		},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"name":"Eve"}`)),
		IsBase64Encoded: true,
	}
	event.RequestContext.Identity.SourceIP = "10.0.0.1"

	req, err := RequestFromEvent(event)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, []string{"application/json", "text/plain"}, req.Headers.Values("Accept"))
	assert.Equal(t, "Eve", req.QueryParams.Get("name"))
	assert.Equal(t, "true", req.QueryParams.Get("blocked"))
	assert.Equal(t, `{"name":"Eve"}`, string(req.Body))

	httpReq, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/customers", httpReq.URL.Path)
	assert.Equal(t, "Eve", httpReq.URL.Query().Get("name"))
	assert.Equal(t, "10.0.0.1:0", httpReq.RemoteAddr)

	_, err = RequestFromEvent(events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	assert.Error(t, err)
}

func TestResponseEvent(t *testing.T) {
	resp := &Response{
		StatusCode: http.StatusCreated,
		Headers:    http.Header{"Location": {"http://example.com/customers/1"}},
		Body:       []byte(`{"id":1}`),
	}

	event := resp.Event()
	assert.Equal(t, http.StatusCreated, event.StatusCode)
	assert.Equal(t, "http://example.com/customers/1", event.Headers["Location"])
	assert.Equal(t, `{"id":1}`, event.Body)
	assert.False(t, event.IsBase64Encoded)

	binary := (&Response{StatusCode: http.StatusOK, Body: []byte{0xff, 0xfe}}).Event()
	assert.True(t, binary.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe}), binary.Body)
}

func TestAdapter_ServesRouter(t *testing.T) {
	cm := testManager(t)
	ctx := context.Background()

	adapter, err := cm.Adapter(ctx)
	require.NoError(t, err)
	assert.True(t, cm.IsHealthy())

	created, err := adapter.Proxy(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/customers",
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Host":         "abc.execute-api.eu-west-1.amazonaws.com",
		},
		Body: `{"name":"Eve","address":"1 Main St","email":"eve@example.com","phonenumber":"555-0101"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, created.StatusCode, created.Body)
	assert.Contains(t, created.Headers["Location"], "abc.execute-api.eu-west-1.amazonaws.com/customers/")

	listed, err := adapter.Proxy(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/customers",
		QueryStringParameters: map[string]string{"name": "Eve"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listed.StatusCode)

	var customers []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(listed.Body), &customers))
	assert.Len(t, customers, 1)

	missing, err := adapter.Proxy(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/customers/9999",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestConnectionManager_Cleanup(t *testing.T) {
	cm := testManager(t)

	first, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	second, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, cm.Cleanup())
	assert.False(t, cm.IsHealthy())
}

func TestConnectionManager_AdapterAfterCleanup(t *testing.T) {
	cm := testManager(t)
	ctx := context.Background()

	before, err := cm.Adapter(ctx)
	require.NoError(t, err)
	require.NotNil(t, before)

	require.NoError(t, cm.Cleanup())

	after, err := cm.Adapter(ctx)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.True(t, cm.IsHealthy())

	resp, err := after.Proxy(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/customers",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConnectionManager_AdapterDuringCleanup(t *testing.T) {
	cm := testManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				adapter, err := cm.Adapter(ctx)
				if err == nil && adapter == nil {
					t.Error("Adapter returned nil without an error")
				}
			}
		}()
	}
	for j := 0; j < 10; j++ {
		assert.NoError(t, cm.Cleanup())
	}
	wg.Wait()
}
