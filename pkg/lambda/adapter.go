package lambda

import (
	"bytes"
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Adapter serves API Gateway proxy events through an http.Handler
type Adapter struct {
	handler http.Handler
}

// NewAdapter creates an adapter for handler
func NewAdapter(handler http.Handler) *Adapter {
	return &Adapter{handler: handler}
}

// Proxy runs one event through the handler
func (a *Adapter) Proxy(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := RequestFromEvent(event)
	if err != nil {
		return errorEvent(http.StatusBadRequest, "Invalid request body"), nil
	}

	resp, err := a.Serve(ctx, req)
	if err != nil {
		return errorEvent(http.StatusInternalServerError, "Internal server error"), nil
	}

	return resp.Event(), nil
}

// Serve runs a generic request through the handler
func (a *Adapter) Serve(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	w := newResponseWriter()
	a.handler.ServeHTTP(w, httpReq)

	return &Response{
		StatusCode: w.status,
		Headers:    w.header,
		Body:       w.body.Bytes(),
	}, nil
}

func errorEvent(status int, title string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"error":"` + title + `","message":"` + http.StatusText(status) + `"}`,
	}
}

// responseWriter buffers a response in memory
type responseWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newResponseWriter() *responseWriter {
	return &responseWriter{
		header: http.Header{},
		status: http.StatusOK,
	}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
}
