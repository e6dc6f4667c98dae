package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Headers     http.Header `json:"headers"`
	QueryParams url.Values  `json:"query_params"`
	Body        []byte      `json:"body"`
	SourceIP    string      `json:"source_ip"`
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}

// RequestFromEvent converts an API Gateway proxy event, merging single and
// multi value headers and query parameters and decoding base64 bodies
func RequestFromEvent(event events.APIGatewayProxyRequest) (*Request, error) {
	req := &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     http.Header{},
		QueryParams: url.Values{},
		SourceIP:    event.RequestContext.Identity.SourceIP,
	}
	if req.Path == "" {
		req.Path = "/"
	}

	for name, values := range event.MultiValueHeaders {
		for _, v := range values {
			req.Headers.Add(name, v)
		}
	}
	for name, v := range event.Headers {
		if req.Headers.Get(name) == "" {
			req.Headers.Set(name, v)
		}
	}

	for name, values := range event.MultiValueQueryStringParameters {
		req.QueryParams[name] = append(req.QueryParams[name], values...)
	}
	for name, v := range event.QueryStringParameters {
		if _, ok := req.QueryParams[name]; !ok {
			req.QueryParams.Set(name, v)
		}
	}

	if event.IsBase64Encoded {
		body, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		req.Body = body
	} else {
		req.Body = []byte(event.Body)
	}

	return req, nil
}

// HTTPRequest builds a net/http request carrying ctx
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	target := r.Path
	if len(r.QueryParams) > 0 {
		target += "?" + r.QueryParams.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, target, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header = r.Headers.Clone()
	if host := r.Headers.Get("Host"); host != "" {
		httpReq.Host = host
	}
	if r.SourceIP != "" {
		httpReq.RemoteAddr = r.SourceIP + ":0"
	}
	httpReq.RequestURI = target

	return httpReq, nil
}

// Event converts the response into an API Gateway proxy response.
// Bodies that are not valid UTF-8 are base64 encoded.
func (r *Response) Event() events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode:        r.StatusCode,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
	}

	for name, values := range r.Headers {
		if len(values) == 0 {
			continue
		}
		resp.Headers[name] = strings.Join(values, ", ")
		resp.MultiValueHeaders[name] = values
	}

	if utf8.Valid(r.Body) {
		resp.Body = string(r.Body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(r.Body)
		resp.IsBase64Encoded = true
	}

	return resp
}
