// Package transport issues requests to the hospital backend and folds every
// outcome into a single Result, so callers branch on one type instead of on
// per-call error handling.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"hospital-portal/internal/apperr"
)

type Outcome int

const (
	OK Outcome = iota
	RejectedByServer
	NoResponse
	RequestError
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case RejectedByServer:
		return "rejected"
	case NoResponse:
		return "no_response"
	case RequestError:
		return "request_error"
	}
	return "unknown"
}

const (
	MsgServerError    = "server error"
	MsgNotResponding  = "server not responding"
	msgRequestErrorFm = "error: %s"
)

type Result struct {
	Outcome Outcome
	Status  int
	Payload []byte
	Err     error
}

func (r Result) OK() bool { return r.Outcome == OK }

// Decode unmarshals the payload of a successful result into v.
func (r Result) Decode(v any) error {
	if r.Outcome != OK {
		return r.Error()
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return apperr.Wrap(err, apperr.KindMalformedResponse, "unexpected response from server", "")
	}
	return nil
}

// ServerMessage extracts what the server said: a message field, a bare JSON
// string, or the raw text. Empty when the payload says nothing.
func (r Result) ServerMessage() string {
	raw := bytes.TrimSpace(r.Payload)
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Message any `json:"message"`
	}
	if raw[0] == '{' && json.Unmarshal(raw, &obj) == nil {
		if s, ok := obj.Message.(string); ok && s != "" {
			return s
		}
		return string(raw)
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// Error maps a failed result onto the error taxonomy; nil for OK.
func (r Result) Error() error {
	switch r.Outcome {
	case OK:
		return nil
	case RejectedByServer:
		msg := r.ServerMessage()
		if msg == "" {
			msg = MsgServerError
		}
		return apperr.Wrap(r.Err, apperr.KindRequestRejected, msg, fmt.Sprintf("status %d", r.Status))
	case NoResponse:
		return apperr.Wrap(r.Err, apperr.KindTransportFailure, MsgNotResponding, "")
	default:
		detail := "request failed"
		if r.Err != nil {
			detail = r.Err.Error()
		}
		return apperr.Wrap(r.Err, apperr.KindRequestFailed, fmt.Sprintf(msgRequestErrorFm, detail), "")
	}
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, hc *http.Client, log *zap.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Do(ctx context.Context, req Request) Result {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			c.log.Error("transport: encode body", zap.String("path", req.Path), zap.Error(err))
			return Result{Outcome: RequestError, Err: err}
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		c.log.Error("transport: build request", zap.String("path", req.Path), zap.Error(err))
		return Result{Outcome: RequestError, Err: err}
	}
	hr.Header.Set("Accept", "application/json")
	if body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		c.log.Warn("transport: no response", zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
		return Result{Outcome: NoResponse, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("transport: read body", zap.String("path", req.Path), zap.Error(err))
		return Result{Outcome: NoResponse, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Info("transport: rejected",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
		)
		return Result{Outcome: RejectedByServer, Status: resp.StatusCode, Payload: payload}
	}
	return Result{Outcome: OK, Status: resp.StatusCode, Payload: payload}
}
