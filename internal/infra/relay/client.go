package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

// cap on what we read back from a remote workflow
const maxResponseBytes = 32 << 20

// Client performs the outbound POST on behalf of callers that cannot reach
// the remote target themselves. It never retries.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Relay implements analysis.Relayer. Unlike Forward it refuses a non-2xx
// answer unless the body carries an error/duplicate status the normalizer
// can report.
func (c *Client) Relay(ctx context.Context, req analysis.OutboundRequest) (json.RawMessage, error) {
	body, err := req.Body()
	if err != nil {
		return nil, fmt.Errorf("%w: encode body: %v", analysis.ErrBadRequest, err)
	}
	raw, code, err := c.post(ctx, req.TargetURL, body)
	if err != nil {
		return nil, err
	}
	if code >= 200 && code < 300 || reportsStatus(raw) {
		return raw, nil
	}
	msg := gjson.GetBytes(raw, "message").String()
	if msg == "" {
		msg = http.StatusText(code)
	}
	return nil, fmt.Errorf("%w: target answered %d: %s", analysis.ErrUpstream, code, msg)
}

// Forward POSTs body to target and returns the JSON answer verbatim, whatever
// the upstream status code. Network failures and non-JSON answers are ErrUpstream.
func (c *Client) Forward(ctx context.Context, target string, body []byte) (json.RawMessage, error) {
	raw, _, err := c.post(ctx, target, body)
	return raw, err
}

func (c *Client) post(ctx context.Context, target string, body []byte) (json.RawMessage, int, error) {
	if strings.TrimSpace(target) == "" {
		return nil, 0, fmt.Errorf("%w: target url missing", analysis.ErrBadRequest)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", analysis.ErrBadRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", analysis.ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response: %v", analysis.ErrUpstream, err)
	}
	if !json.Valid(data) {
		return nil, resp.StatusCode, fmt.Errorf("%w: target answered %s with a non-JSON body", analysis.ErrUpstream, resp.Status)
	}
	return data, resp.StatusCode, nil
}

// reportsStatus is true when raw (or its single element) has status error or duplicate.
func reportsStatus(raw []byte) bool {
	r := gjson.ParseBytes(raw)
	if r.IsArray() && len(r.Array()) == 1 {
		r = r.Array()[0]
	}
	switch strings.ToLower(strings.TrimSpace(r.Get("status").String())) {
	case "error", "duplicate":
		return true
	}
	return false
}

// SplitRelayBody takes a relay request body {targetUrl, ...fields} and
// returns the target plus the remaining fields, byte-for-byte.
func SplitRelayBody(body []byte) (string, []byte, error) {
	if !gjson.ValidBytes(body) {
		return "", nil, fmt.Errorf("%w: body is not valid JSON", analysis.ErrBadRequest)
	}
	r := gjson.ParseBytes(body)
	if !r.IsObject() {
		return "", nil, fmt.Errorf("%w: body must be a JSON object", analysis.ErrBadRequest)
	}
	target := strings.TrimSpace(r.Get("targetUrl").String())
	if target == "" {
		return "", nil, fmt.Errorf("%w: target url missing", analysis.ErrBadRequest)
	}
	rest, err := sjson.DeleteBytes(body, "targetUrl")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", analysis.ErrBadRequest, err)
	}
	return target, rest, nil
}
