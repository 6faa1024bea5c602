package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// vendorResponse is the common shape of both vendors' send responses.
// MsgID is decoded with UseNumber so integer ids keep their exact digits
// (public-platform msgids exceed what float64 can represent faithfully).
type vendorResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	MsgID   any    `json:"msgid"`
}

// postVendorJSON POSTs payload to url and decodes the vendor response.
// Transport and decode failures come back as plain wrapped errors (no
// vendor code to carry); a non-2xx status is reported the same way.
func postVendorJSON(ctx context.Context, client *http.Client, url string, payload any) (vendorResponse, error) {
	var vr vendorResponse

	body, err := json.Marshal(payload)
	if err != nil {
		return vr, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return vr, fmt.Errorf("build request: %w", redactTransportError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return vr, fmt.Errorf("http post: %w", redactTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return vr, fmt.Errorf("vendor returned HTTP %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&vr); err != nil {
		return vr, fmt.Errorf("decode response: %w", err)
	}
	return vr, nil
}
