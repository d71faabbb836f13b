package httputils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DoJSON sends a JSON request with custom headers and decodes the JSON
// response into resp (skipped when resp is nil). Non-2xx responses come
// back as an error carrying the response body.
func DoJSON(ctx context.Context, method, url string, headers map[string]string, body interface{}, resp interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		b, _ := io.ReadAll(r.Body)
		return fmt.Errorf("bad status: %d - %s", r.StatusCode, string(b))
	}
	if resp != nil {
		return json.NewDecoder(r.Body).Decode(resp)
	}
	return nil
}

// DoStream is DoJSON without decoding: the caller owns the body and must
// close it. Used for server-sent-event streams.
func DoStream(ctx context.Context, method, url string, headers map[string]string, body interface{}) (io.ReadCloser, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		defer r.Body.Close()
		b, _ := io.ReadAll(r.Body)
		return nil, fmt.Errorf("bad status: %d - %s", r.StatusCode, string(b))
	}
	return r.Body, nil
}
