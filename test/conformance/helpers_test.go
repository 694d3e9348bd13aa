//go:build conformance

package conformance

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
)

// apiURL builds a full URL for the given path, e.g. "/api/upload/imgbb".
func apiURL(path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

// doRequest performs an HTTP request and returns the response.
func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// decode reads a JSON body into target.
func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal JSON: %v\nbody: %s", err, string(data))
	}
}

// multipartBody builds a multipart body. An empty fieldName yields a form
// with a single text field and no file.
func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fieldName == "" {
		if err := w.WriteField("comment", "no file"); err != nil {
			t.Fatalf("write field: %v", err)
		}
	} else {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// doUpload posts a multipart upload and returns the status and decoded body.
func doUpload(t *testing.T, path, fieldName, fileName, contentType string, content []byte) (int, map[string]any) {
	t.Helper()
	body, ct := multipartBody(t, fieldName, fileName, contentType, content)
	req, err := http.NewRequest(http.MethodPost, apiURL(path), body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", ct)
	resp := doRequest(t, req)
	var out map[string]any
	decode(t, resp, &out)
	return resp.StatusCode, out
}

// requireErrorEnvelope asserts the body is exactly {error: string}.
func requireErrorEnvelope(t *testing.T, body map[string]any) string {
	t.Helper()
	if len(body) != 1 {
		t.Fatalf("error body should have exactly one key, got %v", body)
	}
	msg, ok := body["error"].(string)
	if !ok || msg == "" {
		t.Fatalf("error body should carry a non-empty string, got %v", body)
	}
	return msg
}
