package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/leca/multi-image-host/internal/config"
)

// maxResponseBytes bounds how much of an upstream response is read.
const maxResponseBytes = 1 << 20

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserHeaders returns the headers a browser on origin would send, so
// hosts treat the upload like one from their own web page. Accept-Encoding
// is left to the transport, which then decodes gzip transparently.
func browserHeaders(origin, fetchSite string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", browserUserAgent)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Referer", origin+"/")
	h.Set("Origin", origin)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", fetchSite)
	return h
}

type formField struct {
	name  string
	value string
}

// form is one outbound multipart body: plain fields followed by the file.
type form struct {
	fields    []formField
	fileField string
	req       *Request
	headers   http.Header
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *form) write(mw *multipart.Writer) error {
	for _, fld := range f.fields {
		if err := mw.WriteField(fld.name, fld.value); err != nil {
			return fmt.Errorf("writing field %s: %w", fld.name, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.fileField), quoteEscaper.Replace(f.req.Name)))
	h.Set("Content-Type", f.req.contentType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, f.req.Body); err != nil {
		return fmt.Errorf("streaming file: %w", err)
	}
	return mw.Close()
}

// sender posts forms to one provider's configured endpoint.
type sender struct {
	id     ID
	cfg    config.ProviderConfig
	client *http.Client
	logger *slog.Logger
}

func newSender(id ID, cfg config.ProviderConfig, client *http.Client, logger *slog.Logger) sender {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return sender{id: id, cfg: cfg, client: client, logger: logger.With("provider", string(id))}
}

func (s *sender) ID() ID { return s.id }

// ready fails when the endpoint or a required credential is missing.
func (s *sender) ready() error {
	if missing := s.cfg.Missing(); len(missing) > 0 {
		return errorf(s.id, KindConfig, "%s upload is not configured: missing %s",
			s.id.DisplayName(), strings.Join(missing, ", "))
	}
	return nil
}

// send streams f to the upstream endpoint and returns the response body of
// a 2xx reply. Any other outcome is a KindTransport error.
func (s *sender) send(ctx context.Context, f *form) ([]byte, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(f.write(mw))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, pr)
	if err != nil {
		pr.Close()
		return nil, &Error{Provider: s.id, Kind: KindConfig, Message: "Invalid upload URL for " + s.id.DisplayName(), Err: err}
	}
	httpReq.Header = f.headers.Clone()
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	s.logger.Info("sending upstream request",
		"key_set", s.cfg.Key != "",
		"key_fingerprint", config.Fingerprint(s.cfg.Key),
		"file", f.req.Name,
		"size", f.req.Size,
	)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		// url.Error embeds the endpoint, which may carry a credential.
		cause := err
		var uerr *url.Error
		if errors.As(err, &uerr) {
			cause = uerr.Err
		}
		s.logger.Error("upstream request failed", "error", cause)
		return nil, &Error{Provider: s.id, Kind: KindTransport, Message: "Upload failed: " + cause.Error(), Err: cause}
	}
	defer resp.Body.Close()

	body, truncated, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, &Error{Provider: s.id, Kind: KindTransport, Message: "Upload failed: reading response: " + err.Error(), Err: err}
	}

	s.logger.Info("upstream responded", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		s.logger.Error("upload failed", "status", resp.StatusCode, "body", text)
		return nil, &Error{
			Provider: s.id,
			Kind:     KindTransport,
			Message:  fmt.Sprintf("Upload failed: %d - %s", resp.StatusCode, text),
			Detail:   text,
		}
	}
	if truncated {
		return nil, errorf(s.id, KindUpstream, "Upload failed: response from %s exceeded %d bytes", s.id.DisplayName(), maxResponseBytes)
	}
	return body, nil
}

// decode unmarshals an upstream JSON body into v.
func (s *sender) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		s.logger.Error("invalid upstream response", "error", err)
		return &Error{
			Provider: s.id,
			Kind:     KindUpstream,
			Message:  "Upload failed: invalid response from " + s.id.DisplayName(),
			Detail:   string(body),
			Err:      err,
		}
	}
	return nil
}

// rejected builds the error for a reply whose provider-level success flag
// is false. The provider's own text wins over the fallback.
func (s *sender) rejected(body []byte, fallback string, texts ...string) error {
	msg := firstNonEmpty(append(texts, fallback)...)
	s.logger.Error("upstream rejected upload", "message", msg, "body", string(body))
	return &Error{Provider: s.id, Kind: KindUpstream, Message: msg, Detail: string(body)}
}

func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// flexInt decodes an integer that hosts send either as a JSON number or as
// a numeric string. Null, "" and absent leave it unset.
type flexInt struct {
	value int64
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = flexInt{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt{value: n, set: true}
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt{value: int64(math.Round(fl)), set: true}
	return nil
}

func (f flexInt) intPtr() *int {
	if !f.set {
		return nil
	}
	v := int(f.value)
	return &v
}

func (f flexInt) orDefault(def int64) int64 {
	if !f.set {
		return def
	}
	return f.value
}

// upstreamError is the {message, code} error object used by Chevereto-based
// hosts. Some replies carry a bare string instead.
type upstreamError struct {
	Message string
	Code    flexInt
}

func (e *upstreamError) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		e.Message = s
		return nil
	}
	var obj struct {
		Message string  `json:"message"`
		Code    flexInt `json:"code"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.Message, e.Code = obj.Message, obj.Code
	return nil
}

func (e *upstreamError) text() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
