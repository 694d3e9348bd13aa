// Package client talks to the upload gateway the way the web page does:
// one multipart POST per file, reporting progress as the bytes go out.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/leca/multi-image-host/internal/api"
	"github.com/leca/multi-image-host/internal/model"
	"github.com/leca/multi-image-host/internal/provider"
)

// FallbackMessage is shown when the gateway gives no error text of its own.
const FallbackMessage = "Failed to upload image. Please try again."

// ProgressFunc receives a whole percentage between 0 and 100 for file.
type ProgressFunc func(file string, percent int)

// File is one local file queued for upload.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// FromPath describes the file at path, guessing its media type from the
// extension.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return File{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Size:      info.Size(),
		Open:      func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// UploadError is a failed upload as the user sees it.
type UploadError struct {
	File    string
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Err }

// Client posts files to a gateway at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

// New returns a client for the gateway at baseURL.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
		Logger:  logger,
	}
}

// UploadFile sends f to the gateway endpoint for id. onProgress, if set,
// sees the share of f's bytes handed to the connection.
func (c *Client) UploadFile(ctx context.Context, id provider.ID, f File, onProgress ProgressFunc) (*model.UploadResult, error) {
	endpoint, err := url.JoinPath(c.BaseURL, "api", "upload", string(id))
	if err != nil {
		return nil, &UploadError{File: f.Name, Message: FallbackMessage, Err: err}
	}

	content, err := f.Open()
	if err != nil {
		return nil, &UploadError{File: f.Name, Message: FallbackMessage, Err: err}
	}
	defer content.Close()

	var body io.Reader = content
	if onProgress != nil {
		body = &countingReader{r: content, total: f.Size, report: func(p int) { onProgress(f.Name, p) }}
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFile(mw, f, body))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, &UploadError{File: f.Name, Message: FallbackMessage, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger().Debug("uploading", "file", f.Name, "provider", string(id), "size", f.Size)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &UploadError{File: f.Name, Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UploadError{File: f.Name, Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var eb api.ErrorBody
		msg := FallbackMessage
		if json.Unmarshal(data, &eb) == nil && strings.TrimSpace(eb.Error) != "" {
			msg = eb.Error
		}
		return nil, &UploadError{File: f.Name, Status: resp.StatusCode, Message: msg}
	}

	var res model.UploadResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &UploadError{File: f.Name, Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	if onProgress != nil {
		onProgress(f.Name, 100)
	}
	return &res, nil
}

// Providers fetches the gateway's provider listing.
func (c *Client) Providers(ctx context.Context) ([]api.ProviderInfo, error) {
	endpoint, err := url.JoinPath(c.BaseURL, "api", "providers")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list providers: unexpected status %d", resp.StatusCode)
	}
	var infos []api.ProviderInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return infos, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, f File, body io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", f.MediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

// countingReader reports whole-percent progress as it is read. Values only
// move forward and 100 is left to the caller, which sends it once the
// gateway has answered.
type countingReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.total > 0 && n > 0 {
		pct := int(math.Round(float64(c.read) * 100 / float64(c.total)))
		if pct > 99 {
			pct = 99
		}
		if pct > c.last {
			c.last = pct
			c.report(pct)
		}
	}
	return n, err
}
