package provider

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/stretchr/testify/require"
)

// stubUpstream is a fake hosting API that records what it receives.
type stubUpstream struct {
	*httptest.Server

	mu          sync.Mutex
	calls       int
	fields      map[string]string
	fileField   string
	fileName    string
	fileType    string
	fileContent []byte
	header      http.Header
}

func newStubUpstream(t *testing.T, status int, body string) *stubUpstream {
	t.Helper()
	s := &stubUpstream{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls++
		s.header = r.Header.Clone()
		s.fields = map[string]string{}

		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				s.fields[k] = v[0]
			}
			for field, headers := range r.MultipartForm.File {
				fh := headers[0]
				s.fileField = field
				s.fileName = fh.Filename
				s.fileType = fh.Header.Get("Content-Type")
				f, err := fh.Open()
				if err == nil {
					s.fileContent, _ = io.ReadAll(f)
					f.Close()
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *stubUpstream) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func providerConfig(url string) config.ProviderConfig {
	return config.ProviderConfig{
		URL:         url,
		Key:         "test-key",
		URLEnv:      "TEST_URL",
		KeyEnv:      "TEST_KEY",
		KeyRequired: true,
	}
}

func newRequest(name, mediaType string, content string) *Request {
	return &Request{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(content)),
		Body:      strings.NewReader(content),
	}
}

// sizedRequest declares size bytes but carries a short body, which is
// enough to exercise the local size checks without allocating the payload.
func sizedRequest(name, mediaType string, size int64) *Request {
	return &Request{Name: name, MediaType: mediaType, Size: size, Body: strings.NewReader("x")}
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, kind, pe.Kind, "message: %s", pe.Message)
	return pe
}
