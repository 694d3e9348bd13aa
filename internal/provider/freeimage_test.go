package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freeimageSuccess = `{
  "status_code": 200,
  "success": {"message": "image uploaded", "code": 200},
  "image": {
    "name": "sunset",
    "extension": "png",
    "size": 3072,
    "width": 640,
    "height": 480,
    "filename": "sunset.png",
    "original_filename": "sunset.png",
    "mime": "image/png",
    "bits": 8,
    "channels": null,
    "url": "https://iili.io/abc.png",
    "url_viewer": "https://freeimage.host/i/abc",
    "display_url": "https://iili.io/abc.md.png",
    "thumb": {"url": "https://iili.io/abc.th.png", "width": 160, "height": 120, "size": "1024"},
    "medium": {"url": "https://iili.io/abc.md.png", "width": "500", "height": "375", "size": 2048}
  },
  "status_txt": "OK"
}`

func TestFreeImageUpload_Success(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, freeimageSuccess)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	content := string(make([]byte, 3072))
	res, err := adapter.Upload(context.Background(), newRequest("sunset.png", "image/png", content))
	require.NoError(t, err)

	assert.Equal(t, "freeimage", res.ProviderID)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "OK", res.StatusText)
	assert.Equal(t, "image uploaded", res.Success.Message)

	img := res.Image
	assert.Equal(t, "https://iili.io/abc.png", img.URL)
	assert.Equal(t, "https://freeimage.host/i/abc", img.URLViewer)
	assert.Equal(t, "https://iili.io/abc.md.png", img.DisplayURL)
	assert.Equal(t, int64(3072), img.Size)
	assert.Equal(t, "3 KB", img.SizeFormatted)
	require.NotNil(t, img.Width)
	require.NotNil(t, img.Height)
	assert.Equal(t, 640, *img.Width)
	assert.Equal(t, 480, *img.Height)
	require.NotNil(t, img.Ratio)
	assert.InDelta(t, 640.0/480.0, *img.Ratio, 1e-9)
	require.NotNil(t, img.Bits)
	assert.Equal(t, 8, *img.Bits)
	assert.Nil(t, img.Channels)
	require.NotNil(t, img.Mime)
	assert.Equal(t, "image/png", *img.Mime)

	assert.Equal(t, "https://iili.io/abc.th.png", img.Thumb.URL)
	assert.Equal(t, 160, *img.Thumb.Width)
	assert.Equal(t, "1 KB", img.Thumb.SizeFormatted)
	assert.Equal(t, 500, *img.Medium.Width)
	assert.Equal(t, "2 KB", img.Medium.SizeFormatted)
	assert.Nil(t, img.ProviderSpecific)
}

func TestFreeImageUpload_RequestEncoding(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, freeimageSuccess)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	_, err := adapter.Upload(context.Background(), newRequest("my.holiday.jpg", "image/jpeg", "jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, 1, stub.callCount())
	assert.Equal(t, "test-key", stub.fields["key"])
	assert.Equal(t, "upload", stub.fields["action"])
	assert.Equal(t, "json", stub.fields["format"])
	assert.Equal(t, "my.holiday", stub.fields["name"])
	assert.Equal(t, "100", stub.fields["quality"])
	assert.Equal(t, "0", stub.fields["resize"])
	assert.Equal(t, "source", stub.fileField)
	assert.Equal(t, "my.holiday.jpg", stub.fileName)
	assert.Equal(t, "image/jpeg", stub.fileType)
	assert.Equal(t, "jpeg-bytes", string(stub.fileContent))

	assert.Equal(t, "https://freeimage.host/", stub.header.Get("Referer"))
	assert.Equal(t, "https://freeimage.host", stub.header.Get("Origin"))
	assert.Equal(t, "no-cache", stub.header.Get("Cache-Control"))
	assert.Contains(t, stub.header.Get("User-Agent"), "Mozilla/5.0")
}

func TestFreeImageUpload_RejectsTypeWithoutCallingUpstream(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, freeimageSuccess)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	_, err := adapter.Upload(context.Background(), newRequest("scan.tiff", "image/tiff", "data"))
	requireKind(t, err, KindValidation)
	assert.Equal(t, 0, stub.callCount())
}

func TestFreeImageUpload_SizeBoundary(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, freeimageSuccess)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	_, err := adapter.Upload(context.Background(), sizedRequest("big.png", "image/png", 134217729))
	requireKind(t, err, KindValidation)
	assert.Equal(t, 0, stub.callCount())

	_, err = adapter.Upload(context.Background(), sizedRequest("big.png", "image/png", 134217728))
	require.NoError(t, err)
	assert.Equal(t, 1, stub.callCount())
}

func TestFreeImageUpload_LogicalFailure(t *testing.T) {
	body := `{"status_code": 400, "error": {"message": "Duplicated upload", "code": 101}, "status_txt": "Bad Request"}`
	stub := newStubUpstream(t, http.StatusOK, body)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	_, err := adapter.Upload(context.Background(), newRequest("a.png", "image/png", "data"))
	pe := requireKind(t, err, KindUpstream)
	assert.Contains(t, pe.Message, "Duplicated upload")
}

func TestFreeImageUpload_LogicalFailureFallsBackToStatusText(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, `{"status_code": 403, "status_txt": "Forbidden"}`)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	_, err := adapter.Upload(context.Background(), newRequest("a.png", "image/png", "data"))
	pe := requireKind(t, err, KindUpstream)
	assert.Equal(t, "Forbidden", pe.Message)
}

func TestFreeImageUpload_MissingImageIsAnError(t *testing.T) {
	stub := newStubUpstream(t, http.StatusOK, `{"status_code": 200, "success": {"message": "ok", "code": 200}, "status_txt": "OK"}`)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	res, err := adapter.Upload(context.Background(), newRequest("a.png", "image/png", "data"))
	assert.Nil(t, res)
	requireKind(t, err, KindUpstream)
}

func TestFreeImageUpload_VariantsAliasWhenAbsent(t *testing.T) {
	body := `{"status_code": 200, "success": {"message": "ok", "code": 200},
	  "image": {"url": "https://iili.io/x.gif", "size": 512}, "status_txt": "OK"}`
	stub := newStubUpstream(t, http.StatusOK, body)
	adapter := NewFreeImage(providerConfig(stub.URL), stub.Client(), quietLogger())

	res, err := adapter.Upload(context.Background(), newRequest("x.gif", "image/gif", "gif"))
	require.NoError(t, err)

	img := res.Image
	assert.Equal(t, "https://iili.io/x.gif", img.URLViewer)
	assert.Equal(t, "https://iili.io/x.gif", img.DisplayURL)
	assert.Equal(t, "https://iili.io/x.gif", img.Thumb.URL)
	assert.Equal(t, "https://iili.io/x.gif", img.Medium.URL)
	assert.Nil(t, img.Thumb.Width)
	assert.Nil(t, img.Width)
	assert.Nil(t, img.Ratio)
	assert.Nil(t, img.Mime)
	assert.Equal(t, "x.gif", img.Filename)
	assert.Equal(t, "1 KB", img.SizeFormatted)
}

func TestFreeImageUpload_NotConfigured(t *testing.T) {
	adapter := NewFreeImage(providerConfig(""), nil, quietLogger())

	_, err := adapter.Upload(context.Background(), newRequest("a.png", "image/png", "data"))
	pe := requireKind(t, err, KindConfig)
	assert.Contains(t, pe.Message, "TEST_URL")
}
