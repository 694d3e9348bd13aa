package provider

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/model"
)

const freeimageOrigin = "https://freeimage.host"

// FreeImageAdapter uploads to freeimage.host through its Chevereto v1 API.
type FreeImageAdapter struct {
	sender
}

// NewFreeImage returns the freeimage.host adapter.
func NewFreeImage(cfg config.ProviderConfig, client *http.Client, logger *slog.Logger) *FreeImageAdapter {
	return &FreeImageAdapter{sender: newSender(FreeImage, cfg, client, logger)}
}

type freeimageResponse struct {
	StatusCode flexInt `json:"status_code"`
	Success    *struct {
		Message string  `json:"message"`
		Code    flexInt `json:"code"`
	} `json:"success"`
	Image     *freeimageImage `json:"image"`
	Error     *upstreamError  `json:"error"`
	StatusTxt string          `json:"status_txt"`
}

type freeimageImage struct {
	Filename         string            `json:"filename"`
	OriginalFilename string            `json:"original_filename"`
	Size             flexInt           `json:"size"`
	Width            flexInt           `json:"width"`
	Height           flexInt           `json:"height"`
	Mime             string            `json:"mime"`
	Bits             flexInt           `json:"bits"`
	Channels         flexInt           `json:"channels"`
	URL              string            `json:"url"`
	URLViewer        string            `json:"url_viewer"`
	DisplayURL       string            `json:"display_url"`
	Thumb            *freeimageVariant `json:"thumb"`
	Medium           *freeimageVariant `json:"medium"`
}

type freeimageVariant struct {
	URL    string  `json:"url"`
	Width  flexInt `json:"width"`
	Height flexInt `json:"height"`
	Size   flexInt `json:"size"`
}

// Upload implements Uploader.
func (a *FreeImageAdapter) Upload(ctx context.Context, req *Request) (*model.UploadResult, error) {
	if err := Validate(FreeImage, req); err != nil {
		return nil, err
	}
	if err := a.ready(); err != nil {
		return nil, err
	}
	a.logger.Info("uploading file", "name", req.Name, "size", req.Size, "type", req.MediaType)

	headers := browserHeaders(freeimageOrigin, "same-origin")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Pragma", "no-cache")

	body, err := a.send(ctx, &form{
		fields: []formField{
			{"key", a.cfg.Key},
			{"action", "upload"},
			{"format", "json"},
			{"type", "file"},
			{"privacy", "public"},
			{"name", req.baseName()},
			{"description", "Uploaded via Multi-Image Host"},
			{"quality", "100"},
			{"resize", "0"},
		},
		fileField: "source",
		req:       req,
		headers:   headers,
	})
	if err != nil {
		return nil, err
	}

	var resp freeimageResponse
	if err := a.decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.StatusCode.orDefault(0) != http.StatusOK || resp.Success == nil {
		return nil, a.rejected(body, "Failed to upload image", resp.Error.text(), resp.StatusTxt)
	}
	return a.normalize(req, &resp)
}

func (a *FreeImageAdapter) normalize(req *Request, resp *freeimageResponse) (*model.UploadResult, error) {
	img := resp.Image
	if img == nil || img.URL == "" {
		return nil, newError(FreeImage, KindUpstream, "Upload failed: FreeImage.host returned no image URL")
	}

	size := img.Size.orDefault(req.Size)
	sizeFormatted := model.FormatSize(size)
	width, height := img.Width.intPtr(), img.Height.intPtr()

	variant := func(v *freeimageVariant) model.Variant {
		if v == nil || v.URL == "" {
			return model.AliasVariant(img.URL, sizeFormatted)
		}
		vsf := sizeFormatted
		if v.Size.set {
			vsf = model.FormatSize(v.Size.value)
		}
		return model.Variant{URL: v.URL, Width: v.Width.intPtr(), Height: v.Height.intPtr(), SizeFormatted: vsf}
	}

	return model.Success(string(FreeImage), firstNonEmpty(resp.Success.Message, "Image uploaded successfully"), model.Image{
		URL:              img.URL,
		URLViewer:        firstNonEmpty(img.URLViewer, img.URL),
		DisplayURL:       firstNonEmpty(img.DisplayURL, img.URL),
		Filename:         firstNonEmpty(img.Filename, req.Name),
		OriginalFilename: firstNonEmpty(img.OriginalFilename, req.Name),
		Size:             size,
		SizeFormatted:    sizeFormatted,
		Width:            width,
		Height:           height,
		Mime:             strPtr(img.Mime),
		Bits:             img.Bits.intPtr(),
		Channels:         img.Channels.intPtr(),
		Ratio:            model.Ratio(width, height),
		Thumb:            variant(img.Thumb),
		Medium:           variant(img.Medium),
	}), nil
}
