package provider

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/model"
)

const imgbbOrigin = "https://imgbb.com"

// ImgBBAdapter uploads to imgbb.com.
type ImgBBAdapter struct {
	sender
}

// NewImgBB returns the imgbb.com adapter.
func NewImgBB(cfg config.ProviderConfig, client *http.Client, logger *slog.Logger) *ImgBBAdapter {
	return &ImgBBAdapter{sender: newSender(ImgBB, cfg, client, logger)}
}

type imgbbResponse struct {
	Data      *imgbbData     `json:"data"`
	Success   bool           `json:"success"`
	Status    flexInt        `json:"status"`
	Error     *upstreamError `json:"error"`
	StatusTxt string         `json:"status_txt"`
}

type imgbbData struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	URLViewer  string      `json:"url_viewer"`
	DisplayURL string      `json:"display_url"`
	Width      flexInt     `json:"width"`
	Height     flexInt     `json:"height"`
	Size       flexInt     `json:"size"`
	Image      imgbbAsset  `json:"image"`
	Thumb      *imgbbAsset `json:"thumb"`
	Medium     *imgbbAsset `json:"medium"`
	DeleteURL  string      `json:"delete_url"`
}

type imgbbAsset struct {
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	URL      string `json:"url"`
}

// Upload implements Uploader.
func (a *ImgBBAdapter) Upload(ctx context.Context, req *Request) (*model.UploadResult, error) {
	if err := Validate(ImgBB, req); err != nil {
		return nil, err
	}
	if err := a.ready(); err != nil {
		return nil, err
	}
	a.logger.Info("uploading file", "name", req.Name, "size", req.Size, "type", req.MediaType)

	body, err := a.send(ctx, &form{
		fields: []formField{
			{"key", a.cfg.Key},
			{"name", req.baseName()},
		},
		fileField: "image",
		req:       req,
		headers:   browserHeaders(imgbbOrigin, "same-site"),
	})
	if err != nil {
		return nil, err
	}

	var resp imgbbResponse
	if err := a.decode(body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Status.orDefault(0) != http.StatusOK {
		return nil, a.rejected(body, "Failed to upload image", resp.Error.text(), resp.StatusTxt)
	}
	return a.normalize(req, &resp)
}

// normalize maps an imgbb reply. imgbb reports no dimensions for its
// thumbnail and medium renditions and no bit depth or channel count, so
// those stay unset.
func (a *ImgBBAdapter) normalize(req *Request, resp *imgbbResponse) (*model.UploadResult, error) {
	d := resp.Data
	if d == nil || d.URL == "" {
		return nil, newError(ImgBB, KindUpstream, "Upload failed: ImgBB returned no image URL")
	}

	size := d.Size.orDefault(req.Size)
	sizeFormatted := model.FormatSize(size)
	width, height := d.Width.intPtr(), d.Height.intPtr()

	variant := func(v *imgbbAsset) model.Variant {
		if v == nil || v.URL == "" {
			return model.AliasVariant(d.URL, sizeFormatted)
		}
		return model.Variant{URL: v.URL, SizeFormatted: sizeFormatted}
	}

	return model.Success(string(ImgBB), "Image uploaded successfully", model.Image{
		URL:              d.URL,
		URLViewer:        firstNonEmpty(d.URLViewer, d.URL),
		DisplayURL:       firstNonEmpty(d.DisplayURL, d.URL),
		Filename:         firstNonEmpty(d.Image.Filename, req.Name),
		OriginalFilename: firstNonEmpty(d.Title, req.Name),
		Size:             size,
		SizeFormatted:    sizeFormatted,
		Width:            width,
		Height:           height,
		Mime:             strPtr(d.Image.Mime),
		Ratio:            model.Ratio(width, height),
		Thumb:            variant(d.Thumb),
		Medium:           variant(d.Medium),
		ProviderSpecific: map[string]string{
			"id":        d.ID,
			"deleteUrl": d.DeleteURL,
		},
	}), nil
}
