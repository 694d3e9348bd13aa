package provider

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/model"
)

const gofileOrigin = "https://gofile.io"

// GofileAdapter uploads any file type, of any size, to gofile.io.
type GofileAdapter struct {
	sender
}

// NewGofile returns the gofile.io adapter.
func NewGofile(cfg config.ProviderConfig, client *http.Client, logger *slog.Logger) *GofileAdapter {
	return &GofileAdapter{sender: newSender(Gofile, cfg, client, logger)}
}

type gofileResponse struct {
	Status string      `json:"status"`
	Data   *gofileData `json:"data"`
}

// gofileData accepts both the legacy field names (fileId, fileName,
// folderId) and the current ones (id, name, parentFolder).
type gofileData struct {
	DownloadPage string `json:"downloadPage"`
	DirectLink   string `json:"directLink"`
	FileID       string `json:"fileId"`
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	Name         string `json:"name"`
	FolderID     string `json:"folderId"`
	ParentFolder string `json:"parentFolder"`
	AccountID    string `json:"accountId"`
}

// Upload implements Uploader.
func (a *GofileAdapter) Upload(ctx context.Context, req *Request) (*model.UploadResult, error) {
	if err := Validate(Gofile, req); err != nil {
		return nil, err
	}
	if err := a.ready(); err != nil {
		return nil, err
	}
	a.logger.Info("uploading file", "name", req.Name, "size", req.Size, "type", req.MediaType)

	headers := browserHeaders(gofileOrigin, "same-site")
	if a.cfg.Key != "" {
		headers.Set("Authorization", "Bearer "+a.cfg.Key)
	}
	var fields []formField
	if a.cfg.FolderID != "" {
		fields = append(fields, formField{"folderId", a.cfg.FolderID})
	}

	body, err := a.send(ctx, &form{
		fields:    fields,
		fileField: "file",
		req:       req,
		headers:   headers,
	})
	if err != nil {
		return nil, err
	}

	var resp gofileResponse
	if err := a.decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, a.rejected(body, "Failed to upload file", resp.Status)
	}
	return a.normalize(req, &resp)
}

// normalize maps a gofile reply. gofile has a single download page and
// reports nothing about image dimensions, so every link aliases that page
// and the size and type come from the request.
func (a *GofileAdapter) normalize(req *Request, resp *gofileResponse) (*model.UploadResult, error) {
	d := resp.Data
	if d == nil || d.DownloadPage == "" {
		return nil, newError(Gofile, KindUpstream, "Upload failed: Gofile returned no download page")
	}

	sizeFormatted := model.FormatSize(req.Size)
	return model.Success(string(Gofile), "File uploaded successfully", model.Image{
		URL:              d.DownloadPage,
		URLViewer:        d.DownloadPage,
		DisplayURL:       d.DownloadPage,
		Filename:         req.Name,
		OriginalFilename: req.Name,
		Size:             req.Size,
		SizeFormatted:    sizeFormatted,
		Mime:             strPtr(req.MediaType),
		Thumb:            model.AliasVariant(d.DownloadPage, sizeFormatted),
		Medium:           model.AliasVariant(d.DownloadPage, sizeFormatted),
		ProviderSpecific: map[string]string{
			"fileId":       firstNonEmpty(d.FileID, d.ID),
			"fileName":     firstNonEmpty(d.FileName, d.Name, req.Name),
			"downloadPage": d.DownloadPage,
			"directLink":   d.DirectLink,
			"folderId":     firstNonEmpty(d.FolderID, d.ParentFolder),
			"accountId":    d.AccountID,
		},
	}), nil
}
