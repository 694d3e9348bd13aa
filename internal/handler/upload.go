package handler

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/leca/multi-image-host/internal/api"
	"github.com/leca/multi-image-host/internal/provider"
)

const defaultMaxMemory = 32 << 20

// Upload handles POST /api/upload and /api/upload/{provider}: a multipart
// form whose "file" part is forwarded to the provider in the context.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := api.GetProvider(r.Context())
	if !ok {
		id = provider.FreeImage
	}
	fallback := "Failed to upload image"
	if id == provider.Gofile {
		fallback = "Failed to upload file"
	}

	maxMemory := int64(defaultMaxMemory)
	if h.Config != nil && h.Config.MaxMemory > 0 {
		maxMemory = h.Config.MaxMemory
	}
	// A body that is not multipart carries no file part either.
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		api.UploadError(w, provider.MissingInput(), fallback)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.UploadError(w, provider.MissingInput(), fallback)
		return
	}
	defer file.Close()

	res, err := h.Gateway.Dispatch(r.Context(), id, &provider.Request{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Size:      header.Size,
		Body:      file,
	})
	if err != nil {
		api.UploadError(w, err, fallback)
		return
	}

	api.WriteJSON(w, http.StatusOK, res)
}

// ListProviders handles GET /api/providers.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	infos := make([]api.ProviderInfo, 0, len(provider.IDs))
	for _, id := range provider.IDs {
		p := provider.PolicyFor(id)
		info := api.ProviderInfo{
			ID:           string(id),
			Name:         id.DisplayName(),
			AllowedTypes: []string{},
			MaxSize:      p.MaxSize,
			Summary:      p.Summary,
		}
		if p.AllowedTypes != nil {
			info.AllowedTypes = p.AllowedTypes
		}
		if p.MaxSize > 0 {
			info.MaxSizeFormatted = humanize.IBytes(uint64(p.MaxSize))
		}
		if h.Config != nil {
			info.Configured = len(h.providerConfig(id).Missing()) == 0
		}
		infos = append(infos, info)
	}
	api.WriteJSON(w, http.StatusOK, infos)
}
