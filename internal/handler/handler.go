package handler

import (
	"context"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/model"
	"github.com/leca/multi-image-host/internal/provider"
)

// Dispatcher uploads a file through the named provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, id provider.ID, req *provider.Request) (*model.UploadResult, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Gateway Dispatcher
	Config  *config.Config
}

func (h *Handler) providerConfig(id provider.ID) config.ProviderConfig {
	switch id {
	case provider.FreeImage:
		return h.Config.FreeImage
	case provider.ImgBB:
		return h.Config.ImgBB
	case provider.Gofile:
		return h.Config.Gofile
	}
	return config.ProviderConfig{}
}
