// Package gateway routes an upload to exactly one provider adapter and
// relays its result or error unchanged.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/leca/multi-image-host/internal/config"
	"github.com/leca/multi-image-host/internal/metrics"
	"github.com/leca/multi-image-host/internal/model"
	"github.com/leca/multi-image-host/internal/provider"
)

// Gateway holds one adapter per provider. There is no fallback between
// providers and nothing is retried.
type Gateway struct {
	freeImage provider.Uploader
	imgBB     provider.Uploader
	gofile    provider.Uploader

	observer metrics.Observer
	logger   *slog.Logger
}

// New builds a gateway from explicit adapters.
func New(freeImage, imgBB, gofile provider.Uploader, observer metrics.Observer, logger *slog.Logger) *Gateway {
	if observer == nil {
		observer = metrics.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		freeImage: freeImage,
		imgBB:     imgBB,
		gofile:    gofile,
		observer:  observer,
		logger:    logger,
	}
}

// FromConfig builds the three adapters from cfg, sharing one HTTP client
// whose timeout is cfg.UploadTimeout (zero means no deadline). Providers
// with incomplete configuration are logged and still constructed; they fail
// their own uploads only.
func FromConfig(cfg *config.Config, observer metrics.Observer, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	client := &http.Client{Timeout: cfg.UploadTimeout}

	for id, pc := range map[provider.ID]config.ProviderConfig{
		provider.FreeImage: cfg.FreeImage,
		provider.ImgBB:     cfg.ImgBB,
		provider.Gofile:    cfg.Gofile,
	} {
		if missing := pc.Missing(); len(missing) > 0 {
			logger.Warn("provider not configured", "provider", string(id), "missing", missing)
		} else {
			logger.Info("provider configured", "provider", string(id), "settings", pc)
		}
	}

	return New(
		provider.NewFreeImage(cfg.FreeImage, client, logger),
		provider.NewImgBB(cfg.ImgBB, client, logger),
		provider.NewGofile(cfg.Gofile, client, logger),
		observer,
		logger,
	)
}

func (g *Gateway) adapter(id provider.ID) provider.Uploader {
	switch id {
	case provider.FreeImage:
		return g.freeImage
	case provider.ImgBB:
		return g.imgBB
	case provider.Gofile:
		return g.gofile
	}
	return nil
}

// Dispatch uploads req through the adapter for id.
func (g *Gateway) Dispatch(ctx context.Context, id provider.ID, req *provider.Request) (*model.UploadResult, error) {
	if req == nil || req.Body == nil {
		return nil, provider.MissingInput()
	}
	up := g.adapter(id)
	if up == nil {
		return nil, &provider.Error{Provider: id, Kind: provider.KindValidation, Message: "Unknown provider: " + string(id)}
	}

	start := time.Now()
	res, err := up.Upload(ctx, req)
	elapsed := time.Since(start)

	var kind string
	if err != nil {
		kind = provider.KindOf(err).String()
		g.logger.Warn("upload failed", "provider", string(id), "file", req.Name, "kind", kind, "error", err, "duration", elapsed)
	} else {
		g.logger.Info("upload complete", "provider", string(id), "file", req.Name, "url", res.Image.URL, "duration", elapsed)
	}
	g.observer.RecordUpload(string(id), elapsed, req.Size, kind)
	return res, err
}
