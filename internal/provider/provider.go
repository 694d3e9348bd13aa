// Package provider holds the upload adapters for the supported hosting
// services. Each adapter validates a file against its host's limits, sends
// it in the host's own multipart format and maps the host's response onto
// model.UploadResult.
package provider

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/leca/multi-image-host/internal/model"
)

// ID names one of the supported upstream hosts. The set is closed.
type ID string

const (
	FreeImage ID = "freeimage"
	ImgBB     ID = "imgbb"
	Gofile    ID = "gofile"
)

// IDs lists every provider in display order.
var IDs = []ID{FreeImage, ImgBB, Gofile}

// ParseID returns the provider named s.
func ParseID(s string) (ID, bool) {
	switch ID(strings.ToLower(strings.TrimSpace(s))) {
	case FreeImage:
		return FreeImage, true
	case ImgBB:
		return ImgBB, true
	case Gofile:
		return Gofile, true
	}
	return "", false
}

// DisplayName is the human name of the host.
func (id ID) DisplayName() string {
	switch id {
	case FreeImage:
		return "FreeImage.host"
	case ImgBB:
		return "ImgBB"
	case Gofile:
		return "Gofile"
	}
	return string(id)
}

// Request is one file to upload. MediaType is the caller's declared type
// and is not checked against the content.
type Request struct {
	Name      string
	MediaType string
	Size      int64
	Body      io.Reader
}

// baseName strips the last extension, so "holiday.photo.jpg" becomes
// "holiday.photo".
func (r *Request) baseName() string {
	return strings.TrimSuffix(r.Name, path.Ext(r.Name))
}

func (r *Request) contentType() string {
	if r.MediaType == "" {
		return "application/octet-stream"
	}
	return r.MediaType
}

// Uploader is implemented by every provider adapter.
type Uploader interface {
	ID() ID
	Upload(ctx context.Context, req *Request) (*model.UploadResult, error)
}
