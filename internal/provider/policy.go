package provider

import (
	"mime"
	"slices"
	"strings"
)

const (
	imgbbMaxSize     = 32 << 20  // 33,554,432 bytes
	freeimageMaxSize = 128 << 20 // 134,217,728 bytes
)

// Policy is a provider's local acceptance rule, applied before any
// network call. A nil AllowedTypes accepts every type and a zero MaxSize
// accepts every size.
type Policy struct {
	AllowedTypes []string
	MaxSize      int64
	TypeMessage  string
	SizeMessage  string
	Summary      string
}

var policies = map[ID]Policy{
	FreeImage: {
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/bmp", "image/webp"},
		MaxSize:      freeimageMaxSize,
		TypeMessage:  "Invalid file type. Only JPG, PNG, GIF, BMP, WEBP are allowed.",
		SizeMessage:  "File too large. Maximum size is 128MB.",
		Summary:      "Supports: JPG, PNG, GIF, BMP, WEBP (max 128MB)",
	},
	ImgBB: {
		AllowedTypes: []string{
			"image/jpeg", "image/jpg", "image/png", "image/gif", "image/bmp",
			"image/webp", "image/tiff", "image/heic", "image/avif",
		},
		MaxSize:     imgbbMaxSize,
		TypeMessage: "Invalid file type. Only JPG, PNG, GIF, BMP, WEBP, TIF, HEIC, AVIF are allowed.",
		SizeMessage: "File too large. Maximum size is 32MB for ImgBB.",
		Summary:     "Supports: JPG, PNG, GIF, BMP, WEBP, TIF, HEIC, AVIF (max 32MB)",
	},
	Gofile: {
		Summary: "Supports: ALL file types (unlimited size)",
	},
}

// PolicyFor returns the acceptance policy of id.
func PolicyFor(id ID) Policy {
	return policies[id]
}

// Validate checks req against the policy of id. Type is checked before size.
func Validate(id ID, req *Request) error {
	p := PolicyFor(id)
	if p.AllowedTypes != nil && !slices.Contains(p.AllowedTypes, normalizeMediaType(req.MediaType)) {
		return newError(id, KindValidation, p.TypeMessage)
	}
	if p.MaxSize > 0 && req.Size > p.MaxSize {
		return newError(id, KindValidation, p.SizeMessage)
	}
	return nil
}

// normalizeMediaType drops parameters and case from a declared media type.
func normalizeMediaType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
