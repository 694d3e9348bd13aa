package model

import (
	"fmt"
	"math"
)

// UploadResult is the provider-agnostic response returned for every
// successful upload, whichever host stored the file.
type UploadResult struct {
	StatusCode int           `json:"statusCode"`
	Success    SuccessStatus `json:"success"`
	Image      Image         `json:"image"`
	StatusText string        `json:"statusText"`
	ProviderID string        `json:"providerId"`
}

// SuccessStatus carries the human message attached to a successful upload.
type SuccessStatus struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Image describes the uploaded asset. Pointer fields are omitted when the
// provider does not report them.
type Image struct {
	URL              string   `json:"url"`
	URLViewer        string   `json:"urlViewer"`
	DisplayURL       string   `json:"displayUrl"`
	Filename         string   `json:"filename"`
	OriginalFilename string   `json:"originalFilename"`
	Size             int64    `json:"size"`
	SizeFormatted    string   `json:"sizeFormatted"`
	Width            *int     `json:"width,omitempty"`
	Height           *int     `json:"height,omitempty"`
	Mime             *string  `json:"mime,omitempty"`
	Bits             *int     `json:"bits,omitempty"`
	Channels         *int     `json:"channels,omitempty"`
	Ratio            *float64 `json:"ratio,omitempty"`
	Thumb            Variant  `json:"thumb"`
	Medium           Variant  `json:"medium"`

	ProviderSpecific map[string]string `json:"providerSpecific,omitempty"`
}

// Variant is a derived rendition of the image (thumbnail, medium).
type Variant struct {
	URL           string `json:"url"`
	Width         *int   `json:"width,omitempty"`
	Height        *int   `json:"height,omitempty"`
	SizeFormatted string `json:"sizeFormatted"`
}

// FormatSize renders a byte count as whole kilobytes, rounded half up.
func FormatSize(size int64) string {
	return fmt.Sprintf("%d KB", int64(math.Round(float64(size)/1024)))
}

// Ratio returns width/height when both are known and height is non-zero.
func Ratio(width, height *int) *float64 {
	if width == nil || height == nil || *height == 0 {
		return nil
	}
	r := float64(*width) / float64(*height)
	return &r
}

// AliasVariant returns a variant pointing at url with no dimensions, used
// when a provider has no distinct rendition.
func AliasVariant(url, sizeFormatted string) Variant {
	return Variant{URL: url, SizeFormatted: sizeFormatted}
}

// Success builds the common envelope around img for providerID.
func Success(providerID, message string, img Image) *UploadResult {
	return &UploadResult{
		StatusCode: 200,
		Success:    SuccessStatus{Message: message, Code: 200},
		Image:      img,
		StatusText: "OK",
		ProviderID: providerID,
	}
}
