// Package results keeps the canonical results of one uploader session.
package results

import (
	"context"
	"time"

	"github.com/leca/multi-image-host/internal/model"
)

// FilterAll selects every entry regardless of provider.
const FilterAll = "all"

// Entry is one successful upload as shown in the result list.
type Entry struct {
	ID       string
	BatchID  string
	Provider string
	FileName string
	Result   *model.UploadResult
	AddedAt  time.Time
}

// Store is the session result list. Entries come back in insertion order.
type Store interface {
	Add(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter string) ([]*Entry, error)
	Count(ctx context.Context, filter string) (int, error)
	Clear(ctx context.Context) error
	Close() error
}
