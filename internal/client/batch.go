package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/leca/multi-image-host/internal/provider"
	"github.com/leca/multi-image-host/internal/results"
)

// Failure is the file that stopped a batch and the message to show for it.
// Index is its position in the batch.
type Failure struct {
	Index   int
	File    string
	Message string
}

// BatchProgressFunc receives progress for the file at index in the batch.
// Names can repeat within a batch; indexes cannot.
type BatchProgressFunc func(index int, file string, percent int)

// Report summarises one batch.
type Report struct {
	BatchID  string
	Provider provider.ID
	Results  []*results.Entry
	Failure  *Failure
	Skipped  []string
}

// Batch uploads files one after another through a single provider.
type Batch struct {
	Client   *Client
	Provider provider.ID
	Store    results.Store
	Progress BatchProgressFunc
}

// Run uploads files in order. Each success is tagged with the provider and
// added to the store as it completes. The first failure ends the batch:
// results already stored stay, and the remaining files are listed in
// Report.Skipped without being sent. The returned error is the failure
// itself, or a local problem such as the store refusing an entry.
func (b *Batch) Run(ctx context.Context, files []File) (*Report, error) {
	if b.Client == nil {
		return nil, errors.New("batch has no client")
	}
	report := &Report{BatchID: uuid.New().String(), Provider: b.Provider}

	for i, f := range files {
		b.progress(i, f.Name, 0)

		var onProgress ProgressFunc
		if b.Progress != nil {
			index := i
			onProgress = func(name string, pct int) { b.Progress(index, name, pct) }
		}
		res, err := b.Client.UploadFile(ctx, b.Provider, f, onProgress)
		if err != nil {
			msg := FallbackMessage
			var ue *UploadError
			if errors.As(err, &ue) && ue.Message != "" {
				msg = ue.Message
			}
			report.Failure = &Failure{Index: i, File: f.Name, Message: msg}
			for _, rest := range files[i+1:] {
				report.Skipped = append(report.Skipped, rest.Name)
			}
			b.Client.logger().Warn("batch stopped", "batch", report.BatchID, "file", f.Name, "error", msg, "skipped", len(report.Skipped))
			return report, err
		}

		entry := &results.Entry{
			BatchID:  report.BatchID,
			Provider: string(b.Provider),
			FileName: f.Name,
			Result:   res,
		}
		if b.Store != nil {
			if err := b.Store.Add(ctx, entry); err != nil {
				return report, fmt.Errorf("record result for %s: %w", f.Name, err)
			}
		}
		report.Results = append(report.Results, entry)
	}
	return report, nil
}

func (b *Batch) progress(index int, file string, pct int) {
	if b.Progress != nil {
		b.Progress(index, file, pct)
	}
}
