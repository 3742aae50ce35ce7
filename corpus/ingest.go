package corpus

import (
	"context"
	"fmt"

	"github.com/lovepop1/emotiaisupport/common/logger"
	"github.com/lovepop1/emotiaisupport/embedding"
	"github.com/lovepop1/emotiaisupport/schema"
)

// Report summarizes an embedding backfill run.
type Report struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Ingestor fills in embeddings for corpus documents that lack one.
type Ingestor struct {
	Store Store
	Embed embedding.Provider
}

// Backfill embeds every document that has no vector yet, or every
// document when force is set. A failure on one document is logged and
// counted but never aborts the run, so repeated invocations converge:
// documents already embedded are skipped and only the stragglers retry.
func (in *Ingestor) Backfill(ctx context.Context, force bool) (Report, error) {
	var report Report

	var docs []schema.Document
	var err error
	if force {
		docs, err = in.Store.ListDocs(ctx, 0)
	} else {
		docs, err = in.Store.Missing(ctx)
	}
	if err != nil {
		return report, fmt.Errorf("scan corpus: %w", err)
	}
	report.Scanned = len(docs)

	for _, doc := range docs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		text := embedText(doc)
		vec, err := in.Embed.GetEmbedding(ctx, text)
		if err != nil {
			report.Failed++
			logger.Warnf("backfill: embed guide %s failed: %v", doc.ID, err)
			continue
		}
		if err := in.Store.SetVector(ctx, doc.ID, vec); err != nil {
			report.Failed++
			logger.Warnf("backfill: store embedding for guide %s failed: %v", doc.ID, err)
			continue
		}
		report.Updated++
	}
	logger.Infof("backfill: scanned=%d updated=%d failed=%d force=%v",
		report.Scanned, report.Updated, report.Failed, force)
	return report, nil
}

// embedText is the text a guide is embedded from. Title and content
// together, matching what the retrieval query is compared against.
func embedText(doc schema.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	return doc.Title + "\n" + doc.Content
}
