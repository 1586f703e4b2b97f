// Package suites contains the built-in Marqo compatibility cases.
//
// Importing the package registers every case into cases.Default.
package suites

import (
	"context"
	"fmt"

	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/marqo"
)

const indexPrefix = "compat_"

func init() {
	RegisterAll(cases.Default)
}

// RegisterAll registers the built-in cases into r.
func RegisterAll(r *cases.Registry) {
	r.MustRegister(indexPersistence)
	r.MustRegister(partialUpdateExistingIndex)
}

func indexName(s string) string {
	return indexPrefix + s
}

// seedDocuments creates index and fills it with docs.
func seedDocuments(ctx context.Context, env *cases.Env, index string, settings marqo.IndexSettings, docs []marqo.Document, tensorFields []string) error {
	if err := env.Client.CreateIndex(ctx, index, settings); err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	if _, err := env.Client.AddDocuments(ctx, index, marqo.AddDocumentsRequest{
		Documents:    docs,
		TensorFields: tensorFields,
	}); err != nil {
		return fmt.Errorf("add documents to %s: %w", index, err)
	}
	logging.Debug("seeded index", "index", index, "documents", len(docs))
	return nil
}

func expectField(doc marqo.Document, field string, want any) error {
	got, ok := doc[field]
	if !ok {
		return fmt.Errorf("document %v: field %s missing", doc["_id"], field)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("document %v: field %s = %v, want %v", doc["_id"], field, got, want)
	}
	return nil
}
