package suites

import (
	"context"
	"errors"
	"fmt"

	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/marqo"
)

var (
	structuredIndex   = indexName("partial_update_structured")
	unstructuredIndex = indexName("partial_update_unstructured")
)

var partialUpdateDocs = []marqo.Document{
	{"_id": "doc-1", "title": "red shoes", "popularity": 1},
	{"_id": "doc-2", "title": "blue shoes", "popularity": 2},
	{"_id": "doc-3", "title": "green shoes", "popularity": 3},
}

var structuredSettings = marqo.IndexSettings{
	Type: "structured",
	AllFields: []marqo.Field{
		{Name: "title", Type: "text", Features: []string{"lexical_search"}},
		{Name: "popularity", Type: "float", Features: []string{"score_modifier"}},
	},
	TensorFields: []string{"title"},
}

// Partial updates were added in 2.5; indexes created before the upgrade
// must accept them and rank by the updated score modifier afterwards.
var partialUpdateExistingIndex = cases.Case{
	Name:        "partial-update-existing-index",
	FromVersion: "2.5",
	Description: "Partial updates on pre-existing indexes feed score modifiers",
	Prepare: func(ctx context.Context, env *cases.Env) error {
		if err := seedDocuments(ctx, env, structuredIndex, structuredSettings, partialUpdateDocs, nil); err != nil {
			return err
		}
		return seedDocuments(ctx, env, unstructuredIndex,
			marqo.IndexSettings{Type: "unstructured"},
			partialUpdateDocs, []string{"title"})
	},
	Test: func(ctx context.Context, env *cases.Env) error {
		var errs []error
		for _, index := range []string{structuredIndex, unstructuredIndex} {
			if err := checkPartialUpdate(ctx, env, index); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", index, err))
			}
		}
		return errors.Join(errs...)
	},
}

func checkPartialUpdate(ctx context.Context, env *cases.Env, index string) error {
	if _, err := env.Client.UpdateDocuments(ctx, index, []marqo.Document{
		{"_id": "doc-1", "popularity": 100},
	}); err != nil {
		return fmt.Errorf("partial update: %w", err)
	}

	doc, err := env.Client.GetDocument(ctx, index, "doc-1")
	if err != nil {
		return err
	}
	if err := expectField(doc, "popularity", 100); err != nil {
		return err
	}
	if err := expectField(doc, "title", "red shoes"); err != nil {
		return fmt.Errorf("partial update clobbered untouched field: %w", err)
	}

	resp, err := env.Client.Search(ctx, index, marqo.SearchRequest{
		Q:            "shoes",
		Limit:        3,
		SearchMethod: "LEXICAL",
		ScoreModifiers: map[string]any{
			"add_to_score": []map[string]any{
				{"field_name": "popularity", "weight": 1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(resp.Hits) == 0 {
		return fmt.Errorf("search returned no hits")
	}
	if top := resp.Hits[0].ID(); top != "doc-1" {
		return fmt.Errorf("top hit is %s, want doc-1 after raising its popularity", top)
	}
	return nil
}
