package suites

import (
	"context"
	"fmt"
	"slices"

	"github.com/marqo-ai/compat-runner/internal/cases"
	"github.com/marqo-ai/compat-runner/internal/marqo"
)

var persistenceIndex = indexName("persistence")

var persistenceDocs = []marqo.Document{
	{"_id": "p-1", "title": "The Travels of Marco Polo", "year": 1300},
	{"_id": "p-2", "title": "Extravehicular Mobility Unit", "year": 1983},
	{"_id": "p-3", "title": "Hadron collider", "year": 2008},
}

var indexPersistence = cases.Case{
	Name:        "index-persistence",
	FromVersion: "2.0",
	Description: "An unstructured index and its documents survive a version change",
	Prepare: func(ctx context.Context, env *cases.Env) error {
		return seedDocuments(ctx, env, persistenceIndex,
			marqo.IndexSettings{Type: "unstructured"},
			persistenceDocs, []string{"title"})
	},
	Test: func(ctx context.Context, env *cases.Env) error {
		names, err := env.Client.ListIndexes(ctx)
		if err != nil {
			return err
		}
		if !slices.Contains(names, persistenceIndex) {
			return fmt.Errorf("index %s missing after upgrade, have %v", persistenceIndex, names)
		}

		stats, err := env.Client.Stats(ctx, persistenceIndex)
		if err != nil {
			return err
		}
		if stats.NumberOfDocuments != len(persistenceDocs) {
			return fmt.Errorf("index %s has %d documents, want %d", persistenceIndex, stats.NumberOfDocuments, len(persistenceDocs))
		}

		for _, want := range persistenceDocs {
			id := want["_id"].(string)
			got, err := env.Client.GetDocument(ctx, persistenceIndex, id)
			if err != nil {
				return fmt.Errorf("get %s: %w", id, err)
			}
			for _, field := range []string{"title", "year"} {
				if err := expectField(got, field, want[field]); err != nil {
					return err
				}
			}
		}
		return nil
	},
}
