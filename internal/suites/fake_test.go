package suites

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
)

// fakeMarqo is an in-memory stand-in for the handful of endpoints the
// built-in cases use.
type fakeMarqo struct {
	mu      sync.Mutex
	indexes map[string]map[string]map[string]any

	// dropPartialUpdates makes PATCH a silent no-op.
	dropPartialUpdates bool
}

func newFakeMarqo(t *testing.T) (*fakeMarqo, *httptest.Server) {
	t.Helper()
	f := &fakeMarqo{indexes: make(map[string]map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /indexes", f.listIndexes)
	mux.HandleFunc("POST /indexes/{index}", f.createIndex)
	mux.HandleFunc("POST /indexes/{index}/documents", f.addDocuments)
	mux.HandleFunc("PATCH /indexes/{index}/documents", f.updateDocuments)
	mux.HandleFunc("GET /indexes/{index}/documents/{id}", f.getDocument)
	mux.HandleFunc("POST /indexes/{index}/search", f.search)
	mux.HandleFunc("GET /indexes/{index}/stats", f.stats)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeMarqo) index(w http.ResponseWriter, r *http.Request) map[string]map[string]any {
	docs, ok := f.indexes[r.PathValue("index")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "index not found"})
	}
	return docs
}

func (f *fakeMarqo) listIndexes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []map[string]string
	for name := range f.indexes {
		results = append(results, map[string]string{"indexName": name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (f *fakeMarqo) createIndex(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := r.PathValue("index")
	if _, ok := f.indexes[name]; ok {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "index exists"})
		return
	}
	f.indexes[name] = make(map[string]map[string]any)
	writeJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
}

func (f *fakeMarqo) write(w http.ResponseWriter, r *http.Request, merge bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.index(w, r)
	if docs == nil {
		return
	}

	var body struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	var items []map[string]any
	for _, doc := range body.Documents {
		id := fmt.Sprint(doc["_id"])
		switch {
		case !merge:
			docs[id] = doc
		case !f.dropPartialUpdates:
			existing, ok := docs[id]
			if !ok {
				items = append(items, map[string]any{"_id": id, "status": 404, "error": "not found"})
				continue
			}
			for k, v := range doc {
				existing[k] = v
			}
		}
		items = append(items, map[string]any{"_id": id, "status": 200})
	}

	failed := false
	for _, item := range items {
		if item["status"] != 200 {
			failed = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"errors": failed, "items": items})
}

func (f *fakeMarqo) addDocuments(w http.ResponseWriter, r *http.Request) {
	f.write(w, r, false)
}

func (f *fakeMarqo) updateDocuments(w http.ResponseWriter, r *http.Request) {
	f.write(w, r, true)
}

func (f *fakeMarqo) getDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.index(w, r)
	if docs == nil {
		return
	}
	doc, ok := docs[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "document not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// search ranks by the first add_to_score field, descending.
func (f *fakeMarqo) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.index(w, r)
	if docs == nil {
		return
	}

	var body struct {
		ScoreModifiers struct {
			AddToScore []struct {
				FieldName string `json:"field_name"`
			} `json:"add_to_score"`
		} `json:"scoreModifiers"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	hits := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, doc)
	}
	sort.Slice(hits, func(i, j int) bool {
		return fmt.Sprint(hits[i]["_id"]) < fmt.Sprint(hits[j]["_id"])
	})
	if mods := body.ScoreModifiers.AddToScore; len(mods) > 0 {
		field := mods[0].FieldName
		sort.SliceStable(hits, func(i, j int) bool {
			a, _ := hits[i][field].(float64)
			b, _ := hits[j][field].(float64)
			return a > b
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (f *fakeMarqo) stats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.index(w, r)
	if docs == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"numberOfDocuments": len(docs), "numberOfVectors": len(docs)})
}
