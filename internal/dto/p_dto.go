package dto

import "github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"

// RecordResponse is one stored entity: system fields plus its own fields.
type RecordResponse map[string]any

type RecordsResponse struct {
	Items []RecordResponse `json:"items"`
	Count int              `json:"count"`
}

type BulkCreateRequest struct {
	Items []map[string]any `json:"items"`
}

type SelectRequest struct {
	ID string `json:"id"`
}

type FiltersRequest struct {
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters"`
}

type StatusRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type PagesResponse struct {
	Pages []string `json:"pages"`
}

func Record(rec store.Record) RecordResponse {
	return RecordResponse(rec.Map())
}

func Records(recs store.Records) RecordsResponse {
	out := RecordsResponse{Items: make([]RecordResponse, 0, len(recs)), Count: len(recs)}
	for rec := range recs.All() {
		out.Items = append(out.Items, Record(rec))
	}
	return out
}
