package domain

import (
	"bytes"
	"encoding/json"
)

// Page is one page of a paginated list endpoint. The backend returns either
// {"count", "next", "previous", "results"} or a bare JSON array; both decode
// into a Page.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Next != ""
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	// Alias drops the method set so the decode below does not recurse.
	type page struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	var raw page
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*p = Page[T]{Count: raw.Count, Results: raw.Results}
	if raw.Next != nil {
		p.Next = *raw.Next
	}
	if raw.Previous != nil {
		p.Previous = *raw.Previous
	}
	return nil
}
