package batch

import (
	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// ItemStatus marks the outcome of one batch item.
type ItemStatus string

const (
	StatusOK      ItemStatus = "ok"
	StatusFailed  ItemStatus = "failed"
	StatusSkipped ItemStatus = "skipped"
)

// ItemError carries a machine-readable kind plus a human message.
type ItemError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ItemOutcome reports one item of a batch request. Index refers to the
// item's position in the request payload.
type ItemOutcome[T any] struct {
	Index  int        `json:"index"`
	ID     int64      `json:"id,omitempty"`
	Status ItemStatus `json:"status"`
	Entity *T         `json:"entity,omitempty"`
	Error  *ItemError `json:"error,omitempty"`
}

// Report summarizes a batch run. Items always has one entry per request
// item, in request order.
type Report[T any] struct {
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []ItemOutcome[T] `json:"items"`
}

func newReport[T any](total int) *Report[T] {
	return &Report[T]{Total: total, Items: make([]ItemOutcome[T], 0, total)}
}

func (r *Report[T]) succeed(index int, id int64, entity *T) {
	r.Succeeded++
	r.Items = append(r.Items, ItemOutcome[T]{Index: index, ID: id, Status: StatusOK, Entity: entity})
}

func (r *Report[T]) fail(index int, id int64, err error) {
	r.Failed++
	r.Items = append(r.Items, ItemOutcome[T]{
		Index:  index,
		ID:     id,
		Status: StatusFailed,
		Error:  &ItemError{Kind: httpx.ErrorKind(err), Message: err.Error()},
	})
}

func (r *Report[T]) skip(index int, id int64, reason string) {
	r.Failed++
	r.Items = append(r.Items, ItemOutcome[T]{
		Index:  index,
		ID:     id,
		Status: StatusSkipped,
		Error:  &ItemError{Kind: "canceled", Message: reason},
	})
}
