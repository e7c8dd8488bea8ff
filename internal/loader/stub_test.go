package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/five82/tabula/internal/paging"
	"github.com/five82/tabula/internal/resource"
)

// stubBackend serves a fixed collection of total records. Pages listed in
// gates block until their channel is closed, ignoring cancellation, so a
// test can decide response order.
type stubBackend struct {
	mu       sync.Mutex
	total    int
	records  map[int64]resource.Record
	gates    map[int]chan struct{}
	failList map[int]error
	failGet  error
	calls    []int
}

func newStubBackend(total int) *stubBackend {
	b := &stubBackend{
		total:    total,
		records:  make(map[int64]resource.Record),
		gates:    make(map[int]chan struct{}),
		failList: make(map[int]error),
	}
	for i := 1; i <= total; i++ {
		b.records[int64(i)] = resource.Record{ID: int64(i), Title: "title", Body: "body"}
	}
	return b
}

func (b *stubBackend) gate(page int) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gates[page] = ch
	return ch
}

func (b *stubBackend) List(ctx context.Context, page paging.Page) (resource.ListPage, error) {
	b.mu.Lock()
	b.calls = append(b.calls, page.Index)
	gate := b.gates[page.Index]
	failure := b.failList[page.Index]
	total := b.total
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failure != nil {
		return resource.ListPage{}, failure
	}
	var items []resource.Record
	for i := page.Offset() + 1; i <= total && len(items) < page.Size; i++ {
		items = append(items, resource.Record{ID: int64(i)})
	}
	return resource.ListPage{Items: items, TotalCount: total}, nil
}

func (b *stubBackend) Get(ctx context.Context, id int64) (resource.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet != nil {
		return resource.Record{}, b.failGet
	}
	rec, ok := b.records[id]
	if !ok {
		return resource.Record{}, &resource.APIError{Method: "GET", StatusCode: 404}
	}
	return rec, nil
}

func (b *stubBackend) Create(ctx context.Context, draft resource.Draft) (resource.Record, error) {
	return resource.Record{}, errors.New("not used")
}

func (b *stubBackend) Update(ctx context.Context, id int64, draft resource.Draft) (resource.Record, error) {
	return resource.Record{}, errors.New("not used")
}

func (b *stubBackend) Delete(ctx context.Context, id int64) error {
	return errors.New("not used")
}
