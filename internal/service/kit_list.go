package service

import (
	"context"
	"slices"
	"sync"

	"github.com/contentkit/studio/internal/model"
)

const DefaultPageSize = 20

type KitPager interface {
	ListContentKits(ctx context.Context, limit int, nextToken string) (*model.ContentKitPage, error)
}

// KitList accumulates the token-paginated kit list. Items already held are
// never duplicated when further pages arrive.
type KitList struct {
	backend  KitPager
	pageSize int

	mu        sync.Mutex
	items     []model.ContentKitSummary
	seen      map[string]struct{}
	nextToken string
	loaded    bool
}

func NewKitList(backend KitPager, pageSize int) *KitList {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &KitList{backend: backend, pageSize: pageSize, seen: make(map[string]struct{})}
}

// LoadMore fetches the next page and returns how many new items were
// appended. After the last page it is a no-op.
func (l *KitList) LoadMore(ctx context.Context) (int, error) {
	l.mu.Lock()
	if l.loaded && l.nextToken == "" {
		l.mu.Unlock()
		return 0, nil
	}
	token := l.nextToken
	l.mu.Unlock()

	page, err := l.backend.ListContentKits(ctx, l.pageSize, token)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	added := 0
	for _, it := range page.Items {
		if _, ok := l.seen[it.JobID]; ok {
			continue
		}
		l.seen[it.JobID] = struct{}{}
		l.items = append(l.items, it)
		added++
	}
	l.nextToken = page.NextToken
	l.loaded = true
	return added, nil
}

// HasMore reports whether another page is available. It is true before the
// first load.
func (l *KitList) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.loaded || l.nextToken != ""
}

func (l *KitList) Items() []model.ContentKitSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

func (l *KitList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.seen = make(map[string]struct{})
	l.nextToken = ""
	l.loaded = false
}

// Refresh reloads the first page.
func (l *KitList) Refresh(ctx context.Context) error {
	l.Reset()
	_, err := l.LoadMore(ctx)
	return err
}

func (l *KitList) Remove(jobID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[jobID]; !ok {
		return
	}
	delete(l.seen, jobID)
	l.items = slices.DeleteFunc(l.items, func(it model.ContentKitSummary) bool { return it.JobID == jobID })
}
