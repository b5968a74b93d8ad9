package services

import (
	"context"
	"errors"
	"sync"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

type fakeLinks struct {
	mu        sync.Mutex
	links     []domain.Link
	nextID    int64
	createErr error
	findErr   error
	deleteErr error
	listErr   error
}

func (f *fakeLinks) CreateLink(_ context.Context, link *domain.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	link.ID = f.nextID
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeLinks) ListLinksByOwner(_ context.Context, userID string) ([]domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Link{}
	for _, l := range f.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinks) GetOwnedLink(_ context.Context, id int64, userID string) (*domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.ID == id && l.UserID == userID {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeLinks) FindLinksByCode(_ context.Context, code string, limit int) ([]domain.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []domain.Link{}
	for _, l := range f.links {
		if l.Matches(code) && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinks) DeleteLink(_ context.Context, id int64, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	for i, l := range f.links {
		if l.ID == id && l.UserID == userID {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	removed   []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) Name() string { return "qrs" }

func (b *fakeBucket) Upload(_ context.Context, name, _ string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.objects[name] = data
	return nil
}

func (b *fakeBucket) Download(_ context.Context, name string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[name]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return data, "image/png", nil
}

func (b *fakeBucket) Remove(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	b.removed = append(b.removed, name)
	return nil
}

func (b *fakeBucket) PublicURL(name string) string {
	return "http://localhost:8080/storage/v1/object/public/qrs/" + name
}

type fakeCache struct {
	entries map[string]domain.Link
	gets    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]domain.Link{}} }

func (c *fakeCache) Get(_ context.Context, code string) (*domain.Link, error) {
	c.gets++
	l, ok := c.entries[code]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (c *fakeCache) Set(_ context.Context, code string, link *domain.Link) error {
	c.entries[code] = *link
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, codes ...string) error {
	for _, code := range codes {
		delete(c.entries, code)
	}
	return nil
}

type fakeClicks struct {
	clicks    []domain.Click
	insertErr error
	listErr   error
}

func (f *fakeClicks) InsertClick(_ context.Context, c *domain.Click) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.clicks = append(f.clicks, *c)
	return nil
}

func (f *fakeClicks) ListClicks(_ context.Context, ids []int64) ([]domain.Click, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []domain.Click{}
	for _, c := range f.clicks {
		if want[c.URLID] {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeUsers struct {
	byEmail map[string]domain.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]domain.User{}} }

func (f *fakeUsers) CreateUser(_ context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrConflict
	}
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}
