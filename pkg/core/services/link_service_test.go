package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/storage"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"go.uber.org/zap"
)

var png = []byte("\x89PNG\r\n\x1a\n")

func TestGenerateShortCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{4}$`)
	for i := 0; i < 200; i++ {
		code, err := generateShortCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		assert.False(t, reservedCodes[code])
	}
}

func TestCreate(t *testing.T) {
	links := &fakeLinks{}
	bucket := newFakeBucket()
	svc := NewLinkService(links, bucket, nil, zap.NewNop())

	link, err := svc.Create(context.Background(), domain.NewLink{Title: "Demo", LongURL: "https://example.com", UserID: "u1"}, png)
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-z]{4}$`, link.ShortURL)
	assert.Equal(t, "https://example.com", link.OriginalURL)
	assert.Nil(t, link.CustomURL)
	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/qrs/qr-"+link.ShortURL, link.QR)
	assert.Equal(t, png, bucket.objects["qr-"+link.ShortURL])
	assert.Len(t, links.links, 1)
}

func TestCreateStoresCustomURL(t *testing.T) {
	svc := NewLinkService(&fakeLinks{}, newFakeBucket(), nil, zap.NewNop())

	link, err := svc.Create(context.Background(), domain.NewLink{Title: "Promo", LongURL: "https://example.com", CustomURL: "promo", UserID: "u1"}, png)
	require.NoError(t, err)
	require.NotNil(t, link.CustomURL)
	assert.Equal(t, "promo", *link.CustomURL)
}

func TestCreateUploadFailureSkipsInsert(t *testing.T) {
	links := &fakeLinks{}
	bucket := newFakeBucket()
	bucket.uploadErr = errors.New("bucket offline")
	svc := NewLinkService(links, bucket, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), domain.NewLink{Title: "Demo", LongURL: "https://example.com", UserID: "u1"}, png)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, links.links)
}

func TestCreateInsertFailureRemovesObject(t *testing.T) {
	links := &fakeLinks{createErr: errors.New("UNIQUE constraint failed: urls.custom_url")}
	bucket := newFakeBucket()
	svc := NewLinkService(links, bucket, nil, zap.NewNop())
	svc.newCode = func() (string, error) { return "ab12", nil }

	_, err := svc.Create(context.Background(), domain.NewLink{Title: "Demo", LongURL: "https://example.com", UserID: "u1"}, png)
	assert.ErrorIs(t, err, domain.ErrInsert)
	assert.Equal(t, "Error creating short URL", domain.PublicMessage(err))
	assert.Empty(t, bucket.objects)
	assert.Equal(t, []string{"qr-ab12"}, bucket.removed)
}

func TestCreateShortCodeCollision(t *testing.T) {
	links := &fakeLinks{}
	bucket, err := storage.NewDiskBucket(t.TempDir(), "qrs", "http://localhost:8080")
	require.NoError(t, err)
	svc := NewLinkService(links, bucket, nil, zap.NewNop())
	svc.newCode = func() (string, error) { return "ab12", nil }

	ctx := context.Background()
	_, err = svc.Create(ctx, domain.NewLink{Title: "First", LongURL: "https://example.com", UserID: "u1"}, png)
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.NewLink{Title: "Second", LongURL: "https://example.org", UserID: "u2"}, png)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, "Unable to upload QR code", domain.PublicMessage(err))
	assert.Len(t, links.links, 1)
}

func TestResolveByCode(t *testing.T) {
	custom := "ab12"
	links := &fakeLinks{links: []domain.Link{
		{ID: 1, ShortURL: "ab12", OriginalURL: "https://a.example", UserID: "u1"},
		{ID: 2, ShortURL: "cd34", OriginalURL: "https://b.example", UserID: "u1"},
		{ID: 3, ShortURL: "ef56", CustomURL: &custom, OriginalURL: "https://c.example", UserID: "u2"},
	}}
	svc := NewLinkService(links, newFakeBucket(), nil, zap.NewNop())
	ctx := context.Background()

	link, err := svc.ResolveByCode(ctx, "cd34")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", link.OriginalURL)

	_, err = svc.ResolveByCode(ctx, "zzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound, "no match")

	_, err = svc.ResolveByCode(ctx, "ab12")
	assert.ErrorIs(t, err, domain.ErrNotFound, "ambiguous match")

	links.findErr = errors.New("connection reset")
	_, err = svc.ResolveByCode(ctx, "cd34")
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestResolveByCodeUsesCache(t *testing.T) {
	links := &fakeLinks{links: []domain.Link{{ID: 1, ShortURL: "ab12", OriginalURL: "https://a.example", UserID: "u1"}}}
	cache := newFakeCache()
	svc := NewLinkService(links, newFakeBucket(), cache, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ResolveByCode(ctx, "ab12")
	require.NoError(t, err)
	require.Contains(t, cache.entries, "ab12")

	links.findErr = errors.New("db down")
	link, err := svc.ResolveByCode(ctx, "ab12")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ID)

	require.NoError(t, svc.Delete(ctx, 1, "u1"))
	assert.NotContains(t, cache.entries, "ab12")
}

func TestGetOwnedAndList(t *testing.T) {
	links := &fakeLinks{links: []domain.Link{{ID: 1, ShortURL: "ab12", UserID: "u1"}}}
	svc := NewLinkService(links, newFakeBucket(), nil, zap.NewNop())
	ctx := context.Background()

	link, err := svc.GetOwned(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ab12", link.ShortURL)

	_, err = svc.GetOwned(ctx, 1, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListByOwner(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)

	links.listErr = errors.New("timeout")
	_, err = svc.ListByOwner(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrLoad)
	assert.Equal(t, "Unable to load Urls", domain.PublicMessage(err))
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	links := &fakeLinks{links: []domain.Link{{ID: 1, ShortURL: "ab12", UserID: "u1"}}}
	bucket := newFakeBucket()
	bucket.objects["qr-ab12"] = png
	svc := NewLinkService(links, bucket, nil, zap.NewNop())
	ctx := context.Background()

	err := svc.Delete(ctx, 1, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, links.links, 1)

	require.NoError(t, svc.Delete(ctx, 1, "u1"))
	assert.Empty(t, links.links)
	assert.NotContains(t, bucket.objects, "qr-ab12")
}

func TestDeleteFailure(t *testing.T) {
	links := &fakeLinks{links: []domain.Link{{ID: 1, ShortURL: "ab12", UserID: "u1"}}, deleteErr: errors.New("locked")}
	svc := NewLinkService(links, newFakeBucket(), nil, zap.NewNop())

	err := svc.Delete(context.Background(), 1, "u1")
	assert.ErrorIs(t, err, domain.ErrDelete)
	assert.Equal(t, "Unable to delete Url", domain.PublicMessage(err))
}
