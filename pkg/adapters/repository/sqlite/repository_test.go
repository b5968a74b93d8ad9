package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := NewSQLiteRepository(context.Background(), "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "libsql", DriverFor("libsql://db.turso.io?authToken=x"))
	assert.Equal(t, "libsql", DriverFor("wss://db.turso.io"))
	assert.Equal(t, "sqlite", DriverFor("file:db.sqlite"))
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, repo.DB().DB))
	v, err := MigrationVersion(ctx, repo.DB().DB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestLinkLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	link := &domain.Link{Title: "Demo", OriginalURL: "https://example.com", ShortURL: "ab12", QR: "http://x/qr-ab12", UserID: "u1"}
	require.NoError(t, repo.CreateLink(ctx, link))
	assert.NotZero(t, link.ID)

	got, err := repo.GetOwnedLink(ctx, link.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com", got.OriginalURL)
	assert.Nil(t, got.CustomURL)

	other, err := repo.GetOwnedLink(ctx, link.ID, "u2")
	require.NoError(t, err)
	assert.Nil(t, other)

	links, err := repo.ListLinksByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	n, err := repo.DeleteLink(ctx, link.ID, "u2")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteLink(ctx, link.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	links, err = repo.ListLinksByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestFindLinksByCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "a", OriginalURL: "https://a.example", ShortURL: "aaaa", UserID: "u1"}))
	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "b", OriginalURL: "https://b.example", ShortURL: "bbbb", CustomURL: strPtr("promo"), UserID: "u1"}))
	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "c", OriginalURL: "https://c.example", ShortURL: "cccc", CustomURL: strPtr("aaaa"), UserID: "u2"}))

	found, err := repo.FindLinksByCode(ctx, "promo", 2)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "https://b.example", found[0].OriginalURL)

	found, err = repo.FindLinksByCode(ctx, "aaaa", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindLinksByCode(ctx, "none", 2)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateLinkConflict(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "a", OriginalURL: "https://a.example", ShortURL: "aaaa", UserID: "u1"}))
	err := repo.CreateLink(ctx, &domain.Link{Title: "b", OriginalURL: "https://b.example", ShortURL: "aaaa", UserID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestClicksSurviveLinkDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	link := &domain.Link{Title: "a", OriginalURL: "https://a.example", ShortURL: "aaaa", UserID: "u1"}
	require.NoError(t, repo.CreateLink(ctx, link))
	require.NoError(t, repo.InsertClick(ctx, &domain.Click{URLID: link.ID, City: "Bangkok", Country: "Thailand", Device: "desktop"}))
	require.NoError(t, repo.InsertClick(ctx, &domain.Click{URLID: 999, Device: "mobile"}))

	_, err := repo.DeleteLink(ctx, link.ID, "u1")
	require.NoError(t, err)

	clicks, err := repo.ListClicks(ctx, []int64{link.ID})
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "Bangkok", clicks[0].City)

	clicks, err = repo.ListClicks(ctx, []int64{link.ID, 999})
	require.NoError(t, err)
	assert.Len(t, clicks, 2)

	clicks, err = repo.ListClicks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, clicks)
}

func TestUsers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user := &domain.User{ID: "0b7c", Email: "a@example.com", Name: "A", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0b7c", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetUserByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.CreateUser(ctx, &domain.User{ID: "other", Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDump(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "a", OriginalURL: "https://a.example", ShortURL: "aaaa", UserID: "u1"}))
	require.NoError(t, repo.CreateLink(ctx, &domain.Link{Title: "b", OriginalURL: "https://b.example", ShortURL: "bbbb", UserID: "u2"}))

	links, err := repo.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "aaaa", links[0].ShortURL)
}
