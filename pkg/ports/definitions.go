package ports

import (
	"context"
	"net/url"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

// LinkRepository persists links. Lookups of a single row return nil, nil
// when the row does not exist.
type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	ListLinksByOwner(ctx context.Context, userID string) ([]domain.Link, error)
	GetOwnedLink(ctx context.Context, id int64, userID string) (*domain.Link, error)
	FindLinksByCode(ctx context.Context, code string, limit int) ([]domain.Link, error)
	DeleteLink(ctx context.Context, id int64, userID string) (int64, error)
}

// ClickRepository is append-only.
type ClickRepository interface {
	InsertClick(ctx context.Context, click *domain.Click) error
	ListClicks(ctx context.Context, urlIDs []int64) ([]domain.Click, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// Bucket is a flat, publicly readable object store.
type Bucket interface {
	Name() string
	Upload(ctx context.Context, name, contentType string, data []byte) error
	Download(ctx context.Context, name string) (data []byte, contentType string, err error)
	Remove(ctx context.Context, name string) error
	PublicURL(name string) string
}

// LinkCache is an optional read-through cache for public code resolution.
// Get returns nil, nil on a miss.
type LinkCache interface {
	Get(ctx context.Context, code string) (*domain.Link, error)
	Set(ctx context.Context, code string, link *domain.Link) error
	Invalidate(ctx context.Context, codes ...string) error
}

// Locator maps a visitor IP to a place. An empty ip means "the caller".
type Locator interface {
	Locate(ctx context.Context, ip string) (domain.Location, error)
}

// CodeRenderer draws a scannable code for content. The returned bytes are
// the finished PNG; an empty result means rendering failed.
type CodeRenderer interface {
	Render(content string, size int) ([]byte, error)
}

type LinkService interface {
	Create(ctx context.Context, fields domain.NewLink, qr []byte) (*domain.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Link, error)
	GetOwned(ctx context.Context, id int64, userID string) (*domain.Link, error)
	ResolveByCode(ctx context.Context, code string) (*domain.Link, error)
	Delete(ctx context.Context, id int64, userID string) error
}

type ClickService interface {
	Insert(ctx context.Context, urlID int64, city, country, device string) error
	ListForURLs(ctx context.Context, urlIDs []int64) ([]domain.Click, error)
	ListForURL(ctx context.Context, urlID int64) ([]domain.Click, error)
}

type AccountService interface {
	SignUp(ctx context.Context, email, name, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	EnsureExternal(ctx context.Context, email, name string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
}

// CreationFlow turns a submitted form into a stored link.
type CreationFlow interface {
	Submit(ctx context.Context, userID string, form domain.LinkForm, observe func(domain.CreationState)) (*domain.Link, error)
	DraftFromQuery(q url.Values) domain.LinkDraft
}

// VisitRecorder accepts visits for asynchronous recording. Enqueue never
// blocks and reports whether the visit was accepted.
type VisitRecorder interface {
	Enqueue(v domain.Visit) bool
}
