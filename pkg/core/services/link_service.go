package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

const qrContentType = "image/png"

// LinkService owns link CRUD, QR object upload and public code resolution.
type LinkService struct {
	repo    ports.LinkRepository
	bucket  ports.Bucket
	cache   ports.LinkCache
	logger  *zap.Logger
	newCode func() (string, error)
	now     func() time.Time
}

// NewLinkService wires the service. cache may be nil.
func NewLinkService(repo ports.LinkRepository, bucket ports.Bucket, cache ports.LinkCache, logger *zap.Logger) *LinkService {
	return &LinkService{
		repo:    repo,
		bucket:  bucket,
		cache:   cache,
		logger:  logger.Named("links"),
		newCode: generateShortCode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func qrObjectName(code string) string {
	return "qr-" + code
}

// Create stores qr under a name derived from a fresh short code and inserts the
// link. The object is removed again if the insert is rejected.
func (s *LinkService) Create(ctx context.Context, fields domain.NewLink, qr []byte) (*domain.Link, error) {
	code, err := s.newCode()
	if err != nil {
		return nil, domain.NewError(domain.KindInsert, "Error creating short URL", err)
	}

	name := qrObjectName(code)
	if err := s.bucket.Upload(ctx, name, qrContentType, qr); err != nil {
		s.logger.Error("qr upload failed", zap.String("object", name), zap.Error(err))
		return nil, domain.NewError(domain.KindStorage, "Unable to upload QR code", err)
	}

	link := &domain.Link{
		Title:       fields.Title,
		OriginalURL: fields.LongURL,
		ShortURL:    code,
		QR:          s.bucket.PublicURL(name),
		UserID:      fields.UserID,
		CreatedAt:   s.now(),
	}
	if fields.CustomURL != "" {
		custom := fields.CustomURL
		link.CustomURL = &custom
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		s.logger.Error("insert url failed", zap.String("short_url", code), zap.Error(err))
		if rmErr := s.bucket.Remove(context.WithoutCancel(ctx), name); rmErr != nil {
			s.logger.Warn("orphaned qr object", zap.String("object", name), zap.Error(rmErr))
		}
		return nil, domain.NewError(domain.KindInsert, "Error creating short URL", err)
	}

	s.invalidate(ctx, link)
	return link, nil
}

func (s *LinkService) ListByOwner(ctx context.Context, userID string) ([]domain.Link, error) {
	links, err := s.repo.ListLinksByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("list urls failed", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Unable to load Urls", err)
	}
	return links, nil
}

func (s *LinkService) GetOwned(ctx context.Context, id int64, userID string) (*domain.Link, error) {
	link, err := s.repo.GetOwnedLink(ctx, id, userID)
	if err != nil {
		s.logger.Error("get url failed", zap.Int64("id", id), zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Short Url not found", err)
	}
	if link == nil {
		return nil, domain.NewError(domain.KindNotFound, "Short Url not found", nil)
	}
	return link, nil
}

// ResolveByCode finds the single link whose short or custom code is code.
// No match and more than one match are both reported as not found.
func (s *LinkService) ResolveByCode(ctx context.Context, code string) (*domain.Link, error) {
	if s.cache != nil {
		link, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Warn("cache get failed", zap.String("code", code), zap.Error(err))
		} else if link != nil {
			return link, nil
		}
	}

	links, err := s.repo.FindLinksByCode(ctx, code, 2)
	if err != nil {
		s.logger.Error("resolve code failed", zap.String("code", code), zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Error fetching short link", err)
	}
	if len(links) != 1 {
		if len(links) > 1 {
			s.logger.Warn("ambiguous code", zap.String("code", code))
		}
		return nil, domain.NewError(domain.KindNotFound, "Error fetching short link", nil)
	}

	link := &links[0]
	if s.cache != nil {
		if err := s.cache.Set(ctx, code, link); err != nil {
			s.logger.Warn("cache set failed", zap.String("code", code), zap.Error(err))
		}
	}
	return link, nil
}

// Delete removes a link owned by userID. Its clicks are kept.
func (s *LinkService) Delete(ctx context.Context, id int64, userID string) error {
	link, err := s.repo.GetOwnedLink(ctx, id, userID)
	if err != nil {
		s.logger.Error("delete lookup failed", zap.Int64("id", id), zap.Error(err))
		return domain.NewError(domain.KindDelete, "Unable to delete Url", err)
	}
	if link == nil {
		return domain.NewError(domain.KindNotFound, "Short Url not found", nil)
	}

	n, err := s.repo.DeleteLink(ctx, id, userID)
	if err != nil {
		s.logger.Error("delete url failed", zap.Int64("id", id), zap.Error(err))
		return domain.NewError(domain.KindDelete, "Unable to delete Url", err)
	}
	if n == 0 {
		return domain.NewError(domain.KindNotFound, "Short Url not found", nil)
	}

	s.invalidate(ctx, link)
	if err := s.bucket.Remove(ctx, qrObjectName(link.ShortURL)); err != nil {
		s.logger.Warn("qr cleanup failed", zap.Int64("id", id), zap.Error(err))
	}
	return nil
}

func (s *LinkService) invalidate(ctx context.Context, link *domain.Link) {
	if s.cache == nil {
		return
	}
	codes := []string{link.ShortURL}
	if link.CustomURL != nil {
		codes = append(codes, *link.CustomURL)
	}
	if err := s.cache.Invalidate(ctx, codes...); err != nil {
		s.logger.Warn("cache invalidate failed", zap.Strings("codes", codes), zap.Error(err))
	}
}

var _ ports.LinkService = (*LinkService)(nil)
