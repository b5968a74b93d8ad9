package services

import (
	"context"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

type ClickService struct {
	repo   ports.ClickRepository
	logger *zap.Logger
}

func NewClickService(repo ports.ClickRepository, logger *zap.Logger) *ClickService {
	return &ClickService{repo: repo, logger: logger.Named("clicks")}
}

func (s *ClickService) Insert(ctx context.Context, urlID int64, city, country, device string) error {
	click := &domain.Click{URLID: urlID, City: city, Country: country, Device: device}
	if err := s.repo.InsertClick(ctx, click); err != nil {
		s.logger.Error("insert click failed", zap.Int64("url_id", urlID), zap.Error(err))
		return domain.NewError(domain.KindInsert, "Unable to record click", err)
	}
	return nil
}

// ListForURLs returns the clicks of every link in urlIDs.
func (s *ClickService) ListForURLs(ctx context.Context, urlIDs []int64) ([]domain.Click, error) {
	if len(urlIDs) == 0 {
		return []domain.Click{}, nil
	}
	clicks, err := s.repo.ListClicks(ctx, urlIDs)
	if err != nil {
		s.logger.Error("list clicks failed", zap.Int("urls", len(urlIDs)), zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Error Loading Clicks", err)
	}
	return clicks, nil
}

func (s *ClickService) ListForURL(ctx context.Context, urlID int64) ([]domain.Click, error) {
	clicks, err := s.repo.ListClicks(ctx, []int64{urlID})
	if err != nil {
		s.logger.Error("list clicks failed", zap.Int64("url_id", urlID), zap.Error(err))
		return nil, domain.NewError(domain.KindLoad, "Unable to load Stats", err)
	}
	return clicks, nil
}

var _ ports.ClickService = (*ClickService)(nil)
