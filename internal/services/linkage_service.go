package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

// LinkageService connects auction history to calendar events.
type LinkageService interface {
	// Resolve links every unlinked history row whose auction name and date
	// exactly match an event. Returns the number of rows linked by this run.
	Resolve(ctx context.Context) (int64, error)
}

type linkageService struct {
	repo repository.ReconcileRepository
	log  *logger.Logger
}

// NewLinkageService creates a new instance of LinkageService.
func NewLinkageService(repo repository.ReconcileRepository, log *logger.Logger) LinkageService {
	return &linkageService{repo: repo, log: log}
}

func (s *linkageService) Resolve(ctx context.Context) (int64, error) {
	linked, err := s.repo.LinkAuctionHistory(ctx)
	if err != nil {
		s.log.Error("Failed to link auction history", err, nil)
		return 0, fmt.Errorf("failed to link auction history: %w", err)
	}

	if linked > 0 {
		s.log.Info("Auction history linked", map[string]interface{}{
			"linked": linked,
		})
	}
	return linked, nil
}
