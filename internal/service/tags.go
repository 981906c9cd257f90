package service

import (
	"context"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/google/uuid"
)

type TagService struct {
	Repo    repository.TagRepository
	Domains repository.DomainRepository
}

func NewTagService(repo repository.TagRepository, domains repository.DomainRepository) *TagService {
	return &TagService{Repo: repo, Domains: domains}
}

type TagDetail struct {
	domain.Tag
	Domains []domain.Domain `json:"domains"`
}

func (s *TagService) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	return s.Repo.List(ctx, userID)
}

// Get returns the tag with the domains carrying it.
func (s *TagService) Get(ctx context.Context, userID uuid.UUID, name string) (*TagDetail, error) {
	tag, err := s.Repo.GetByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	domains, _, err := s.Domains.List(ctx, userID, domain.ListFilter{Tag: tag.Name, PageSize: 1000, SortBy: domain.SortNameAsc})
	if err != nil {
		return nil, err
	}
	return &TagDetail{Tag: *tag, Domains: domains}, nil
}

// Save validates before touching the repository; an invalid tag never reaches it.
func (s *TagService) Save(ctx context.Context, userID uuid.UUID, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	tag.UserID = userID
	return s.Repo.Save(ctx, tag)
}

func (s *TagService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.Repo.Delete(ctx, userID, id)
}

func (s *TagService) SetDomains(ctx context.Context, userID, tagID uuid.UUID, domainIDs []uuid.UUID) error {
	return s.Repo.SetDomains(ctx, userID, tagID, domainIDs)
}
