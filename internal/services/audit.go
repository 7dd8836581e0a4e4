package services

import (
	"context"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/entities"
	"backoffice-console/internal/repositories"
	"backoffice-console/pkg/utils"

	"go.uber.org/zap"
)

const auditScreen = "audit"

type AuditPage struct {
	Items      []entities.AuditEntry `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalItems int                   `json:"total_items"`
}

type AuditServiceInterface interface {
	List(ctx context.Context, actor *authz.Actor, filter repositories.AuditFilter, page, pageSize int) (*AuditPage, error)
}

type AuditService struct {
	repo   repositories.AuditRepositoryInterface
	logger *zap.Logger
}

func NewAuditService(repo repositories.AuditRepositoryInterface, logger *zap.Logger) AuditServiceInterface {
	return &AuditService{repo: repo, logger: logger.Named("audit_service")}
}

func (s *AuditService) List(ctx context.Context, actor *authz.Actor, filter repositories.AuditFilter, page, pageSize int) (*AuditPage, error) {
	if err := authz.RequireCode(actor, auditScreen, authz.AuditView); err != nil {
		return nil, err
	}
	page, pageSize = utils.NormalizePage(page, pageSize)
	filter.Limit = uint64(pageSize)
	filter.Offset = uint64((page - 1) * pageSize)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Журнал не прочитан", zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []entities.AuditEntry{}
	}
	return &AuditPage{Items: items, Page: page, PageSize: pageSize, TotalItems: int(total)}, nil
}
