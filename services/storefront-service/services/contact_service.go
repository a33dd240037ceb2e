package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/common/contracts"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

type ContactService interface {
	Submit(ctx context.Context, req *models.CreateContactRequest) (*models.ContactMessage, *ServiceError)
	List(ctx context.Context, status models.ContactStatus, page, limit int) ([]models.ContactMessage, int64, *ServiceError)
	UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) *ServiceError
}

type contactServiceImpl struct {
	repo    repository.ContactRepository
	events  EventPublisher
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewContactService(repo repository.ContactRepository, events EventPublisher, metrics MetricsRecorder, logger *zap.Logger) ContactService {
	return &contactServiceImpl{repo: repo, events: events, metrics: metrics, logger: logger}
}

func (s *contactServiceImpl) Submit(ctx context.Context, req *models.CreateContactRequest) (*models.ContactMessage, *ServiceError) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactStatusNew,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		msg.Phone = &phone
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to store contact message", zap.Error(err))
		return nil, internalError()
	}

	payload := contracts.ContactPayload{
		MessageID: msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
	}
	if msg.Phone != nil {
		payload.Phone = *msg.Phone
	}
	s.events.Publish(ctx, contracts.EventContactReceived, payload)
	recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricContactMessages, nil)
	})
	return msg, nil
}

func (s *contactServiceImpl) List(ctx context.Context, status models.ContactStatus, page, limit int) ([]models.ContactMessage, int64, *ServiceError) {
	if status != "" && !status.Valid() {
		return nil, 0, newError(http.StatusBadRequest, "Statut invalide")
	}
	msgs, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("Failed to list contact messages", zap.Error(err))
		return nil, 0, internalError()
	}
	if msgs == nil {
		msgs = []models.ContactMessage{}
	}
	return msgs, total, nil
}

func (s *contactServiceImpl) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) *ServiceError {
	if !status.Valid() {
		return newError(http.StatusBadRequest, "Statut invalide")
	}
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(http.StatusNotFound, "Message introuvable")
	}
	if err != nil {
		s.logger.Error("Failed to update contact status", zap.Uint("message_id", id), zap.Error(err))
		return internalError()
	}
	return nil
}
