package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/common/contracts"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

const (
	OTPTTL = 10 * time.Minute
	// MaxOTPAttempts wrong codes burn the pending code.
	MaxOTPAttempts = 5
)

type OTPSendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DevCode string `json:"devCode,omitempty"`
}

type OTPVerifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
}

// PhoneLimiter throttles OTP requests per phone number.
type PhoneLimiter interface {
	Allow(key string) bool
}

type OTPService interface {
	Send(ctx context.Context, phone string) (*OTPSendResult, *ServiceError)
	Verify(ctx context.Context, phone, code string) (*OTPVerifyResult, *ServiceError)
	// Clear withdraws every code for phone, given the pending code.
	Clear(ctx context.Context, phone, code string) *ServiceError
}

type OTPServiceConfig struct {
	// ExposeCode returns the code in the send response, for development.
	ExposeCode bool
}

type otpServiceImpl struct {
	otps      repository.OTPRepository
	customers repository.CustomerRepository
	events    EventPublisher
	limiter   PhoneLimiter
	metrics   MetricsRecorder
	rng       Randomizer
	cfg       OTPServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewOTPService(
	otps repository.OTPRepository,
	customers repository.CustomerRepository,
	events EventPublisher,
	limiter PhoneLimiter,
	metrics MetricsRecorder,
	rng Randomizer,
	cfg OTPServiceConfig,
	logger *zap.Logger,
) OTPService {
	if rng == nil {
		rng = defaultRandomizer{}
	}
	return &otpServiceImpl{
		otps:      otps,
		customers: customers,
		events:    events,
		limiter:   limiter,
		metrics:   metrics,
		rng:       rng,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *otpServiceImpl) Send(ctx context.Context, rawPhone string) (*OTPSendResult, *ServiceError) {
	phone := NormalizePhone(rawPhone)

	if _, err := s.customers.FindByPhone(ctx, phone); err == nil {
		return nil, newError(http.StatusConflict, "Ce numéro de téléphone est déjà enregistré")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to check phone", zap.Error(err))
		return nil, internalError()
	}

	if s.limiter != nil && !s.limiter.Allow(phone) {
		return nil, newError(http.StatusTooManyRequests, "Trop de demandes de code. Réessayez dans quelques instants.")
	}

	now := s.now().UTC()
	otp := &models.OTPCode{
		Phone:     phone,
		Code:      GenerateOTPCode(s.rng),
		ExpiresAt: now.Add(OTPTTL),
		CreatedAt: now,
	}

	if err := s.otps.DeleteByPhone(ctx, phone); err != nil {
		s.logger.Error("Failed to delete previous codes", zap.Error(err))
		return nil, internalError()
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		s.logger.Error("Failed to store code", zap.Error(err))
		return nil, internalError()
	}

	s.events.Publish(ctx, contracts.EventOTPRequested, contracts.OTPRequestedPayload{
		Phone:     phone,
		Code:      otp.Code,
		ExpiresAt: otp.ExpiresAt,
	})
	recordAsync(s.metrics, func(ctx context.Context, m MetricsRecorder) {
		_ = m.RecordCount(ctx, aws_pkg.MetricOTPSent, nil)
	})
	s.logger.Info("Verification code issued", zap.String("phone", phone))

	res := &OTPSendResult{
		Success: true,
		Message: fmt.Sprintf("Code de vérification envoyé au %s via WhatsApp", phone),
	}
	if s.cfg.ExposeCode {
		res.DevCode = otp.Code
	}
	return res, nil
}

func (s *otpServiceImpl) Verify(ctx context.Context, rawPhone, code string) (*OTPVerifyResult, *ServiceError) {
	if len(code) != 6 {
		return nil, newError(http.StatusBadRequest, "Le code doit contenir 6 chiffres")
	}
	phone := NormalizePhone(rawPhone)

	otp, err := s.otps.FindByPhoneAndCode(ctx, phone, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.wrongCode(ctx, phone)
	}
	if err != nil {
		s.logger.Error("Failed to load code", zap.Error(err))
		return nil, internalError()
	}

	if otp.ExpiresAt.Before(s.now()) {
		if err := s.otps.Delete(ctx, otp.ID); err != nil {
			s.logger.Warn("Failed to delete expired code", zap.Error(err))
		}
		return nil, newError(http.StatusBadRequest, "Code de vérification expiré. Demandez un nouveau code.")
	}

	if err := s.otps.MarkVerified(ctx, otp.ID); err != nil {
		s.logger.Error("Failed to mark code verified", zap.Error(err))
		return nil, internalError()
	}

	return &OTPVerifyResult{Success: true, Message: "Numéro vérifié avec succès !", Phone: phone}, nil
}

func (s *otpServiceImpl) wrongCode(ctx context.Context, phone string) *ServiceError {
	attempts, err := s.otps.RecordFailedAttempt(ctx, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Failed to count code attempt", zap.String("phone", phone), zap.Error(err))
	}
	if attempts >= MaxOTPAttempts {
		if err := s.otps.DeleteByPhone(ctx, phone); err != nil {
			s.logger.Error("Failed to burn code", zap.String("phone", phone), zap.Error(err))
		}
		s.logger.Warn("Verification code burned after repeated failures", zap.String("phone", phone))
		return newError(http.StatusTooManyRequests, "Trop de tentatives. Demandez un nouveau code.")
	}
	return newError(http.StatusBadRequest, "Code de vérification invalide")
}

func (s *otpServiceImpl) Clear(ctx context.Context, rawPhone, code string) *ServiceError {
	phone := NormalizePhone(rawPhone)
	if _, err := s.otps.FindByPhoneAndCode(ctx, phone, code); errors.Is(err, repository.ErrNotFound) {
		return s.wrongCode(ctx, phone)
	} else if err != nil {
		s.logger.Error("Failed to load code", zap.Error(err))
		return internalError()
	}
	if err := s.otps.DeleteByPhone(ctx, phone); err != nil {
		s.logger.Error("Failed to clear codes", zap.Error(err))
		return internalError()
	}
	return nil
}
