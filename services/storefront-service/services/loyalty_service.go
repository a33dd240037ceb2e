package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/contracts"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

// LoyaltyService owns points, the every-tenth-order discount, referrals and
// scratch cards.
type LoyaltyService interface {
	AvailableDiscount(ctx context.Context, customerID string) models.Discount
	ApplyReferral(ctx context.Context, customerID, code string) *ServiceError
	ScratchCards(ctx context.Context, customerID string) ([]models.ScratchCard, *ServiceError)
	Scratch(ctx context.Context, customerID, cardID string) (*models.ScratchResult, *ServiceError)
	// RecordOrder credits a placed order and the points it earned.
	RecordOrder(ctx context.Context, customerID string, total, points int64) error
}

type loyaltyServiceImpl struct {
	customers repository.CustomerRepository
	cards     repository.ScratchCardRepository
	events    EventPublisher
	rng       Randomizer
	logger    *zap.Logger
	now       func() time.Time
}

func NewLoyaltyService(
	customers repository.CustomerRepository,
	cards repository.ScratchCardRepository,
	events EventPublisher,
	rng Randomizer,
	logger *zap.Logger,
) LoyaltyService {
	if rng == nil {
		rng = defaultRandomizer{}
	}
	return &loyaltyServiceImpl{
		customers: customers,
		cards:     cards,
		events:    events,
		rng:       rng,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *loyaltyServiceImpl) AvailableDiscount(ctx context.Context, customerID string) models.Discount {
	if customerID == "" {
		return models.Discount{}
	}
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load customer for discount", zap.Error(err))
		}
		return models.Discount{}
	}
	return DiscountFor(c.TotalOrders)
}

func (s *loyaltyServiceImpl) ApplyReferral(ctx context.Context, customerID, code string) *ServiceError {
	code = strings.ToUpper(strings.TrimSpace(code))

	referee, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(http.StatusNotFound, msgCustomerNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to load customer", zap.Error(err))
		return internalError()
	}
	if referee.ReferredBy != "" {
		return newError(http.StatusConflict, "Vous avez déjà utilisé un code de parrainage")
	}

	referrer, err := s.customers.FindByReferralCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(http.StatusBadRequest, "Code de parrainage invalide")
	}
	if err != nil {
		s.logger.Error("Failed to load referrer", zap.Error(err))
		return internalError()
	}
	if referrer.ID == referee.ID {
		return newError(http.StatusBadRequest, "Vous ne pouvez pas utiliser votre propre code")
	}

	referrerID := referrer.ID.Hex()
	refereeCard, err := s.issueCard(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to issue referee scratch card", zap.Error(err))
		return internalError()
	}
	referrerCard, err := s.issueCard(ctx, referrerID)
	if err != nil {
		s.logger.Error("Failed to issue referrer scratch card", zap.Error(err))
		s.withdrawCards(ctx, refereeCard)
		return internalError()
	}

	// The referral only counts once both cards exist.
	if err := s.customers.SetReferredBy(ctx, customerID, referrerID); err != nil {
		s.withdrawCards(ctx, refereeCard, referrerCard)
		if errors.Is(err, repository.ErrConflict) {
			return newError(http.StatusConflict, "Vous avez déjà utilisé un code de parrainage")
		}
		s.logger.Error("Failed to set referrer", zap.Error(err))
		return internalError()
	}

	if err := s.customers.IncrementReferralCount(ctx, referrerID); err != nil {
		s.logger.Warn("Failed to increment referral count", zap.String("referrer_id", referrerID), zap.Error(err))
	}

	s.events.Publish(ctx, contracts.EventReferralApplied, contracts.ReferralPayload{
		RefereeName:    referee.Name,
		RefereePhone:   referee.Phone,
		ReferrerName:   referrer.Name,
		ReferrerPhone:  referrer.Phone,
		RefereeReward:  refereeCard.RewardLabel,
		ReferrerReward: referrerCard.RewardLabel,
	})
	s.logger.Info("Referral applied", zap.String("customer_id", customerID), zap.String("referrer_id", referrerID))
	return nil
}

func (s *loyaltyServiceImpl) issueCard(ctx context.Context, customerID string) (*models.ScratchCard, error) {
	reward := DrawReward(s.rng)
	card := &models.ScratchCard{
		CustomerID:  customerID,
		Reward:      reward,
		RewardLabel: reward.Label(),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *loyaltyServiceImpl) withdrawCards(ctx context.Context, cards ...*models.ScratchCard) {
	for _, card := range cards {
		if err := s.cards.Delete(ctx, card.ID); err != nil {
			s.logger.Error("Failed to withdraw scratch card",
				zap.String("card_id", card.ID.Hex()), zap.Error(err))
		}
	}
}

func (s *loyaltyServiceImpl) ScratchCards(ctx context.Context, customerID string) ([]models.ScratchCard, *ServiceError) {
	cards, err := s.cards.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list scratch cards", zap.Error(err))
		return nil, internalError()
	}
	return cards, nil
}

func (s *loyaltyServiceImpl) Scratch(ctx context.Context, customerID, cardID string) (*models.ScratchResult, *ServiceError) {
	card, err := s.cards.FindByID(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusNotFound, "Ticket introuvable")
	}
	if err != nil {
		s.logger.Error("Failed to load scratch card", zap.Error(err))
		return nil, internalError()
	}
	if card.CustomerID != customerID {
		return nil, newError(http.StatusForbidden, "Ce ticket ne vous appartient pas")
	}

	alreadyScratched := newError(http.StatusConflict, "Ce ticket a déjà été gratté")
	if card.Scratched {
		return nil, alreadyScratched
	}
	if err := s.cards.MarkScratched(ctx, cardID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, alreadyScratched
		}
		s.logger.Error("Failed to scratch card", zap.Error(err))
		return nil, internalError()
	}

	return &models.ScratchResult{Success: true, Reward: card.Reward, RewardLabel: card.RewardLabel}, nil
}

func (s *loyaltyServiceImpl) RecordOrder(ctx context.Context, customerID string, total, points int64) error {
	return s.customers.RecordOrder(ctx, customerID, total, points)
}
