package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/hoshinolab/fortune-gate/internal/adapter"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/models"
)

// consultService fronts the paid collaborators. Both operations are thin:
// resolve the identity where needed, one outbound call, pass the result
// through.
type consultService struct {
	repository store.IdentityRepository
	oracle     adapter.Oracle
	payments   adapter.PaymentProvider
	logger     *logger.Logger
}

// NewConsultService wires the consultation and checkout operations.
func NewConsultService(repository store.IdentityRepository, oracle adapter.Oracle, payments adapter.PaymentProvider, logger *logger.Logger) ConsultService {
	return &consultService{
		repository: repository,
		oracle:     oracle,
		payments:   payments,
		logger:     logger,
	}
}

// Consult resolves the session's identity for personalisation and forwards
// the topic and question to the text-generation service.
func (c *consultService) Consult(ctx context.Context, identityID string, req models.ConsultationRequest) (string, error) {
	log := logger.FromContext(ctx)

	if identityID == "" || req.Topic == "" {
		return "", ErrInvalidDataProvided
	}

	identity, err := c.repository.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			return "", ErrIdentityNotFound
		}
		log.Err(err).Str("id", identityID).Msg("identity lookup failed")
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}

	reading, err := c.oracle.GenerateReading(ctx, adapter.ReadingRequest{
		Nickname:     identity.Nickname,
		GuardianName: identity.GuardianName,
		Topic:        req.Topic,
		Question:     req.Question,
	})
	if err != nil {
		log.Err(err).Str("topic", req.Topic).Msg("reading generation failed")
		return "", fmt.Errorf("reading generation failed: %w", err)
	}

	return reading, nil
}

// CreatePaymentLink mints a checkout link for the plan.
func (c *consultService) CreatePaymentLink(ctx context.Context, req models.PaymentLinkRequest) (models.PaymentLink, error) {
	log := logger.FromContext(ctx)

	if req.Email == "" || req.PlanKey == "" {
		return models.PaymentLink{}, ErrInvalidDataProvided
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return models.PaymentLink{}, ErrInvalidDataProvided
	}

	link, err := c.payments.CreatePaymentLink(ctx, req.Email, req.PlanKey)
	if err != nil {
		log.Err(err).Str("plan", req.PlanKey).Msg("payment link creation failed")
		return models.PaymentLink{}, fmt.Errorf("payment link creation failed: %w", err)
	}

	return link, nil
}
