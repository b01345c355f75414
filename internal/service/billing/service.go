package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/voicedrop/voicedrop-api/internal/config"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

type Service struct {
	orgRepo repository.OrganizationRepository
	cfg     config.StripeConfig
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewService(orgRepo repository.OrganizationRepository, cfg config.StripeConfig,
	m *metrics.Metrics, logger *zerolog.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		orgRepo: orgRepo,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// CreateCheckoutSession starts a hosted subscription checkout. The
// organization id and tier ride along as metadata so the completion webhook
// can resolve the tenant without a provider customer reference.
func (s *Service) CreateCheckoutSession(ctx context.Context, org *model.Organization, userEmail, priceID string) (*model.CheckoutResponse, error) {
	tier, ok := s.cfg.PriceTiers[priceID]
	if !ok {
		return nil, apperrors.Validation("unknown price", nil)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(userEmail),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("organization_id", org.ID.String())
	params.AddMetadata("tier", tier)

	sess, err := session.New(params)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create checkout session: %w", err))
	}

	return &model.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// HandleWebhook verifies the event signature and applies the event. No state
// is touched before the signature check passes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.cfg.WebhookSecret)
	if err != nil {
		if s.metrics != nil {
			s.metrics.BillingEvents.WithLabelValues("unknown", "bad_signature").Inc()
		}
		return apperrors.Signature(err)
	}
	return s.ApplyEvent(ctx, event)
}

// ApplyEvent maps a verified billing event to a tenant mutation. Event kinds
// the system does not model are accepted and ignored, so the provider never
// sees delivery failures for them. Re-applying an event is safe: every
// mutation overwrites state rather than accumulating it.
func (s *Service) ApplyEvent(ctx context.Context, event stripe.Event) error {
	var err error
	switch string(event.Type) {
	case "checkout.session.completed":
		err = s.applyCheckoutCompleted(ctx, event)
	case "invoice.payment_succeeded":
		err = s.applyPaymentSucceeded(ctx, event)
	case "invoice.payment_failed":
		err = s.applyPaymentFailed(ctx, event)
	case "customer.subscription.deleted":
		err = s.applySubscriptionDeleted(ctx, event)
	default:
		s.logger.Debug().Str("type", string(event.Type)).Msg("ignoring unhandled billing event")
		if s.metrics != nil {
			s.metrics.BillingEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		}
		return nil
	}

	status := "applied"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.BillingEvents.WithLabelValues(string(event.Type), status).Inc()
	}
	return err
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return apperrors.Validation("malformed checkout session payload", err)
	}

	orgID, err := parseOrgID(sess.Metadata)
	if err != nil {
		s.logger.Warn().Str("session_id", sess.ID).Msg("checkout session without organization metadata")
		return nil
	}
	tier := sess.Metadata["tier"]
	limit, ok := model.TierVoicemailLimits[tier]
	if !ok {
		s.logger.Warn().Str("tier", tier).Msg("checkout session with unknown tier")
		return nil
	}

	var customerID, subscriptionID string
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	err = s.orgRepo.ActivateSubscription(ctx, orgID, tier, limit, customerID, subscriptionID, time.Now().AddDate(0, 1, 0))
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn().Str("organization_id", orgID.String()).Msg("checkout completed for unknown organization")
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	s.logger.Info().Str("organization_id", orgID.String()).Str("tier", tier).Msg("subscription activated")
	return nil
}

func (s *Service) applyPaymentSucceeded(ctx context.Context, event stripe.Event) error {
	invoice, err := parseInvoice(event)
	if err != nil {
		return err
	}
	if invoice.Subscription == nil {
		return nil
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	if invoice.PeriodEnd > 0 {
		periodEnd = time.Unix(invoice.PeriodEnd, 0)
	}

	err = s.orgRepo.UpdateSubscriptionStatus(ctx, invoice.Subscription.ID, model.SubscriptionStatusActive, &periodEnd)
	return s.ignoreUnknownSubscription(err, invoice.Subscription.ID)
}

func (s *Service) applyPaymentFailed(ctx context.Context, event stripe.Event) error {
	invoice, err := parseInvoice(event)
	if err != nil {
		return err
	}
	if invoice.Subscription == nil {
		return nil
	}

	err = s.orgRepo.UpdateSubscriptionStatus(ctx, invoice.Subscription.ID, model.SubscriptionStatusPastDue, nil)
	return s.ignoreUnknownSubscription(err, invoice.Subscription.ID)
}

func (s *Service) applySubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return apperrors.Validation("malformed subscription payload", err)
	}

	err := s.orgRepo.CancelSubscription(ctx, sub.ID)
	return s.ignoreUnknownSubscription(err, sub.ID)
}

func (s *Service) ignoreUnknownSubscription(err error, subscriptionID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn().Str("subscription_id", subscriptionID).Msg("billing event for unknown subscription")
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func parseInvoice(event stripe.Event) (*stripe.Invoice, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, apperrors.Validation("malformed invoice payload", err)
	}
	return &invoice, nil
}

func parseOrgID(metadata map[string]string) (uuid.UUID, error) {
	return uuid.Parse(metadata["organization_id"])
}
