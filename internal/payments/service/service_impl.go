package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	obsmetrics "github.com/dreamnest/dreamnest/internal/observability/metrics"
	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Adapter    paymentdomain.Adapter
	Ledger     ledgerdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	adapter    paymentdomain.Adapter
	ledger     ledgerdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		log:        p.Log.Named("payments.service"),
		adapter:    p.Adapter,
		ledger:     p.Ledger,
		obsMetrics: p.ObsMetrics,
	}
}

// IngestWebhook verifies, parses and settles one provider delivery. The
// signature check runs before any payload inspection. Parse failures and
// unknown users surface as sentinel errors so the transport can acknowledge
// them without triggering provider retries.
func (s *Service) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.Error(err))
		s.obsMetrics.RecordWebhookEvent(ctx, "unknown", "rejected_signature")
		return err
	}

	event, err := s.adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.obsMetrics.RecordWebhookEvent(ctx, "other", "ignored")
			return err
		}
		s.log.Warn("webhook payload unreadable", zap.Error(err))
		s.obsMetrics.RecordWebhookEvent(ctx, "unknown", "malformed")
		return err
	}

	err = s.ledger.Award(ctx, ledgerdomain.AwardRequest{
		CheckoutID: event.CheckoutID,
		Email:      event.Email,
		ProductID:  event.ProductID,
		Credits:    event.Credits,
	})
	switch {
	case err == nil:
		s.log.Info("checkout settled",
			zap.String("checkout_id", event.CheckoutID),
			zap.String("package_key", event.PackageKey),
			zap.Int64("credits", event.Credits),
		)
		s.obsMetrics.RecordWebhookEvent(ctx, paymentdomain.EventTypeCheckoutCompleted, "awarded")
		s.obsMetrics.RecordCreditsAwarded(ctx, event.PackageKey, event.Credits)
		return nil
	case errors.Is(err, ledgerdomain.ErrOrderAlreadyProcessed):
		s.log.Info("checkout replayed, no-op", zap.String("checkout_id", event.CheckoutID))
		s.obsMetrics.RecordWebhookEvent(ctx, paymentdomain.EventTypeCheckoutCompleted, "duplicate")
		return paymentdomain.ErrEventAlreadyProcessed
	case errors.Is(err, ledgerdomain.ErrUserNotFound):
		s.log.Warn("checkout references unknown user",
			zap.String("checkout_id", event.CheckoutID),
			zap.String("email", event.Email),
		)
		s.obsMetrics.RecordWebhookEvent(ctx, paymentdomain.EventTypeCheckoutCompleted, "unknown_user")
		return paymentdomain.ErrUnknownUser
	default:
		s.log.Error("credit award failed",
			zap.String("checkout_id", event.CheckoutID),
			zap.Error(err),
		)
		s.obsMetrics.RecordWebhookEvent(ctx, paymentdomain.EventTypeCheckoutCompleted, "error")
		return err
	}
}
