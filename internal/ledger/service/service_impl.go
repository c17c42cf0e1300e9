package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  ledgerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  ledgerdomain.Repository
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) EnsureUser(ctx context.Context, email string) (*ledgerdomain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ledgerdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	user := &ledgerdomain.User{
		ID:        s.genID.Generate(),
		Email:     email,
		Credits:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inserted, err := s.repo.InsertUser(ctx, s.db, user)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.log.Info("user created", zap.String("email", email))
		return user, nil
	}

	existing, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ledgerdomain.ErrUserNotFound
	}
	return existing, nil
}

func (s *Service) Balance(ctx context.Context, email string) (int64, error) {
	email = normalizeEmail(email)
	if email == "" {
		return 0, ledgerdomain.ErrInvalidEmail
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, nil
	}
	return user.Credits, nil
}

// Award runs the order insert and the balance increment in one transaction.
// The unique checkout_id constraint makes a concurrent duplicate delivery
// lose the insert and commit nothing.
func (s *Service) Award(ctx context.Context, req ledgerdomain.AwardRequest) error {
	req.CheckoutID = strings.TrimSpace(req.CheckoutID)
	req.Email = normalizeEmail(req.Email)
	if req.CheckoutID == "" || req.Email == "" {
		return ledgerdomain.ErrInvalidEmail
	}
	if req.Credits <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ledgerdomain.ErrUserNotFound
	}

	order := &ledgerdomain.CreditOrder{
		ID:             s.genID.Generate(),
		CheckoutID:     req.CheckoutID,
		UserID:         user.ID,
		ProductID:      strings.TrimSpace(req.ProductID),
		CreditsAwarded: req.Credits,
		Status:         ledgerdomain.OrderStatusCompleted,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertOrder(ctx, tx, order)
		if err != nil {
			return err
		}
		if !inserted {
			return ledgerdomain.ErrOrderAlreadyProcessed
		}
		return s.repo.AddCredits(ctx, tx, user.ID, req.Credits)
	})
	if err != nil {
		return err
	}

	s.log.Info("credits awarded",
		zap.String("checkout_id", req.CheckoutID),
		zap.String("email", req.Email),
		zap.Int64("credits", req.Credits),
	)
	return nil
}

func (s *Service) Debit(ctx context.Context, email string, cost int64) error {
	email = normalizeEmail(email)
	if email == "" {
		return ledgerdomain.ErrInvalidEmail
	}
	if cost <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}

	debited, err := s.repo.DebitCredits(ctx, s.db, email, cost)
	if err != nil {
		return err
	}
	if !debited {
		return ledgerdomain.ErrInsufficientCredits
	}
	return nil
}

func (s *Service) Refund(ctx context.Context, email string, cost int64) error {
	email = normalizeEmail(email)
	if email == "" {
		return ledgerdomain.ErrInvalidEmail
	}
	if cost <= 0 {
		return ledgerdomain.ErrInvalidAmount
	}

	refunded, err := s.repo.AddCreditsByEmail(ctx, s.db, email, cost)
	if err != nil {
		return err
	}
	if !refunded {
		return ledgerdomain.ErrUserNotFound
	}
	s.log.Info("credits refunded", zap.String("email", email), zap.Int64("credits", cost))
	return nil
}

func (s *Service) RecordGeneration(ctx context.Context, gen *ledgerdomain.ToolGeneration) error {
	if gen == nil {
		return ledgerdomain.ErrInvalidAmount
	}
	gen.UserEmail = normalizeEmail(gen.UserEmail)
	if gen.UserEmail == "" {
		return ledgerdomain.ErrInvalidEmail
	}
	if gen.ID == 0 {
		gen.ID = s.genID.Generate()
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}
	return s.repo.InsertGeneration(ctx, s.db, gen)
}

func (s *Service) History(ctx context.Context, email, toolName string, limit int) ([]ledgerdomain.ToolGeneration, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ledgerdomain.ErrInvalidEmail
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.repo.ListGenerations(ctx, s.db, email, strings.TrimSpace(toolName), limit)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
