package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	obsmetrics "github.com/dreamnest/dreamnest/internal/observability/metrics"
	"github.com/dreamnest/dreamnest/internal/providers/openrouter"
	"github.com/dreamnest/dreamnest/internal/storage"
	toolsdomain "github.com/dreamnest/dreamnest/internal/tools/domain"
)

const historyLimit = 50

// Generator produces one image from a multimodal prompt.
type Generator interface {
	GenerateImage(ctx context.Context, parts []openrouter.ImagePart) (string, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Ledger     ledgerdomain.Service
	Generator  Generator
	Store      storage.ObjectStore
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	ledger     ledgerdomain.Service
	generator  Generator
	store      storage.ObjectStore
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) toolsdomain.Service {
	return &Service{
		log:        p.Log.Named("tools.service"),
		ledger:     p.Ledger,
		generator:  p.Generator,
		store:      p.Store,
		obsMetrics: p.ObsMetrics,
	}
}

// GenerateBaby debits the user first and refunds if the model call fails,
// so a generation is never produced without being paid for.
func (s *Service) GenerateBaby(ctx context.Context, req toolsdomain.GenerateBabyRequest) (*toolsdomain.GenerationResult, error) {
	if strings.TrimSpace(req.MomImage) == "" || strings.TrimSpace(req.DadImage) == "" {
		return nil, toolsdomain.ErrMissingParentImage
	}
	if req.Gender != "girl" && req.Gender != "boy" {
		return nil, toolsdomain.ErrInvalidGender
	}

	cost := toolsdomain.BabyGenerationCost
	if err := s.ledger.Debit(ctx, req.Email, cost); err != nil {
		return nil, err
	}
	s.obsMetrics.RecordCreditsDebited(ctx, toolsdomain.ToolBabyGenerator, cost)

	dataURL, err := s.generator.GenerateImage(ctx, []openrouter.ImagePart{
		{Text: buildBabyPrompt(req.Gender)},
		{ImageURL: req.MomImage},
		{ImageURL: req.DadImage},
	})
	if err != nil {
		s.log.Error("image generation failed", zap.Error(err))
		if refundErr := s.ledger.Refund(ctx, req.Email, cost); refundErr != nil {
			s.log.Error("refund after failed generation also failed",
				zap.String("email", req.Email),
				zap.Error(refundErr),
			)
		}
		return nil, toolsdomain.ErrGenerationFailed
	}

	generatedAt := time.Now().UTC()
	imageURL := s.persistImage(ctx, dataURL, req.Gender, generatedAt)

	metadata, _ := json.Marshal(map[string]string{"gender": req.Gender})
	gen := &ledgerdomain.ToolGeneration{
		UserEmail:   req.Email,
		ToolName:    toolsdomain.ToolBabyGenerator,
		ResultURL:   imageURL,
		Metadata:    datatypes.JSON(metadata),
		CreditsCost: cost,
		CreatedAt:   generatedAt,
	}
	if err := s.ledger.RecordGeneration(ctx, gen); err != nil {
		// The user already has the image; history is best effort.
		s.log.Error("recording generation failed", zap.Error(err))
	}
	s.obsMetrics.RecordGeneration(ctx, toolsdomain.ToolBabyGenerator)

	return &toolsdomain.GenerationResult{
		ImageURL:    imageURL,
		Gender:      req.Gender,
		GeneratedAt: generatedAt,
	}, nil
}

func (s *Service) History(ctx context.Context, email string, limit int) ([]toolsdomain.HistoryEntry, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	gens, err := s.ledger.History(ctx, email, toolsdomain.ToolBabyGenerator, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]toolsdomain.HistoryEntry, 0, len(gens))
	for _, gen := range gens {
		var meta struct {
			Gender string `json:"gender"`
		}
		_ = json.Unmarshal(gen.Metadata, &meta)

		entries = append(entries, toolsdomain.HistoryEntry{
			ImageURL:    gen.ResultURL,
			Gender:      meta.Gender,
			CreditsCost: gen.CreditsCost,
			CreatedAt:   gen.CreatedAt,
		})
	}
	return entries, nil
}

// persistImage uploads the generated data URL to object storage. When the
// store is unavailable the data URL itself is returned so the caller still
// gets an image.
func (s *Service) persistImage(ctx context.Context, dataURL, gender string, at time.Time) string {
	data, mimeType, err := decodeDataURL(dataURL)
	if err != nil {
		return dataURL
	}

	ext := "png"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	key := fmt.Sprintf("baby-generations/%d-%s.%s", at.UnixMilli(), gender, ext)

	url, err := s.store.Upload(ctx, key, data, mimeType)
	if err != nil {
		s.log.Warn("object upload failed, serving inline image", zap.Error(err))
		return dataURL
	}
	return url
}

var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

func decodeDataURL(dataURL string) ([]byte, string, error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return nil, "", fmt.Errorf("not a base64 data url")
	}
	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return nil, "", err
	}
	return data, match[1], nil
}

func buildBabyPrompt(gender string) string {
	clothes := "sweet baby clothes in neutral or soft pastel tones"
	noun := "girl"
	if gender == "boy" {
		clothes = "handsome baby clothes in neutral or soft blue tones"
		noun = "boy"
	}
	return fmt.Sprintf("A hyper-realistic portrait photograph of a cute baby %s, around 1 to 2 years old. "+
		"The baby perfectly inherits and blends the facial features, eye shape, skin tone, and hair color "+
		"of the man and woman in the reference images. Bright expressive eyes, adorable gentle smile, "+
		"soft natural baby skin texture, chubby cheeks. Dressed in simple, %s. "+
		"Soft studio lighting, 85mm portrait lens, blurred neutral background, 8k resolution, "+
		"highly detailed, photorealistic.", noun, clothes)
}
