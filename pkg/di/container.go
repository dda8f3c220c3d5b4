// Package di assembles the application object graph. Everything is
// constructed once here and injected; no package keeps ambient client state.
package di

import (
	"context"
	"fmt"

	"wiki-character-chat/backend/internal/ai"
	"wiki-character-chat/backend/internal/blob"
	"wiki-character-chat/backend/internal/repository"
	"wiki-character-chat/backend/internal/service"
	"wiki-character-chat/backend/internal/wiki"
	"wiki-character-chat/backend/pkg/config"
	"wiki-character-chat/backend/pkg/logger"
	"wiki-character-chat/backend/pkg/observability"
	"wiki-character-chat/backend/pkg/secrets"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  *logger.Logger
	Redis   *redis.Client
	Secrets secrets.Manager
	Metrics *observability.Metrics

	TextSynthesizer  *ai.GeminiText
	ImageSynthesizer *ai.ImagenClient
	WikiClient       wiki.Client
	PortraitStore    blob.Store

	CharacterRepo repository.CharacterRepository
	ChatRepo      repository.ChatRepository

	CreationService     *service.CreationService
	CharacterService    *service.CharacterService
	ConversationService *service.ConversationService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Container, error) {
	secretManager, err := secrets.NewVaultManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets manager: %w", err)
	}

	apiKey := secretManager.GetSecretWithDefault(ctx, "gemini_api_key", cfg.Gemini.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	textSynth, err := ai.NewGeminiText(ctx, apiKey, cfg.Gemini.TextModel, cfg.Gemini.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create text synthesizer: %w", err)
	}

	imageSynth, err := ai.NewImagenClient(ctx, apiKey, cfg.Gemini.ImageModel, cfg.Gemini.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create image synthesizer: %w", err)
	}

	portraitStore, err := blob.NewFileStore(cfg.Blob.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create portrait store: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	metrics, err := observability.New("wiki-character-chat")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	wikiClient := wiki.NewHTTPClient(cfg.Generation.ExtractCharCap)

	characterRepo := repository.NewGormCharacterRepository(db)
	chatRepo := repository.NewGormChatRepository(db)

	profileSynth := service.NewProfileSynthesizer(textSynth, cfg.Generation.ArticleCharBudget, log)
	portraitSynth := service.NewPortraitSynthesizer(imageSynth, portraitStore, log)

	return &Container{
		Config:           cfg,
		DB:               db,
		Logger:           log,
		Redis:            redisClient,
		Secrets:          secretManager,
		Metrics:          metrics,
		TextSynthesizer:  textSynth,
		ImageSynthesizer: imageSynth,
		WikiClient:       wikiClient,
		PortraitStore:    portraitStore,
		CharacterRepo:    characterRepo,
		ChatRepo:         chatRepo,
		CreationService: service.NewCreationService(
			characterRepo, wikiClient, profileSynth, portraitSynth, metrics, log),
		CharacterService: service.NewCharacterService(characterRepo),
		ConversationService: service.NewConversationService(
			chatRepo, characterRepo, textSynth, cfg.Generation.ChatHistoryWindow, metrics, log),
	}, nil
}

// Close releases client resources held by the container.
func (c *Container) Close(ctx context.Context) error {
	if err := c.TextSynthesizer.Close(); err != nil {
		return err
	}
	if err := c.Redis.Close(); err != nil {
		return err
	}
	return c.Metrics.Shutdown(ctx)
}
