package ai

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// ImageSynthesizer is a stateless wrapper around an image-generation model.
// A successful call may still return zero images.
type ImageSynthesizer interface {
	Generate(ctx context.Context, prompt string, count int) ([][]byte, error)
}

// ImagenClient generates raster portraits with the Imagen API.
type ImagenClient struct {
	client      *genai.Client
	model       string
	callTimeout time.Duration
}

// NewImagenClient builds an image synthesizer bound to one model.
func NewImagenClient(ctx context.Context, apiKey, model string, callTimeout time.Duration) (*ImagenClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create imagen client: %w", err)
	}

	return &ImagenClient{
		client:      client,
		model:       model,
		callTimeout: callTimeout,
	}, nil
}

// Generate performs a single model call requesting count images and returns
// their raw bytes. The slice may be empty when the model declines to
// produce an image.
func (c *ImagenClient) Generate(ctx context.Context, prompt string, count int) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.client.Models.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
	})
	if err != nil {
		return nil, fmt.Errorf("imagen generation failed: %w", err)
	}

	images := make([][]byte, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			images = append(images, generated.Image.ImageBytes)
		}
	}
	return images, nil
}
