// Package genai adapts Google's generative models into the content
// generator the chest service consumes: chest descriptions, loot items
// and artwork.
package genai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gen "github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/osse101/LootChestBot_Go/internal/chest"
	"github.com/osse101/LootChestBot_Go/internal/logger"
)

const (
	// DefaultTextModel generates descriptions and loot item text.
	DefaultTextModel = "gemini-2.5-pro"
	// DefaultImageModel generates chest and item artwork.
	DefaultImageModel = "gemini-2.0-flash-exp-image-generation"

	descriptionTemperature = 0.85
	lootTemperature        = 0.9
)

// Generator implements chest.Generator on top of the Gemini API.
type Generator struct {
	client     *gen.Client
	textModel  string
	imageModel string
	imageDir   string
}

// New creates a Generator. imageDir receives generated artwork files.
func New(ctx context.Context, apiKey, imageDir string) (*Generator, error) {
	client, err := gen.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative client: %w", err)
	}
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	return &Generator{
		client:     client,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		imageDir:   imageDir,
	}, nil
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	return g.client.Close()
}

// ChestDescription writes a short atmospheric description for a chest of
// the given rarity, steering away from recently used descriptions.
func (g *Generator) ChestDescription(ctx context.Context, rarity string, avoid []string) (string, error) {
	prompt := fmt.Sprintf("Write a fantasy-style loot chest description for a %s rarity chest. "+
		"Do not describe specific items. Make it vivid and atmospheric. Keep under 100 words.",
		strings.ToLower(rarity))
	if len(avoid) > 0 {
		// Only the tail of the history fits a reasonable prompt.
		recent := avoid
		if len(recent) > 20 {
			recent = recent[len(recent)-20:]
		}
		prompt += "\nAvoid resembling any of these previous descriptions:\n- " + strings.Join(recent, "\n- ")
	}

	model := g.client.GenerativeModel(g.textModel)
	model.SetTemperature(descriptionTemperature)
	resp, err := model.GenerateContent(ctx, gen.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("description generation failed: %w", err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", fmt.Errorf("description generation returned no text")
	}
	return text, nil
}

// ChestImage renders chest artwork and returns the stored file path.
func (g *Generator) ChestImage(ctx context.Context, rarity, description string) (string, error) {
	prompt := fmt.Sprintf("A fantasy loot chest of %s rarity. %s No text or labels in the image.", rarity, description)
	return g.generateImage(ctx, prompt)
}

// LootItems generates count loot items for a chest of the given rarity.
// Model output that does not match the expected pattern degrades to
// placeholder fields instead of failing the whole open.
func (g *Generator) LootItems(ctx context.Context, rarity string, count int) ([]chest.GeneratedItem, error) {
	log := logger.FromContext(ctx)

	prompt := fmt.Sprintf(`Create %d unique fantasy loot items for a %s chest. Each should include:
- Name (1-4 words)
- Description (max 40 words)
- Score: number between 10000-99999

Format:
1. "Item Name" (Rarity: %s | Score: XXXXX)
Description: ...`, count, rarity, rarity)

	model := g.client.GenerativeModel(g.textModel)
	model.SetTemperature(lootTemperature)
	resp, err := model.GenerateContent(ctx, gen.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("loot generation failed: %w", err)
	}

	items := ParseLootItems(responseText(resp), rarity, count)

	for i := range items {
		imagePrompt := items[i].Description + " Fantasy item. No text, no characters."
		ref, err := g.generateImage(ctx, imagePrompt)
		if err != nil {
			// Artwork is cosmetic; a missing image must not fail the open.
			log.Warn("Item image generation failed", "item", items[i].Name, "error", err)
			continue
		}
		items[i].ImageRef = ref
	}
	return items, nil
}

// generateImage asks the image model for inline image data and stores the
// first blob it returns.
func (g *Generator) generateImage(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.imageModel)
	resp, err := model.GenerateContent(ctx, gen.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("image generation returned no candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		blob, ok := part.(gen.Blob)
		if !ok {
			continue
		}
		path := filepath.Join(g.imageDir, uuid.NewString()+".png")
		if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
			return "", fmt.Errorf("failed to store image: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("image generation returned no image data")
}

func responseText(resp *gen.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(gen.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}
