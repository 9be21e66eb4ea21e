package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGateway implements Gateway using the Gemini API.
type GeminiGateway struct {
	client     *genai.Client
	model      string
	imageModel string
	prompts    *PromptBuilder
}

func NewGeminiGateway(ctx context.Context, apiKey, model, imageModel string) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGateway{
		client:     client,
		model:      model,
		imageModel: imageModel,
		prompts:    &PromptBuilder{},
	}, nil
}

var grammarSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"original":    {Type: genai.TypeString, Description: "The original text snippet with the error."},
			"suggestion":  {Type: genai.TypeString, Description: "The corrected version of the text snippet."},
			"explanation": {Type: genai.TypeString, Description: "A brief explanation of the grammatical error and the correction."},
		},
		Required: []string{"original", "suggestion", "explanation"},
	},
}

var articleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString, Description: "A compelling, SEO-friendly title for the article."},
		"content": {Type: genai.TypeString, Description: "The full content of the article, formatted in Markdown. It should include headings, paragraphs, and lists where appropriate."},
	},
	Required: []string{"title", "content"},
}

var seoSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"area":       {Type: genai.TypeString, Description: "The area of SEO analysis (e.g., Title, Meta Description, Keyword Density, Readability, Internal Links)."},
			"suggestion": {Type: genai.TypeString, Description: "A concrete suggestion for improvement."},
			"severity":   {Type: genai.TypeString, Description: "The severity of the issue (high, medium, or low)."},
		},
		Required: []string{"area", "suggestion", "severity"},
	},
}

func (g *GeminiGateway) GenerateArticle(ctx context.Context, params ArticleParams) (GeneratedArticle, error) {
	prompt := g.prompts.BuildArticlePrompt(params)
	text, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    articleSchema,
	})
	if err != nil {
		return GeneratedArticle{}, gatewayErr("generate article", err)
	}
	var article GeneratedArticle
	if err := json.Unmarshal([]byte(cleanJSONOutput(text)), &article); err != nil {
		return GeneratedArticle{}, gatewayErr("generate article", fmt.Errorf("parse response: %w", err))
	}
	return article, nil
}

func (g *GeminiGateway) CheckGrammar(ctx context.Context, text string) ([]GrammarSuggestion, error) {
	prompt := g.prompts.BuildGrammarPrompt(text)
	raw, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   grammarSchema,
	})
	if err != nil {
		return nil, gatewayErr("check grammar", err)
	}
	raw = cleanJSONOutput(raw)
	if raw == "" {
		return []GrammarSuggestion{}, nil
	}
	var suggestions []GrammarSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, gatewayErr("check grammar", fmt.Errorf("parse response: %w", err))
	}
	return suggestions, nil
}

func (g *GeminiGateway) ModifyText(ctx context.Context, text string, action ModificationAction) (string, error) {
	if !action.Valid() {
		return "", gatewayErr("modify text", fmt.Errorf("unknown action %q", action))
	}
	prompt := g.prompts.BuildModifyPrompt(text, action)
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", gatewayErr(fmt.Sprintf("%s text", action), err)
	}
	return out, nil
}

func (g *GeminiGateway) GenerateSeoTitle(ctx context.Context, goal, content string) (string, error) {
	prompt := g.prompts.BuildSeoTitlePrompt(goal, content)
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(seoTitleInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", gatewayErr("generate SEO title", err)
	}
	return stripWrappingQuotes(out), nil
}

func (g *GeminiGateway) AnalyzeSeo(ctx context.Context, input SeoInput) ([]SeoSuggestion, error) {
	prompt := g.prompts.BuildSeoAnalysisPrompt(input)
	raw, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   seoSchema,
	})
	if err != nil {
		return nil, gatewayErr("analyze SEO", err)
	}
	raw = cleanJSONOutput(raw)
	if raw == "" {
		return []SeoSuggestion{}, nil
	}
	var suggestions []SeoSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, gatewayErr("analyze SEO", fmt.Errorf("parse response: %w", err))
	}
	return suggestions, nil
}

func (g *GeminiGateway) TranslateText(ctx context.Context, text, language string) (string, error) {
	prompt := g.prompts.BuildTranslatePrompt(text, language)
	out, err := g.generate(ctx, prompt, nil)
	if err != nil {
		return "", gatewayErr("translate text", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiGateway) SummarizeForImagePrompt(ctx context.Context, text string) (string, error) {
	prompt := g.prompts.BuildImageSummaryPrompt(text)
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(imagePromptInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", gatewayErr("create image prompt", err)
	}
	return out, nil
}

func (g *GeminiGateway) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, imageStylePrefix+prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "16:9",
	})
	if err != nil {
		return nil, gatewayErr("generate image", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, gatewayErr("generate image", fmt.Errorf("empty image response"))
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

func (g *GeminiGateway) GenerateImageDescription(ctx context.Context, imagePrompt string) (string, error) {
	prompt := g.prompts.BuildImageDescriptionPrompt(imagePrompt)
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(imageDescriptionInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", gatewayErr("generate image description", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiGateway) FetchTrends(ctx context.Context, topic string) (string, error) {
	prompt := g.prompts.BuildTrendsPrompt(topic)
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return "", gatewayErr("fetch trends", err)
	}
	return out, nil
}

func (g *GeminiGateway) RunPrompt(ctx context.Context, prompt string) (string, error) {
	out, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", gatewayErr("get response", err)
	}
	return out, nil
}

func (g *GeminiGateway) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	contents := genai.Text(prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
