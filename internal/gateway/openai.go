package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGateway implements Gateway using the official openai-go SDK
// (chat completions plus the Images API). Structured calls instruct the
// model to answer with bare JSON and parse the reply; trends are served
// without search grounding, which the chat completions API does not offer.
type OpenAIGateway struct {
	client     openai.Client
	model      string
	imageModel string
	prompts    *PromptBuilder
}

func NewOpenAIGateway(apiKey, model, imageModel, baseURL string) (*OpenAIGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	if imageModel == "" {
		imageModel = "dall-e-3"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIGateway{
		client:     openai.NewClient(opts...),
		model:      model,
		imageModel: imageModel,
		prompts:    &PromptBuilder{},
	}, nil
}

const jsonOnlySuffix = "\n\nRespond with the JSON payload only, no prose and no code fences."

func (o *OpenAIGateway) GenerateArticle(ctx context.Context, params ArticleParams) (GeneratedArticle, error) {
	prompt := o.prompts.BuildArticlePrompt(params) +
		"\n\nRespond with a JSON object with exactly two string fields: \"title\" and \"content\" (Markdown)." +
		jsonOnlySuffix
	raw, err := o.complete(ctx, systemInstruction, prompt)
	if err != nil {
		return GeneratedArticle{}, gatewayErr("generate article", err)
	}
	var article GeneratedArticle
	if err := json.Unmarshal([]byte(cleanJSONOutput(raw)), &article); err != nil {
		return GeneratedArticle{}, gatewayErr("generate article", fmt.Errorf("parse response: %w", err))
	}
	return article, nil
}

func (o *OpenAIGateway) CheckGrammar(ctx context.Context, text string) ([]GrammarSuggestion, error) {
	prompt := o.prompts.BuildGrammarPrompt(text) +
		"\n\nRespond with a JSON array of objects with string fields \"original\", \"suggestion\" and \"explanation\"." +
		jsonOnlySuffix
	raw, err := o.complete(ctx, "", prompt)
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

func (o *OpenAIGateway) ModifyText(ctx context.Context, text string, action ModificationAction) (string, error) {
	if !action.Valid() {
		return "", gatewayErr("modify text", fmt.Errorf("unknown action %q", action))
	}
	out, err := o.complete(ctx, systemInstruction, o.prompts.BuildModifyPrompt(text, action))
	if err != nil {
		return "", gatewayErr(fmt.Sprintf("%s text", action), err)
	}
	return out, nil
}

func (o *OpenAIGateway) GenerateSeoTitle(ctx context.Context, goal, content string) (string, error) {
	out, err := o.complete(ctx, seoTitleInstruction, o.prompts.BuildSeoTitlePrompt(goal, content))
	if err != nil {
		return "", gatewayErr("generate SEO title", err)
	}
	return stripWrappingQuotes(out), nil
}

func (o *OpenAIGateway) AnalyzeSeo(ctx context.Context, input SeoInput) ([]SeoSuggestion, error) {
	prompt := o.prompts.BuildSeoAnalysisPrompt(input) +
		"\n\nRespond with a JSON array of objects with string fields \"area\", \"suggestion\" and \"severity\" (high, medium or low)." +
		jsonOnlySuffix
	raw, err := o.complete(ctx, "", prompt)
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

func (o *OpenAIGateway) TranslateText(ctx context.Context, text, language string) (string, error) {
	out, err := o.complete(ctx, "", o.prompts.BuildTranslatePrompt(text, language))
	if err != nil {
		return "", gatewayErr("translate text", err)
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIGateway) SummarizeForImagePrompt(ctx context.Context, text string) (string, error) {
	out, err := o.complete(ctx, imagePromptInstruction, o.prompts.BuildImageSummaryPrompt(text))
	if err != nil {
		return "", gatewayErr("create image prompt", err)
	}
	return out, nil
}

func (o *OpenAIGateway) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         imageStylePrefix + prompt,
		Model:          openai.ImageModel(o.imageModel),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           openai.ImageGenerateParamsSize1792x1024,
	})
	if err != nil {
		return nil, gatewayErr("generate image", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, gatewayErr("generate image", fmt.Errorf("empty image response"))
	}
	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, gatewayErr("generate image", fmt.Errorf("decode payload: %w", err))
	}
	return img, nil
}

func (o *OpenAIGateway) GenerateImageDescription(ctx context.Context, imagePrompt string) (string, error) {
	out, err := o.complete(ctx, imageDescriptionInstruction, o.prompts.BuildImageDescriptionPrompt(imagePrompt))
	if err != nil {
		return "", gatewayErr("generate image description", err)
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIGateway) FetchTrends(ctx context.Context, topic string) (string, error) {
	out, err := o.complete(ctx, "", o.prompts.BuildTrendsPrompt(topic))
	if err != nil {
		return "", gatewayErr("fetch trends", err)
	}
	return out, nil
}

func (o *OpenAIGateway) RunPrompt(ctx context.Context, prompt string) (string, error) {
	out, err := o.complete(ctx, systemInstruction, prompt)
	if err != nil {
		return "", gatewayErr("get response", err)
	}
	return out, nil
}

func (o *OpenAIGateway) complete(ctx context.Context, system, user string) (string, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(user))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
