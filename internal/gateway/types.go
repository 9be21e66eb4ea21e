package gateway

import "context"

// ModificationAction selects the instruction template for ModifyText.
type ModificationAction string

const (
	ActionExpand  ModificationAction = "expand"
	ActionShorten ModificationAction = "shorten"
	ActionRewrite ModificationAction = "rewrite"
)

func (a ModificationAction) Valid() bool {
	switch a {
	case ActionExpand, ActionShorten, ActionRewrite:
		return true
	}
	return false
}

// ArticleParams is the brief an article is generated from.
type ArticleParams struct {
	Goal          string `json:"goal"`
	Audience      string `json:"audience"`
	ContentType   string `json:"contentType"`
	NarrativeTune string `json:"narrativeTune"`
	Keywords      string `json:"keywords"`
	Language      string `json:"language"`
}

// GeneratedArticle is the structured result of article generation.
type GeneratedArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GrammarSuggestion is one issue found by the grammar check. Positions are
// represented by verbatim text content, not offsets.
type GrammarSuggestion struct {
	Original    string `json:"original"`
	Suggestion  string `json:"suggestion"`
	Explanation string `json:"explanation"`
}

// SeoSuggestion is one finding of the SEO analysis.
type SeoSuggestion struct {
	Area       string `json:"area"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"` // high, medium or low
}

// SeoInput is the article context handed to AnalyzeSeo.
type SeoInput struct {
	Title   string
	Content string
	Goal    string
	Client  string
}

// Gateway is the boundary adapter to the external generative-AI service.
// One operation per tool kind; each is a single request/response call with
// no local retry. Inputs are not validated here; trivial-input
// short-circuiting is the caller's job.
type Gateway interface {
	GenerateArticle(ctx context.Context, params ArticleParams) (GeneratedArticle, error)
	CheckGrammar(ctx context.Context, text string) ([]GrammarSuggestion, error)
	ModifyText(ctx context.Context, text string, action ModificationAction) (string, error)
	GenerateSeoTitle(ctx context.Context, goal, content string) (string, error)
	AnalyzeSeo(ctx context.Context, input SeoInput) ([]SeoSuggestion, error)
	TranslateText(ctx context.Context, text, language string) (string, error)
	SummarizeForImagePrompt(ctx context.Context, text string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	GenerateImageDescription(ctx context.Context, prompt string) (string, error)
	FetchTrends(ctx context.Context, topic string) (string, error)
	RunPrompt(ctx context.Context, prompt string) (string, error)
}
