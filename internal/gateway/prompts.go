package gateway

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs the prompt for each tool kind.
type PromptBuilder struct{}

const systemInstruction = `You are FaceWriter Assistant, an expert writing copilot. ` +
	`Your goal is to help users create high-quality content. ` +
	`Be concise, helpful, and provide actionable suggestions. ` +
	`You can generate ideas, summarize text, rewrite paragraphs, check for facts, and optimize content for SEO. ` +
	`When asked to generate content, provide it directly without conversational fluff.`

const seoTitleInstruction = "You are an expert SEO copywriter specializing in creating high-click-through-rate titles."

const imagePromptInstruction = "You are a creative assistant that distills text into image prompts."

const imageDescriptionInstruction = "You are a helpful assistant that creates search queries for stock photo websites."

// seoTitleContentCap bounds the content snippet embedded in the title prompt.
const seoTitleContentCap = 500

func (pb *PromptBuilder) BuildGrammarPrompt(text string) string {
	return fmt.Sprintf("Analyze the following text for grammatical errors, spelling mistakes, and style issues. "+
		"Identify the original text with the error, provide a correction, and a brief explanation for each issue found. "+
		"If no issues are found, return an empty array. Text to analyze: %q", text)
}

func (pb *PromptBuilder) BuildModifyPrompt(text string, action ModificationAction) string {
	switch action {
	case ActionExpand:
		return fmt.Sprintf("Expand the following text, making it more detailed and descriptive, "+
			"while maintaining the original tone. Return only the expanded text:\n\n%q", text)
	case ActionShorten:
		return fmt.Sprintf("Shorten the following text, making it more concise and to the point, "+
			"while preserving the key message. Return only the shortened text:\n\n%q", text)
	case ActionRewrite:
		return fmt.Sprintf("Rewrite the following text to improve its clarity, style, and engagement. "+
			"Offer a fresh perspective without losing the core meaning. Return only the rewritten text:\n\n%q", text)
	}
	return ""
}

func (pb *PromptBuilder) BuildArticlePrompt(p ArticleParams) string {
	keywords := p.Keywords
	if keywords == "" {
		keywords = "none"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a complete article in %s based on the following brief. ", p.Language)
	sb.WriteString("The article must be well-structured, engaging, and written in Markdown format.\n\n")
	fmt.Fprintf(&sb, "**Language of Output:** %s\n", p.Language)
	fmt.Fprintf(&sb, "**Content Type:** %s\n", p.ContentType)
	fmt.Fprintf(&sb, "**Primary Goal:** %s\n", p.Goal)
	fmt.Fprintf(&sb, "**Target Audience:** %s\n", p.Audience)
	fmt.Fprintf(&sb, "**Narrative Tune:** %s\n", p.NarrativeTune)
	fmt.Fprintf(&sb, "**Keywords to include:** %s\n\n", keywords)
	sb.WriteString("Please generate a compelling title and a well-written article body that fulfills these requirements. ")
	fmt.Fprintf(&sb, "The entire output, including the title and content, must be in %s.", p.Language)
	return sb.String()
}

func (pb *PromptBuilder) BuildSeoTitlePrompt(goal, content string) string {
	snippet := content
	if len(snippet) > seoTitleContentCap {
		snippet = snippet[:seoTitleContentCap]
	}
	return fmt.Sprintf("Based on the following article goal and content, generate a compelling and SEO-friendly title. "+
		"The title should be concise, attention-grabbing, and relevant to the content. "+
		"Return only the title, with no extra text or quotation marks.\n\n**Goal:** %s\n\n**Content Snippet:**\n%s...",
		goal, snippet)
}

func (pb *PromptBuilder) BuildSeoAnalysisPrompt(in SeoInput) string {
	return fmt.Sprintf("Analyze the following article for SEO best practices. "+
		"Provide suggestions for improvement in these areas: Title, Meta Description, "+
		"Keyword Usage (based on goal and content), Readability, and Internal/External Linking strategy. "+
		"Article Title: %q. Article Goal: %q. Content: %q", in.Title, in.Goal, in.Content)
}

func (pb *PromptBuilder) BuildTranslatePrompt(text, language string) string {
	return fmt.Sprintf("Translate the following text to %s. "+
		"Provide only the translated text, without any introductory phrases, comments, or explanations. "+
		"Preserve the original Markdown formatting.\n\nText to translate:\n\"\"\"\n%s\n\"\"\"", language, text)
}

func (pb *PromptBuilder) BuildTrendsPrompt(topic string) string {
	return fmt.Sprintf("Provide a summary of the latest Google search trends related to %q. "+
		"Include key topics, rising queries, and potential content angles. "+
		"Format the response clearly with headings.", topic)
}

func (pb *PromptBuilder) BuildImageSummaryPrompt(text string) string {
	return fmt.Sprintf("Based on the following text, create a concise, visually descriptive prompt "+
		"for an image generation AI. The prompt should capture the essence of the text in a single, "+
		"powerful sentence, focusing on objects, atmosphere, and style. Text: %q", text)
}

func (pb *PromptBuilder) BuildImageDescriptionPrompt(imagePrompt string) string {
	return fmt.Sprintf("Based on the following artistic image prompt, distill it into a short, concise "+
		"description of 2-5 keywords suitable for searching on a stock photo website. "+
		"Focus on the main subject and key attributes. Return only the keywords, separated by commas. "+
		"Artistic prompt: %q", imagePrompt)
}

// imageStylePrefix is prepended to every generated-image prompt.
const imageStylePrefix = "cinematic, high detail, professional photograph: "
