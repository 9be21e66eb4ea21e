package workspace

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"facewriter/internal/gateway"
)

// Dispatch contract shared by everything below: validation and the Pending
// transition happen under the lock, the gateway call runs outside of it,
// and the resolution is applied through finish so a stale response can
// never overwrite the state of a newer dispatch of the same kind.

// SendMessage appends the user prompt to the chat log and asks the
// assistant for a reply. Failures are appended as system messages so the
// user sees them in context.
func (w *Workspace) SendMessage(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.appendChatLocked(RoleUser, prompt)
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolChat)
	w.mu.Unlock()

	reply, err := gw.RunPrompt(ctx, prompt)
	w.finish(ToolChat, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error: "+err.Error())
			return
		}
		w.appendChatLocked(RoleModel, reply)
	})
	return err
}

// SummarizeSelection sends the active selection to the assistant chat. The
// selection toolbar is dismissed once the response lands, success or not.
func (w *Workspace) SummarizeSelection(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	text, ok := w.sel.BeginAction()
	if !ok {
		w.mu.Unlock()
		return ErrNoSelection
	}
	w.appendChatLocked(RoleUser, fmt.Sprintf("Summarize the following text: %q", text))
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolChat)
	w.mu.Unlock()

	reply, err := gw.RunPrompt(ctx, fmt.Sprintf("Please summarize the following text:\n\n%q", text))
	if !w.finish(ToolChat, seq, err, func() {
		w.sel.Resolve()
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error: "+err.Error())
			return
		}
		w.appendChatLocked(RoleModel, reply)
	}) {
		w.resolveSelection()
	}
	return err
}

// ModifySelection runs expand/shorten/rewrite over the active selection and
// folds the replacement back into the body by literal substring replace.
// If the captured text is no longer present verbatim the replacement is a
// silent no-op.
func (w *Workspace) ModifySelection(ctx context.Context, action gateway.ModificationAction) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	text, ok := w.sel.BeginAction()
	if !ok {
		w.mu.Unlock()
		return ErrNoSelection
	}
	if strings.TrimSpace(text) == "" {
		w.sel.Resolve()
		w.mu.Unlock()
		return nil
	}
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolModification)
	w.mu.Unlock()

	replacement, err := gw.ModifyText(ctx, text, action)
	if !w.finish(ToolModification, seq, err, func() {
		w.sel.Resolve()
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error modifying text: "+err.Error())
			return
		}
		w.doc.ReplaceSubstring(text, replacement)
	}) {
		w.resolveSelection()
	}
	return err
}

// CheckGrammar analyzes the whole body. Prior suggestions are cleared at
// dispatch so a stale list is never shown next to a spinner.
func (w *Workspace) CheckGrammar(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	body := w.doc.Body
	if strings.TrimSpace(body) == "" {
		w.mu.Unlock()
		return nil
	}
	w.grammar = nil
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolGrammar)
	w.mu.Unlock()

	suggestions, err := gw.CheckGrammar(ctx, body)
	w.finish(ToolGrammar, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Grammar Check Error: "+err.Error())
			return
		}
		w.grammar = suggestions
	})
	return err
}

// GenerateArticle replaces title and body wholesale with the generated
// article and records the brief's goal on the document.
func (w *Workspace) GenerateArticle(ctx context.Context, params gateway.ArticleParams) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolArticle)
	w.mu.Unlock()

	article, err := gw.GenerateArticle(ctx, params)
	w.finish(ToolArticle, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error generating article: "+err.Error())
			return
		}
		w.doc.Title = article.Title
		w.doc.Body = article.Content
		w.doc.Goal = params.Goal
	})
	return err
}

// GenerateSeoTitle derives a new title from the goal and current content.
func (w *Workspace) GenerateSeoTitle(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	goal, body := w.doc.Goal, w.doc.Body
	if goal == "" && strings.TrimSpace(body) == "" {
		w.appendChatLocked(RoleSystem, "Please provide an article goal or some content before generating a title.")
		w.mu.Unlock()
		return nil
	}
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolTitle)
	w.mu.Unlock()

	title, err := gw.GenerateSeoTitle(ctx, goal, body)
	w.finish(ToolTitle, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error generating SEO title: "+err.Error())
			return
		}
		w.doc.Title = title
	})
	return err
}

// FetchTrends pulls a search-trend summary for a topic. An empty topic
// short-circuits without a gateway call. Failures land in the trends
// result itself, not the chat log.
func (w *Workspace) FetchTrends(ctx context.Context, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return nil
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.trends = ""
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolTrends)
	w.mu.Unlock()

	result, err := gw.FetchTrends(ctx, topic)
	w.finish(ToolTrends, seq, err, func() {
		if err != nil {
			w.trends = "Error fetching trends: " + err.Error()
			return
		}
		w.trends = result
	})
	return err
}

// GenerateImage is the one two-stage dispatch: the body's leading words are
// distilled into an image prompt, then the image is generated from it. The
// intermediate prompt is published as soon as stage one succeeds so a
// stage-two failure still leaves it available for the description tool.
func (w *Workspace) GenerateImage(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	source := w.doc.FirstWords(imagePromptWordCap)
	if strings.TrimSpace(source) == "" {
		w.mu.Unlock()
		return nil
	}
	w.doc.ImageURL = ""
	w.doc.ImageDescription = ""
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolImage)
	w.mu.Unlock()

	prompt, err := gw.SummarizeForImagePrompt(ctx, source)
	if err != nil {
		w.finish(ToolImage, seq, err, func() {
			w.appendChatLocked(RoleSystem, "Error generating image: "+err.Error())
		})
		return err
	}
	w.applyIfCurrent(ToolImage, seq, func() {
		w.doc.ImagePrompt = prompt
	})

	img, err := gw.GenerateImage(ctx, prompt)
	w.finish(ToolImage, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error generating image: "+err.Error())
			return
		}
		w.doc.ImageURL = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)
	})
	return err
}

// GenerateImageDescription turns the AI image prompt into stock-photo
// search keywords. It requires a prior AI-generated image; uploads clear
// the prompt and disable this tool.
func (w *Workspace) GenerateImageDescription(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	prompt := w.doc.ImagePrompt
	if prompt == "" {
		w.mu.Unlock()
		return nil
	}
	w.doc.ImageDescription = ""
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolImageDescription)
	w.mu.Unlock()

	desc, err := gw.GenerateImageDescription(ctx, prompt)
	w.finish(ToolImageDescription, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error generating image description: "+err.Error())
			return
		}
		w.doc.ImageDescription = desc
	})
	return err
}

// AnalyzeSeo reviews the article against SEO best practices.
func (w *Workspace) AnalyzeSeo(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	input := gateway.SeoInput{
		Title:   w.doc.Title,
		Content: w.doc.Body,
		Goal:    w.doc.Goal,
		Client:  w.doc.Client,
	}
	w.seo = nil
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolSeo)
	w.mu.Unlock()

	suggestions, err := gw.AnalyzeSeo(ctx, input)
	w.finish(ToolSeo, seq, err, func() {
		if err != nil {
			w.appendChatLocked(RoleSystem, "Error analyzing SEO: "+err.Error())
			return
		}
		w.seo = suggestions
	})
	return err
}

// Translate renders the whole body in the target language. The result is
// held next to the document until ApplyTranslation folds it in; failures
// land in the translation result itself.
func (w *Workspace) Translate(ctx context.Context, language string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	body := w.doc.Body
	if strings.TrimSpace(body) == "" {
		w.mu.Unlock()
		return nil
	}
	w.translated = ""
	gw := w.gw
	ctx, seq := w.begin(ctx, ToolTranslation)
	w.mu.Unlock()

	result, err := gw.TranslateText(ctx, body, language)
	w.finish(ToolTranslation, seq, err, func() {
		if err != nil {
			w.translated = "Error translating text: " + err.Error()
			return
		}
		w.translated = result
	})
	return err
}
