package document

import "strings"

// Destination is the publishing target of an article.
type Destination string

const (
	DestArticleBlog   Destination = "Article Blog"
	DestYoutubeScript Destination = "Youtube Script"
	DestInstagramPost Destination = "Instagram Post"
	DestFacebookPost  Destination = "Facebook Post"
	DestXPost         Destination = "X Post"
	DestLinkedinPost  Destination = "Linkedin Post"
)

// Destinations lists every valid destination, in display order.
var Destinations = []Destination{
	DestArticleBlog, DestYoutubeScript, DestInstagramPost,
	DestFacebookPost, DestXPost, DestLinkedinPost,
}

func (d Destination) Valid() bool {
	for _, v := range Destinations {
		if d == v {
			return true
		}
	}
	return false
}

const (
	initialTitle = "My First SEO Article"
	initialBody  = "Start writing your next masterpiece here...\n\n" +
		"Use the \"Generate\" tab in the tools panel to create a new article from a brief. " +
		"You can also select text to see the AI modification tools!"

	newProjectTitle = "New Untitled Article"
	newProjectBody  = "Start writing..."
)

// Document is the in-memory article being edited. Body is the single source
// of truth for content: every AI modification is folded back into it via
// substring replacement, never kept in a diverging side buffer.
type Document struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Goal        string      `json:"goal"`
	Client      string      `json:"client"`
	Destination Destination `json:"destination"`

	// Image state associated with the article. ImagePrompt is only set when
	// the image was AI-generated; an upload clears it.
	ImageURL         string `json:"imageUrl,omitempty"`
	ImagePrompt      string `json:"imagePrompt,omitempty"`
	ImageDescription string `json:"imageDescription,omitempty"`
}

// New returns a document with the session-start placeholder content.
func New() *Document {
	return &Document{
		Title:       initialTitle,
		Body:        initialBody,
		Destination: DestArticleBlog,
	}
}

// Reset restores the new-project state, discarding all content and image state.
func (d *Document) Reset() {
	*d = Document{
		Title:       newProjectTitle,
		Body:        newProjectBody,
		Destination: DestArticleBlog,
	}
}

// ReplaceSubstring performs a first-match literal replace of original inside
// the body. If original is no longer present the body is left unchanged and
// false is returned. First occurrence wins when the substring is ambiguous;
// no fuzzy or regexp matching.
func (d *Document) ReplaceSubstring(original, replacement string) bool {
	if original == "" || !strings.Contains(d.Body, original) {
		return false
	}
	d.Body = strings.Replace(d.Body, original, replacement, 1)
	return true
}

// AppendSection appends text to the body as a new paragraph.
func (d *Document) AppendSection(text string) {
	d.Body = d.Body + "\n\n" + text
}

// FirstWords returns at most n leading whitespace-separated words of the body,
// used to bound the input handed to the image-prompt summarizer.
func (d *Document) FirstWords(n int) string {
	words := strings.Fields(d.Body)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
