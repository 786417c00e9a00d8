package entity

import (
	"strings"
	"time"
	"unicode"
)

const (
	MaxTopicTags   = 10
	PreviewLength  = 200
	TitleMinLength = 5
	TitleMaxLength = 120
	BodyMinLength  = 10
	BodyMaxLength  = 5000
)

type CommunityTopic struct {
	ID           string    `json:"id" firestore:"id"`
	Title        string    `json:"title" firestore:"title"`
	Content      string    `json:"content" firestore:"content"`
	Tags         []string  `json:"tags" firestore:"tags"`
	CreatedBy    string    `json:"createdBy" firestore:"createdBy"`
	IsFeatured   bool      `json:"isFeatured" firestore:"isFeatured"`
	ViewsCount   int64     `json:"viewsCount" firestore:"viewsCount"`
	AdvicesCount int64     `json:"advicesCount" firestore:"advicesCount"`
	UpvotesCount int64     `json:"upvotesCount" firestore:"upvotesCount"`
	Keywords     []string  `json:"-" firestore:"keywords"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Preview returns at most PreviewLength characters of the content.
func (t *CommunityTopic) Preview() string {
	r := []rune(t.Content)
	if len(r) <= PreviewLength {
		return t.Content
	}
	return string(r[:PreviewLength])
}

type CommunityTip struct {
	ID        string    `json:"id" firestore:"id"`
	Title     string    `json:"title" firestore:"title"`
	Solution  string    `json:"solution" firestore:"solution"`
	CreatedBy string    `json:"createdBy" firestore:"createdBy"`
	Keywords  []string  `json:"-" firestore:"keywords"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NormalizeTags upper-cases, trims, drops empties and caps the list.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTopicTags {
			break
		}
	}
	return out
}

// Keywords splits text into the lower-cased search terms stored on a document.
func Keywords(parts ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		for _, w := range strings.FieldsFunc(strings.ToLower(p), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}) {
			if len([]rune(w)) < 2 || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// MatchesQuery reports whether any term of q appears in keywords. An empty
// query matches everything.
func MatchesQuery(keywords []string, q string) bool {
	terms := Keywords(q)
	if len(terms) == 0 {
		return true
	}
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}
	for _, t := range terms {
		if set[t] {
			return true
		}
	}
	return false
}
