// Package codec derives canonical filenames and frontmatter text from an
// article record, and parses that text back for round-trip verification.
package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// dateLayouts are the accepted article date formats, tried in order. The
// first two cover normalized values, the rest what editors actually submit
// (datetime-local inputs, bare dates).
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate normalizes a stored article date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("codec: empty date: %w", apperr.ErrValidation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("codec: unparseable date %q: %w", s, apperr.ErrValidation)
}

// Filename derives the canonical on-disk name YYYY-MM-DD-<slug>.md.
// It is a pure function of the article's date and title: two articles with
// the same title and date produce the same filename, which is accepted
// behavior. Callers doing bulk export must serialize writes themselves.
func Filename(a models.Article) (string, error) {
	t, err := ParseDate(a.Date)
	if err != nil {
		return "", err
	}
	slug := Slug(a.Title)
	if slug == "" {
		return "", fmt.Errorf("codec: title %q yields empty slug: %w", a.Title, apperr.ErrValidation)
	}
	return fmt.Sprintf("%s-%s.md", t.Format("2006-01-02"), slug), nil
}

// Slug lowercases the title and collapses every run of characters outside
// [a-z0-9] and the CJK unified ideograph block to a single hyphen, stripping
// leading and trailing hyphens.
func Slug(title string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 0x4e00 && r <= 0x9fa5:
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	return b.String()
}

// plainSafe reports whether s survives a bare YAML scalar position
// unchanged when read back. Empty strings render as nothing after the key
// and decode back to empty, so they count as safe.
func plainSafe(s string) bool {
	if s == "" {
		return true
	}
	if s != strings.TrimSpace(s) || strings.ContainsAny(s, "\n\t") {
		return false
	}
	if strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`", rune(s[0])) {
		return false
	}
	return !strings.Contains(s, ": ") && !strings.HasSuffix(s, ":") && !strings.Contains(s, " #")
}

// scalar writes s plain when that round-trips, double-quoted otherwise.
// Go string escapes are a subset of YAML double-quote escapes, so
// strconv.Quote output parses back to the original value.
func scalar(s string) string {
	if plainSafe(s) {
		return s
	}
	return strconv.Quote(s)
}

// Render produces the canonical article text: a ----delimited frontmatter
// block (title, date, categories, tags, excerpt), a blank line, then the raw
// Markdown body. The output is byte-for-byte reproducible for a given
// article.
func Render(a models.Article) (string, error) {
	if strings.TrimSpace(a.Title) == "" {
		return "", fmt.Errorf("codec: empty title: %w", apperr.ErrValidation)
	}
	t, err := ParseDate(a.Date)
	if err != nil {
		return "", err
	}
	category := a.Category
	if category == "" {
		category = models.Uncategorized
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", scalar(a.Title))
	fmt.Fprintf(&b, "date: %s\n", t.UTC().Format(time.RFC3339))
	b.WriteString("categories:\n")
	fmt.Fprintf(&b, "  - %s\n", scalar(category))
	b.WriteString("tags:\n")
	for _, tag := range a.Tags {
		fmt.Fprintf(&b, "  - %s\n", scalar(tag))
	}
	fmt.Fprintf(&b, "excerpt: %s\n", scalar(a.Excerpt))
	b.WriteString("---\n\n")
	b.WriteString(a.Content)
	return b.String(), nil
}

// frontmatter mirrors the fields Render emits.
type frontmatter struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
	Excerpt    string   `yaml:"excerpt"`
}

// Parse splits a rendered article back into its record. Used for round-trip
// verification and snapshot import tooling; it recovers title, category,
// tags (order preserved), excerpt, date, and the raw body.
func Parse(data []byte) (models.Article, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return models.Article{}, fmt.Errorf("codec: missing frontmatter: %w", apperr.ErrValidation)
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return models.Article{}, fmt.Errorf("codec: unterminated frontmatter: %w", apperr.ErrValidation)
	}
	var fm frontmatter
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return models.Article{}, fmt.Errorf("codec: invalid frontmatter: %w", apperr.ErrValidation)
	}

	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	a := models.Article{
		Title:   fm.Title,
		Tags:    fm.Tags,
		Date:    fm.Date,
		Excerpt: fm.Excerpt,
		Content: body,
	}
	if len(fm.Categories) > 0 {
		a.Category = fm.Categories[0]
	}
	return a, nil
}
