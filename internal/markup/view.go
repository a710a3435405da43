// Package markup provides a typed read-only view over raw page markup.
// Factor analyzers query the view instead of re-parsing HTML themselves.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one h1-h6 element in document order.
type Heading struct {
	Level int
	Text  string
}

// Link is an anchor element with its resolved attributes left untouched.
type Link struct {
	Href string
	Text string
}

// Image is an img element. HasAlt distinguishes a present-but-empty alt
// attribute (decorative marker) from a missing one.
type Image struct {
	Src    string
	Alt    string
	HasAlt bool
}

// View wraps a parsed document and exposes typed extraction methods. A View
// is immutable after construction and safe for concurrent readers.
type View struct {
	doc *goquery.Document
	raw string
}

// New parses raw markup into a View. The underlying parser is lenient; an
// error only occurs on truly unreadable input, and callers should treat it
// as "no structure available" rather than a fatal condition.
func New(raw string) (*View, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return &View{doc: doc, raw: raw}, nil
}

// Raw returns the original markup string.
func (v *View) Raw() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Headings returns all h1-h6 elements in document order.
func (v *View) Headings() []Heading {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []Heading
	v.doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if len(tag) != 2 || tag[0] != 'h' {
			return
		}
		level := int(tag[1] - '0')
		if level < 1 || level > 6 {
			return
		}
		out = append(out, Heading{
			Level: level,
			Text:  strings.TrimSpace(sel.Text()),
		})
	})
	return out
}

// Links returns every anchor with an href attribute.
func (v *View) Links() []Link {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []Link
	v.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		out = append(out, Link{
			Href: strings.TrimSpace(href),
			Text: strings.TrimSpace(sel.Text()),
		})
	})
	return out
}

// Images returns every img element with its alt-attribute state.
func (v *View) Images() []Image {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []Image
	v.doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		alt, hasAlt := sel.Attr("alt")
		src, _ := sel.Attr("src")
		out = append(out, Image{
			Src:    src,
			Alt:    strings.TrimSpace(alt),
			HasAlt: hasAlt,
		})
	})
	return out
}

// StructuredDataBlocks returns the raw contents of every embedded JSON-LD
// script. Blocks are returned verbatim; callers decide how to parse them.
func (v *View) StructuredDataBlocks() []string {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []string
	v.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Text returns the visible text of the page with script, style, noscript,
// and structured-data content removed and whitespace collapsed.
func (v *View) Text() string {
	if v == nil || v.doc == nil {
		return ""
	}
	clone := v.doc.Clone()
	clone.Find("script, style, noscript, template").Remove()
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(clone.Text()), " ")
}

// Count returns how many nodes match the given selector. It lets factors
// probe class/id patterns without reaching into the document directly.
func (v *View) Count(selector string) int {
	if v == nil || v.doc == nil {
		return 0
	}
	return v.doc.Find(selector).Length()
}

// MetaContent returns the content attributes of meta tags whose name
// attribute equals the given value (case handled by the selector).
func (v *View) MetaContent(name string) []string {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []string
	v.doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				out = append(out, content)
			}
		}
	})
	return out
}

// OpenGraphTagCount counts meta tags carrying an og: property.
func (v *View) OpenGraphTagCount() int {
	return v.Count(`meta[property^="og:"]`)
}

// TwitterTagCount counts meta tags carrying a twitter: name.
func (v *View) TwitterTagCount() int {
	return v.Count(`meta[name^="twitter:"]`)
}

// HasMicrodata reports whether any element carries microdata attributes.
func (v *View) HasMicrodata() bool {
	return v.Count("[itemscope], [itemtype]") > 0
}

// Paragraphs returns the trimmed text of every p element.
func (v *View) Paragraphs() []string {
	if v == nil || v.doc == nil {
		return nil
	}
	var out []string
	v.doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			out = append(out, whitespaceRe.ReplaceAllString(text, " "))
		}
	})
	return out
}
