package markup

import (
	"strings"
	"testing"
)

const sampleDoc = `<html><head>
<title>Sample</title>
<meta name="description" content="A page">
<meta name="author" content="Jane Doe">
<meta property="og:title" content="Sample">
<meta property="og:image" content="x.jpg">
<meta name="twitter:card" content="summary">
</head><body>
<h1>Main Heading</h1>
<h2>Sub   Heading</h2>
<p>First paragraph text.</p>
<p>  Second   paragraph  </p>
<a href="/contact">Contact us</a>
<a name="anchor-without-href">skip me</a>
<img src="a.jpg" alt="A tomato">
<img src="b.jpg" alt="">
<img src="c.jpg">
<script>var hidden = "should not leak";</script>
<script type="application/ld+json">{"@type":"Article"}</script>
<div itemscope itemtype="https://schema.org/Article">marked up</div>
</body></html>`

func newView(t *testing.T) *View {
	t.Helper()
	v, err := New(sampleDoc)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func TestViewHeadings(t *testing.T) {
	t.Parallel()

	headings := newView(t).Headings()
	if len(headings) != 2 {
		t.Fatalf("len(Headings()) = %d, want 2", len(headings))
	}
	if headings[0].Level != 1 || headings[0].Text != "Main Heading" {
		t.Fatalf("headings[0] = %+v", headings[0])
	}
	if headings[1].Level != 2 {
		t.Fatalf("headings[1] = %+v", headings[1])
	}
}

func TestViewLinks(t *testing.T) {
	t.Parallel()

	links := newView(t).Links()
	if len(links) != 1 {
		t.Fatalf("len(Links()) = %d, want 1 (anchors without href skipped)", len(links))
	}
	if links[0].Href != "/contact" || links[0].Text != "Contact us" {
		t.Fatalf("links[0] = %+v", links[0])
	}
}

func TestViewImages(t *testing.T) {
	t.Parallel()

	images := newView(t).Images()
	if len(images) != 3 {
		t.Fatalf("len(Images()) = %d, want 3", len(images))
	}
	if !images[0].HasAlt || images[0].Alt != "A tomato" {
		t.Fatalf("images[0] = %+v", images[0])
	}
	if !images[1].HasAlt || images[1].Alt != "" {
		t.Fatalf("images[1] (decorative) = %+v", images[1])
	}
	if images[2].HasAlt {
		t.Fatalf("images[2] should have no alt: %+v", images[2])
	}
}

func TestViewStructuredDataBlocks(t *testing.T) {
	t.Parallel()

	blocks := newView(t).StructuredDataBlocks()
	if len(blocks) != 1 {
		t.Fatalf("len(StructuredDataBlocks()) = %d, want 1", len(blocks))
	}
	if blocks[0] != `{"@type":"Article"}` {
		t.Fatalf("blocks[0] = %q", blocks[0])
	}
}

func TestViewTextExcludesScripts(t *testing.T) {
	t.Parallel()

	text := newView(t).Text()
	if text == "" {
		t.Fatal("Text() returned empty")
	}
	for _, forbidden := range []string{"should not leak", "@type"} {
		if strings.Contains(text, forbidden) {
			t.Fatalf("Text() leaked script content: %q", forbidden)
		}
	}
	if !strings.Contains(text, "First paragraph text.") {
		t.Fatalf("Text() missing visible content: %q", text)
	}
}

func TestViewMetaAndCounts(t *testing.T) {
	t.Parallel()

	v := newView(t)
	if got := v.MetaContent("author"); len(got) != 1 || got[0] != "Jane Doe" {
		t.Fatalf("MetaContent(author) = %v", got)
	}
	if got := v.OpenGraphTagCount(); got != 2 {
		t.Fatalf("OpenGraphTagCount() = %d, want 2", got)
	}
	if got := v.TwitterTagCount(); got != 1 {
		t.Fatalf("TwitterTagCount() = %d, want 1", got)
	}
	if !v.HasMicrodata() {
		t.Fatal("HasMicrodata() = false")
	}
	if got := v.Count("p"); got != 2 {
		t.Fatalf("Count(p) = %d, want 2", got)
	}
}

func TestViewParagraphsCollapseWhitespace(t *testing.T) {
	t.Parallel()

	paragraphs := newView(t).Paragraphs()
	if len(paragraphs) != 2 {
		t.Fatalf("len(Paragraphs()) = %d, want 2", len(paragraphs))
	}
	if paragraphs[1] != "Second paragraph" {
		t.Fatalf("paragraphs[1] = %q", paragraphs[1])
	}
}

func TestViewNilSafety(t *testing.T) {
	t.Parallel()

	var v *View
	if v.Raw() != "" || v.Text() != "" || v.Headings() != nil || v.Count("p") != 0 {
		t.Fatal("nil view methods must return zero values")
	}
}
