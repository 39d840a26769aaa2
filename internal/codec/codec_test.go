package codec

import (
	"strings"
	"testing"

	"github.com/eykd/pagemark-go/internal/doc"
	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
)

func parse(t *testing.T, src string) *doc.Document {
	t.Helper()
	d, err := Default().ParseHTML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	return d
}

func render(t *testing.T, d *doc.Document) string {
	t.Helper()
	out, err := Default().RenderString(d)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	return out
}

// roundTrip renders d, parses the result and renders again; both renders
// must agree.
func roundTrip(t *testing.T, d *doc.Document) (*doc.Document, string) {
	t.Helper()
	first := render(t, d)
	again := parse(t, first)
	second := render(t, again)
	if first != second {
		t.Errorf("round trip changed the document:\nfirst:  %s\nsecond: %s", first, second)
	}
	return again, first
}

func sampleDoc(t *testing.T) *doc.Document {
	t.Helper()
	letter, _ := page.Lookup(page.Letter)
	margins := page.Margins{Top: 0.5, Right: 1, Bottom: 1.5, Left: 0.1}
	d, err := doc.New(Default().Schema(), doc.Elem(doc.TypeDoc, nil,
		doc.Elem(doc.TypePage, extension.PageAttrs(letter, margins, 1),
			doc.Elem(doc.TypeHeader, nil, doc.Text("Head")),
			doc.Elem(doc.TypeParagraph, nil, doc.Text("Body")),
			doc.Elem(doc.TypeFooter, nil, doc.Text("Foot")),
			doc.Elem(doc.TypeWatermark, doc.Attrs{"text": "DRAFT"}),
		),
		doc.Elem(doc.TypePage, extension.PageAttrs(letter, margins, 2),
			doc.Elem(doc.TypeParagraph, nil, doc.Text("Second")),
		),
	))
	if err != nil {
		t.Fatalf("doc.New: %v", err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Page structure
// ──────────────────────────────────────────────────────────────────────────────

func TestRoundTrip_PagesKeepAttributes(t *testing.T) {
	d := sampleDoc(t)
	again, _ := roundTrip(t, d)

	if got := again.Root().ChildCount(); got != 2 {
		t.Fatalf("page count = %d, want 2", got)
	}
	for i, p := range again.Root().Children() {
		if p.Type() != doc.TypePage {
			t.Fatalf("child %d is %s", i, p.Type())
		}
		want := d.Root().Child(i).Attrs()
		if got := p.Attrs(); !got.Equal(want) {
			t.Errorf("page %d attrs = %v, want %v", i+1, got, want)
		}
	}
	if got := extension.MarginsOf(again.Root().Child(0)); got != (page.Margins{Top: 0.5, Right: 1, Bottom: 1.5, Left: 0.1}) {
		t.Errorf("margins after round trip = %+v", got)
	}
}

func TestRoundTrip_AuxiliaryBlocks(t *testing.T) {
	again, _ := roundTrip(t, sampleDoc(t))
	first := again.Root().Child(0)
	types := []doc.NodeType{}
	for _, c := range first.Children() {
		types = append(types, c.Type())
	}
	want := []doc.NodeType{doc.TypeHeader, doc.TypeParagraph, doc.TypeFooter, doc.TypeWatermark}
	if len(types) != len(want) {
		t.Fatalf("page children = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("child %d = %s, want %s", i, types[i], want[i])
		}
	}
	if first.Child(0).TextContent() != "Head" || first.Child(2).TextContent() != "Foot" {
		t.Error("header/footer text lost")
	}
	if first.Child(3).Attrs().String("text") != "DRAFT" {
		t.Errorf("watermark text = %q", first.Child(3).Attrs().String("text"))
	}
}

func TestRender_PageMarkup(t *testing.T) {
	out := render(t, sampleDoc(t))
	for _, want := range []string{
		`data-type="pageBlock"`,
		`data-page-index="2"`,
		`style="width: 8.5in;"`,
		`padding: 0.5in 1in 1.5in 0.1in;`,
		`<header class="text-xs text-gray-400 border-b border-dashed pb-2 mb-4 text-center">Head</header>`,
		`<footer class="text-xs text-gray-400 border-t border-dashed pt-2 mt-4 text-center">Foot</footer>`,
		`data-watermark="true"`,
		`print:hidden`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output lacks %s\n%s", want, out)
		}
	}
}

func TestParse_PlainPageMarkup(t *testing.T) {
	// Markup written by hand carries no data-* size attributes: defaults apply.
	d := parse(t, `<div data-type="pageBlock" data-page-index="3"><div><p>Hi</p></div><div></div></div>`)
	p := d.Root().Child(0)
	if p.Type() != doc.TypePage || p.Attrs().Int(extension.AttrPageIndex) != 3 {
		t.Fatalf("page = %s %v", p.Type(), p.Attrs())
	}
	if p.Attrs().String(extension.AttrPageWidth) != "8.27in" {
		t.Errorf("width default = %q", p.Attrs().String(extension.AttrPageWidth))
	}
	if p.ChildCount() != 1 || p.TextContent() != "Hi" {
		t.Errorf("page content = %d children, %q", p.ChildCount(), p.TextContent())
	}
}

func TestParse_EmptyPageGetsParagraph(t *testing.T) {
	d := parse(t, `<div data-type="pageBlock"></div>`)
	p := d.Root().Child(0)
	if p.ChildCount() != 1 || p.Child(0).Type() != doc.TypeParagraph {
		t.Errorf("empty page children = %d", p.ChildCount())
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Inline content and marks
// ──────────────────────────────────────────────────────────────────────────────

func TestRoundTrip_Marks(t *testing.T) {
	src := `<p>plain <strong><em>both</em></strong> <a href="https://x.test">link</a> ` +
		`<span style="font-family: Arial" class="title">styled</span> ` +
		`<span data-text-style="true" style="background-color: #fffbeb">hi</span></p>`
	d := parse(t, src)
	again, _ := roundTrip(t, d)

	p := again.Root().Child(0)
	found := map[doc.MarkType]string{}
	for _, run := range p.Children() {
		for _, m := range run.Marks() {
			found[m.Type] = run.Text()
		}
	}
	want := map[doc.MarkType]string{
		doc.MarkBold:      "both",
		doc.MarkItalic:    "both",
		doc.MarkLink:      "link",
		doc.MarkStyle:     "styled",
		doc.MarkTextStyle: "hi",
	}
	for mt, text := range want {
		if found[mt] != text {
			t.Errorf("mark %s on %q, want %q", mt, found[mt], text)
		}
	}
	if got := again.TextContent(); got != "plain both link styled hi" {
		t.Errorf("text = %q", got)
	}
}

func TestParse_BoldMarkOrder(t *testing.T) {
	d := parse(t, `<p><strong><em>x</em></strong></p>`)
	marks := d.Root().Child(0).Child(0).Marks()
	if len(marks) != 2 || marks[0].Type != doc.MarkBold || marks[1].Type != doc.MarkItalic {
		t.Errorf("marks = %+v", marks)
	}
}

func TestParse_StrayTextWrapsInParagraph(t *testing.T) {
	d := parse(t, `loose <b>words</b>`)
	root := d.Root()
	if root.ChildCount() != 1 || root.Child(0).Type() != doc.TypeParagraph {
		t.Fatalf("root children = %d", root.ChildCount())
	}
	if d.TextContent() != "loose words" {
		t.Errorf("text = %q", d.TextContent())
	}
}

func TestRoundTrip_ParagraphStyle(t *testing.T) {
	d := parse(t, `<p style="text-align: center; line-height: 1.5">x</p>`)
	p := d.Root().Child(0)
	if p.Attrs().String("textAlign") != "center" || p.Attrs().String("style") != "line-height: 1.5" {
		t.Errorf("attrs = %v", p.Attrs())
	}
	roundTrip(t, d)
}

// ──────────────────────────────────────────────────────────────────────────────
// Starter blocks
// ──────────────────────────────────────────────────────────────────────────────

func TestRoundTrip_StarterBlocks(t *testing.T) {
	src := `<h2>Title</h2>` +
		`<ul><li><p>one</p></li><li>two</li></ul>` +
		`<ol><li><p>first</p></li></ol>` +
		`<blockquote><p>quoted</p></blockquote>` +
		`<pre><code class="language-go">x := 1</code></pre>` +
		`<table><tr><td>a</td><td><p>b</p></td></tr></table>` +
		`<img src="cat.png" style="max-width:100%">` +
		`<p>line<br>break</p>`
	d := parse(t, src)
	again, _ := roundTrip(t, d)

	var types []doc.NodeType
	for _, c := range again.Root().Children() {
		types = append(types, c.Type())
	}
	want := []doc.NodeType{
		doc.TypeHeading, doc.TypeBulletList, doc.TypeOrderedList, doc.TypeBlockquote,
		doc.TypeCodeBlock, doc.TypeTable, doc.TypeImage, doc.TypeParagraph,
	}
	if len(types) != len(want) {
		t.Fatalf("blocks = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("block %d = %s, want %s", i, types[i], want[i])
		}
	}
	root := again.Root()
	if root.Child(0).Attrs().Int("level") != 2 {
		t.Errorf("heading level = %v", root.Child(0).Attrs())
	}
	if root.Child(4).Attrs().String("language") != "go" || root.Child(4).TextContent() != "x := 1" {
		t.Errorf("code block = %v %q", root.Child(4).Attrs(), root.Child(4).TextContent())
	}
	if root.Child(6).Attrs().String("src") != "cat.png" {
		t.Errorf("image attrs = %v", root.Child(6).Attrs())
	}
	if root.Child(7).Child(1).Type() != doc.TypeHardBreak {
		t.Errorf("hard break missing")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Markdown import
// ──────────────────────────────────────────────────────────────────────────────

func importMD(t *testing.T, src string) *doc.Document {
	t.Helper()
	a4, _ := page.Lookup(page.A4)
	d, err := Default().ImportMarkdown(strings.NewReader(src), ImportOptions{Size: a4, Margins: page.Uniform(1)})
	if err != nil {
		t.Fatalf("ImportMarkdown: %v", err)
	}
	return d
}

func TestImportMarkdown_ThematicBreakStartsPage(t *testing.T) {
	d := importMD(t, "# One\n\nFirst page.\n\n---\n\nSecond *page*.\n\n***\n\n- a\n- b\n")
	root := d.Root()
	if root.ChildCount() != 3 {
		t.Fatalf("pages = %d, want 3", root.ChildCount())
	}
	for i, p := range root.Children() {
		if p.Type() != doc.TypePage || p.Attrs().Int(extension.AttrPageIndex) != i+1 {
			t.Errorf("page %d = %s %v", i+1, p.Type(), p.Attrs())
		}
	}
	if root.Child(0).Child(0).Type() != doc.TypeHeading {
		t.Error("first page should open with a heading")
	}
	if root.Child(2).Child(0).Type() != doc.TypeBulletList {
		t.Error("third page should hold the list")
	}
	if got := d.TextContent(); got != "OneFirst page.Second page.ab" {
		t.Errorf("text = %q", got)
	}
}

func TestImportMarkdown_InlineMarks(t *testing.T) {
	d := importMD(t, "Some **bold**, _em_, `code` and [a link](https://x.test).\n")
	para := d.Root().Child(0).Child(0)
	marks := map[doc.MarkType]string{}
	for _, run := range para.Children() {
		for _, m := range run.Marks() {
			marks[m.Type] = run.Text()
			if m.Type == doc.MarkLink && m.Attrs.String("href") != "https://x.test" {
				t.Errorf("href = %q", m.Attrs.String("href"))
			}
		}
	}
	if marks[doc.MarkBold] != "bold" || marks[doc.MarkItalic] != "em" ||
		marks[doc.MarkCode] != "code" || marks[doc.MarkLink] != "a link" {
		t.Errorf("marks = %v", marks)
	}
}

func TestImportMarkdown_Empty(t *testing.T) {
	d := importMD(t, "")
	if d.Root().ChildCount() != 1 || d.Root().Child(0).Type() != doc.TypePage {
		t.Errorf("empty import should yield one page")
	}
}

func TestImportMarkdown_CodeFence(t *testing.T) {
	d := importMD(t, "```go\nfmt.Println(1)\n```\n")
	cb := d.Root().Child(0).Child(0)
	if cb.Type() != doc.TypeCodeBlock || cb.Attrs().String("language") != "go" || cb.TextContent() != "fmt.Println(1)" {
		t.Errorf("code block = %s %v %q", cb.Type(), cb.Attrs(), cb.TextContent())
	}
}
