package ops

import (
	"errors"
	"testing"

	"github.com/eykd/pagemark-go/internal/doc"
)

func schema() *doc.Schema {
	return doc.NewSchema(map[doc.NodeType]doc.NodeSpec{
		doc.TypePage:      {Group: "block", Content: "block+", Isolating: true, Attrs: doc.Attrs{"pageIndex": 1}},
		doc.TypeHeader:    {Group: "block", Content: "inline*"},
		doc.TypeFooter:    {Group: "block", Content: "inline*"},
		doc.TypeWatermark: {Group: "block", Atom: true, Attrs: doc.Attrs{"text": "WATERMARK"}},
		doc.TypeParagraph: {Group: "block", Content: "inline*"},
	}, nil)
}

// pages builds a document with one paragraph per page, indexed as given.
func pages(t *testing.T, indices ...int) *doc.Document {
	t.Helper()
	var children []doc.Content
	for _, i := range indices {
		children = append(children, doc.Elem(doc.TypePage, doc.Attrs{"pageIndex": i},
			doc.Elem(doc.TypeParagraph, nil, doc.Text("body"))))
	}
	d, err := doc.New(schema(), doc.Elem(doc.TypeDoc, nil, children...))
	if err != nil {
		t.Fatalf("doc.New: %v", err)
	}
	return d
}

func countType(d *doc.Document, t doc.NodeType) int {
	return len(Find(d, t, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Insert
// ──────────────────────────────────────────────────────────────────────────────

func TestInsert_IsIdempotent(t *testing.T) {
	d := pages(t, 1, 2, 3)
	opts := InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage, Position: PositionStart}

	for call := 1; call <= 3; call++ {
		n, err := Insert(d, opts)
		if err != nil {
			t.Fatalf("call %d: %v", call, err)
		}
		want := 0
		if call == 1 {
			want = 3
		}
		if n != want {
			t.Errorf("call %d inserted %d, want %d", call, n, want)
		}
	}
	for _, p := range d.Root().Children() {
		headers := 0
		for _, c := range p.Children() {
			if c.Type() == doc.TypeHeader {
				headers++
			}
		}
		if headers != 1 {
			t.Errorf("page has %d headers, want 1", headers)
		}
	}
}

func TestInsert_StartAndEnd(t *testing.T) {
	d := pages(t, 1, 2)
	if _, err := Insert(d, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage, Position: PositionStart}); err != nil {
		t.Fatal(err)
	}
	if _, err := Insert(d, InsertOptions{Type: doc.TypeFooter, Inside: doc.TypePage, Position: PositionEnd,
		Content: []doc.Content{doc.Text("foot")}}); err != nil {
		t.Fatal(err)
	}
	for i, p := range d.Root().Children() {
		first, last := p.Child(0), p.Child(p.ChildCount()-1)
		if first.Type() != doc.TypeHeader {
			t.Errorf("page %d first child = %s", i+1, first.Type())
		}
		if last.Type() != doc.TypeFooter || last.TextContent() != "foot" {
			t.Errorf("page %d last child = %s %q", i+1, last.Type(), last.TextContent())
		}
	}
}

func TestInsert_ExplicitOffset(t *testing.T) {
	d := pages(t, 1)
	// Offset 1 is just inside the page.
	n, err := Insert(d, InsertOptions{Type: doc.TypeWatermark, Inside: doc.TypePage, Position: PositionOffset, Offset: 1})
	if err != nil || n != 1 {
		t.Fatalf("Insert = %d, %v", n, err)
	}
	if d.Root().Child(0).Child(0).Type() != doc.TypeWatermark {
		t.Error("watermark not at page start")
	}
}

func TestInsert_OffsetOutOfBoundsAbortsBatch(t *testing.T) {
	d := pages(t, 1, 2)
	before := d.ContentSize()
	calls := 0
	d.OnChange(func(*doc.Document) { calls++ })
	_, err := Insert(d, InsertOptions{Type: doc.TypeWatermark, Inside: doc.TypePage, Position: PositionOffset, Offset: 500})
	if !errors.Is(err, doc.ErrInvalidPosition) {
		t.Errorf("error = %v, want ErrInvalidPosition", err)
	}
	if d.ContentSize() != before || calls != 0 {
		t.Errorf("document changed after failed insert (size %d, calls %d)", d.ContentSize(), calls)
	}
}

func TestInsert_NoChangeDoesNotNotify(t *testing.T) {
	d := pages(t, 1)
	if _, err := Insert(d, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage}); err != nil {
		t.Fatal(err)
	}
	calls := 0
	d.OnChange(func(*doc.Document) { calls++ })
	if _, err := Insert(d, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage}); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("idempotent insert notified %d times", calls)
	}
}

func TestInsert_NilDocument(t *testing.T) {
	if n, err := Insert(nil, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage}); n != 0 || err != nil {
		t.Errorf("Insert(nil) = %d, %v", n, err)
	}
	if n, err := Update(nil, UpdateOptions{Type: doc.TypePage}); n != 0 || err != nil {
		t.Errorf("Update(nil) = %d, %v", n, err)
	}
	if n, err := Delete(nil, DeleteOptions{Type: doc.TypePage}); n != 0 || err != nil {
		t.Errorf("Delete(nil) = %d, %v", n, err)
	}
	if n, err := RenumberPages(nil); n != 0 || err != nil {
		t.Errorf("RenumberPages(nil) = %d, %v", n, err)
	}
}

func TestInsert_UnknownPosition(t *testing.T) {
	d := pages(t, 1)
	if _, err := Insert(d, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage, Position: "middle"}); err == nil {
		t.Error("expected error for unknown position")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_MergesAttrs(t *testing.T) {
	d := pages(t, 1, 2)
	n, err := Update(d, UpdateOptions{Type: doc.TypePage, Attrs: doc.Attrs{"pagePaddingTop": "0.5in"}})
	if err != nil || n != 2 {
		t.Fatalf("Update = %d, %v", n, err)
	}
	for i, p := range d.Root().Children() {
		a := p.Attrs()
		if a.String("pagePaddingTop") != "0.5in" || a.Int("pageIndex") != i+1 {
			t.Errorf("page %d attrs = %v", i+1, a)
		}
	}
}

func TestUpdate_Predicate(t *testing.T) {
	d := pages(t, 1, 2)
	only2 := func(n *doc.Node) bool { return n.Attrs().Int("pageIndex") == 2 }
	n, err := Update(d, UpdateOptions{Type: doc.TypePage, Predicate: only2, Attrs: doc.Attrs{"pageWidth": "8.5in"}})
	if err != nil || n != 1 {
		t.Fatalf("Update = %d, %v", n, err)
	}
	if d.Root().Child(0).Attrs().String("pageWidth") != "" {
		t.Error("predicate did not exclude page 1")
	}
}

func TestUpdate_SkipsWhenUnchanged(t *testing.T) {
	d := pages(t, 1)
	calls := 0
	d.OnChange(func(*doc.Document) { calls++ })
	n, err := Update(d, UpdateOptions{Type: doc.TypePage, Attrs: doc.Attrs{"pageIndex": 1}})
	if err != nil || n != 0 || calls != 0 {
		t.Errorf("Update = %d, %v, calls %d", n, err, calls)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_RemovesEveryMatch(t *testing.T) {
	d := pages(t, 1, 2, 3)
	if _, err := Insert(d, InsertOptions{Type: doc.TypeHeader, Inside: doc.TypePage}); err != nil {
		t.Fatal(err)
	}
	if _, err := Insert(d, InsertOptions{Type: doc.TypeFooter, Inside: doc.TypePage, Position: PositionEnd}); err != nil {
		t.Fatal(err)
	}
	n, err := Delete(d, DeleteOptions{Type: doc.TypeHeader})
	if err != nil || n != 3 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if countType(d, doc.TypeHeader) != 0 || countType(d, doc.TypeFooter) != 3 {
		t.Errorf("headers=%d footers=%d", countType(d, doc.TypeHeader), countType(d, doc.TypeFooter))
	}
	if d.TextContent() != "bodybodybody" {
		t.Errorf("body text changed: %q", d.TextContent())
	}
}

func TestDelete_NothingToDelete(t *testing.T) {
	d := pages(t, 1)
	n, err := Delete(d, DeleteOptions{Type: doc.TypeWatermark})
	if err != nil || n != 0 {
		t.Errorf("Delete = %d, %v", n, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RenumberPages
// ──────────────────────────────────────────────────────────────────────────────

func TestRenumberPages_Sequential(t *testing.T) {
	d := pages(t, 1, 2, 2, 3)
	n, err := RenumberPages(d)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("changed %d pages, want 2", n)
	}
	for i, p := range d.Root().Children() {
		if got := p.Attrs().Int("pageIndex"); got != i+1 {
			t.Errorf("page %d has index %d", i+1, got)
		}
	}
	if n, _ := RenumberPages(d); n != 0 {
		t.Errorf("second pass changed %d pages", n)
	}
}
