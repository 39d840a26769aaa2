package doc

import (
	"errors"
	"testing"
)

func testSchema() *Schema {
	return NewSchema(map[NodeType]NodeSpec{
		TypePage:      {Group: "block", Content: "block+", Isolating: true, Attrs: Attrs{"pageIndex": 1}},
		TypeHeader:    {Group: "block", Content: "inline*"},
		TypeFooter:    {Group: "block", Content: "inline*"},
		TypeWatermark: {Group: "block", Atom: true, Attrs: Attrs{"text": "WATERMARK"}},
		TypeParagraph: {Group: "block", Content: "inline*"},
		TypeHardBreak: {Group: "inline", Inline: true},
	}, map[MarkType]MarkSpec{
		MarkBold: {},
		MarkLink: {Attrs: Attrs{"href": ""}},
	})
}

func para(s string) Content {
	if s == "" {
		return Elem(TypeParagraph, nil)
	}
	return Elem(TypeParagraph, nil, Text(s))
}

func pageOf(index int, children ...Content) Content {
	return Elem(TypePage, Attrs{"pageIndex": index}, children...)
}

// twoPages builds:
//
//	0 <page> 1 <p> 2 "Hello" 7 </p> 8 </page> 9 <page> 10 <p> 11 "World" 16 </p> 17 </page> 18
func twoPages(t *testing.T) *Document {
	t.Helper()
	d, err := New(testSchema(), Elem(TypeDoc, nil, pageOf(1, para("Hello")), pageOf(2, para("World"))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Construction and sizes
// ──────────────────────────────────────────────────────────────────────────────

func TestNew_ComputesSizes(t *testing.T) {
	d := twoPages(t)
	if got := d.ContentSize(); got != 18 {
		t.Errorf("ContentSize = %d, want 18", got)
	}
	if got := d.TextContent(); got != "HelloWorld" {
		t.Errorf("TextContent = %q", got)
	}
	first := d.Root().Child(0)
	if first.Size() != 9 || first.ContentSize() != 7 {
		t.Errorf("page sizes = %d/%d, want 9/7", first.Size(), first.ContentSize())
	}
}

func TestNew_AppliesAttrDefaults(t *testing.T) {
	d, err := New(testSchema(), Elem(TypeDoc, nil, pageOf(1, para(""), Elem(TypeWatermark, nil))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	wm := d.Root().Child(0).Child(1)
	if wm.Type() != TypeWatermark || wm.Attr("text") != "WATERMARK" {
		t.Errorf("watermark attrs = %v", wm.Attrs())
	}
	if wm.Size() != 1 {
		t.Errorf("atom size = %d, want 1", wm.Size())
	}
}

func TestNew_RejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name string
		root Content
		want error
	}{
		{"wrong root", pageOf(1, para("x")), ErrContentViolation},
		{"empty doc", Elem(TypeDoc, nil), ErrContentViolation},
		{"empty page", Elem(TypeDoc, nil, pageOf(1)), ErrContentViolation},
		{"text in doc", Elem(TypeDoc, nil, Text("loose")), ErrContentViolation},
		{"unknown type", Elem(TypeDoc, nil, Elem("chart", nil)), ErrUnknownType},
		{"children on leaf", Elem(TypeDoc, nil, pageOf(1, Elem(TypeWatermark, nil, para("x")))), ErrContentViolation},
		{"unknown mark", Elem(TypeDoc, nil, Elem(TypeParagraph, nil, Text("x", Mark{Type: "blink"}))), ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(testSchema(), tt.root); !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNode_IDsAreUnique(t *testing.T) {
	d := twoPages(t)
	seen := map[NodeID]bool{}
	d.Descendants(func(n *Node, _ int) bool {
		if seen[n.ID()] {
			t.Errorf("duplicate id %d", n.ID())
		}
		seen[n.ID()] = true
		return true
	})
	if len(seen) != 6 {
		t.Errorf("visited %d nodes, want 6", len(seen))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Traversal and lookup
// ──────────────────────────────────────────────────────────────────────────────

func TestDescendants_Positions(t *testing.T) {
	d := twoPages(t)
	type visit struct {
		typ NodeType
		pos int
	}
	var got []visit
	d.Descendants(func(n *Node, pos int) bool {
		got = append(got, visit{n.Type(), pos})
		return true
	})
	want := []visit{
		{TypePage, 0}, {TypeParagraph, 1}, {TypeText, 2},
		{TypePage, 9}, {TypeParagraph, 10}, {TypeText, 11},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDescendants_SkipChildren(t *testing.T) {
	d := twoPages(t)
	count := 0
	d.Descendants(func(n *Node, _ int) bool {
		count++
		return n.Type() != TypePage
	})
	if count != 2 {
		t.Errorf("visited %d nodes, want 2", count)
	}
}

func TestNodeAt(t *testing.T) {
	d := twoPages(t)
	tests := []struct {
		pos  int
		want NodeType
		err  error
	}{
		{0, TypePage, nil},
		{1, TypeParagraph, nil},
		{9, TypePage, nil},
		{18, "", ErrNoNodeAtPosition},
		{19, "", ErrInvalidPosition},
		{4, "", ErrInvalidPosition},
	}
	for _, tt := range tests {
		n, err := d.NodeAt(tt.pos)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("NodeAt(%d) error = %v, want %v", tt.pos, err, tt.err)
			}
			continue
		}
		if err != nil || n.Type() != tt.want {
			t.Errorf("NodeAt(%d) = %v, %v; want %s", tt.pos, n, err, tt.want)
		}
	}
}

func TestClosest(t *testing.T) {
	d := twoPages(t)
	r, ok := d.Closest(13, TypePage)
	if !ok || r.From != 9 || r.To != 18 || r.Node.Attrs().Int("pageIndex") != 2 {
		t.Errorf("Closest(13) = %+v, %v", r, ok)
	}
	if _, ok := d.Closest(9, TypePage); ok {
		t.Error("position before a page is not inside it")
	}
	if _, ok := d.Closest(0, TypePage); ok {
		t.Error("document start is not inside a page")
	}
	r, ok = d.Closest(3, TypeParagraph)
	if !ok || r.From != 1 || r.To != 8 {
		t.Errorf("Closest(3, paragraph) = %+v, %v", r, ok)
	}
}

func TestSetSelection_Clamps(t *testing.T) {
	d := twoPages(t)
	d.SetSelection(40, -3)
	if got := d.Selection(); got.From != 0 || got.To != 18 {
		t.Errorf("Selection = %+v", got)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────────────────────────────────

func TestTx_InsertAtBoundaries(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	// Descending order keeps the earlier position valid.
	if err := tx.Insert(17, Elem(TypeFooter, nil)); err != nil {
		t.Fatalf("Insert footer: %v", err)
	}
	if err := tx.Insert(1, Elem(TypeHeader, nil, Text("Top"))); err != nil {
		t.Fatalf("Insert header: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	p1, p2 := d.Root().Child(0), d.Root().Child(1)
	if p1.Child(0).Type() != TypeHeader || p1.Child(0).TextContent() != "Top" {
		t.Errorf("page 1 first child = %s", p1.Child(0).Type())
	}
	if p2.Child(p2.ChildCount()-1).Type() != TypeFooter {
		t.Errorf("page 2 last child = %s", p2.Child(p2.ChildCount()-1).Type())
	}
}

func TestTx_InsertRejectsBadTargets(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	if err := tx.Insert(99, para("x")); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("out of bounds error = %v", err)
	}
	if err := tx.Insert(4, para("x")); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("inside text error = %v", err)
	}
	if err := tx.Insert(2, para("x")); !errors.Is(err, ErrContentViolation) {
		t.Errorf("block inside paragraph error = %v", err)
	}
	if tx.Changed() {
		t.Error("failed inserts must not mark the transaction changed")
	}
}

func TestTx_NotVisibleBeforeCommit(t *testing.T) {
	d := twoPages(t)
	before := d.Root()
	tx := d.Begin()
	if err := tx.Insert(18, pageOf(3, para("Three"))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if d.Root().ChildCount() != 2 {
		t.Error("uncommitted insert is visible")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if d.Root().ChildCount() != 3 {
		t.Errorf("committed child count = %d", d.Root().ChildCount())
	}
	if before.ChildCount() != 2 {
		t.Error("old snapshot was mutated")
	}
}

func TestTx_SetAttrs(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	if err := tx.SetAttrs(9, Attrs{"pageIndex": 7}); err != nil {
		t.Fatalf("SetAttrs: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := d.Root().Child(1).Attrs().Int("pageIndex"); got != 7 {
		t.Errorf("pageIndex = %d", got)
	}
}

func TestTx_DeleteRange(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	if err := tx.DeleteRange(9, 18); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if d.Root().ChildCount() != 1 || d.TextContent() != "Hello" {
		t.Errorf("after delete: %d pages, %q", d.Root().ChildCount(), d.TextContent())
	}
}

func TestTx_DeleteRangeErrors(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	if err := tx.DeleteRange(1, 9); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("cross-level range error = %v", err)
	}
	if err := tx.DeleteRange(0, 18); !errors.Is(err, ErrContentViolation) {
		t.Errorf("emptying the doc error = %v", err)
	}
	if err := tx.DeleteRange(5, 5); err != nil || tx.Changed() {
		t.Errorf("empty range: err=%v changed=%v", err, tx.Changed())
	}
}

func TestTx_AddMarkSplitsRuns(t *testing.T) {
	d := twoPages(t)
	tx := d.Begin()
	// "Hello" spans [2, 7); bold "ell".
	if err := tx.AddMark(3, 6, Mark{Type: MarkBold}); err != nil {
		t.Fatalf("AddMark: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	p := d.Root().Child(0).Child(0)
	if p.ChildCount() != 3 {
		t.Fatalf("paragraph has %d runs, want 3", p.ChildCount())
	}
	wantText := []string{"H", "ell", "o"}
	wantBold := []bool{false, true, false}
	for i := 0; i < 3; i++ {
		run := p.Child(i)
		if run.Text() != wantText[i] || run.HasMark(MarkBold) != wantBold[i] {
			t.Errorf("run %d = %q bold=%v", i, run.Text(), run.HasMark(MarkBold))
		}
	}
	if d.ContentSize() != 18 {
		t.Errorf("marking changed the size: %d", d.ContentSize())
	}
}

func TestTx_RemoveMark(t *testing.T) {
	d, err := New(testSchema(), Elem(TypeDoc, nil, pageOf(1, Elem(TypeParagraph, nil, Text("bold", Mark{Type: MarkBold})))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tx := d.Begin()
	if err := tx.RemoveMark(0, d.ContentSize(), MarkBold); err != nil {
		t.Fatalf("RemoveMark: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	run := d.Root().Child(0).Child(0).Child(0)
	if run.HasMark(MarkBold) || run.Text() != "bold" {
		t.Errorf("run = %q marks=%v", run.Text(), run.Marks())
	}
}

func TestTx_ReplacesSameTypeMark(t *testing.T) {
	d := twoPages(t)
	for _, href := range []string{"a", "b"} {
		tx := d.Begin()
		if err := tx.AddMark(2, 7, Mark{Type: MarkLink, Attrs: Attrs{"href": href}}); err != nil {
			t.Fatalf("AddMark: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}
	marks := d.Root().Child(0).Child(0).Child(0).Marks()
	if len(marks) != 1 || marks[0].Attrs.String("href") != "b" {
		t.Errorf("marks = %+v", marks)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Change notification
// ──────────────────────────────────────────────────────────────────────────────

func TestOnChange_FiresOnlyWhenChanged(t *testing.T) {
	d := twoPages(t)
	calls := 0
	cancel := d.OnChange(func(*Document) { calls++ })

	tx := d.Begin()
	_ = tx.SetAttrs(0, Attrs{"pageIndex": 1})
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if calls != 0 {
		t.Errorf("no-op commit notified %d times", calls)
	}

	tx = d.Begin()
	_ = tx.SetAttrs(0, Attrs{"pageIndex": 5})
	_ = tx.Commit()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	cancel()
	tx = d.Begin()
	_ = tx.SetAttrs(0, Attrs{"pageIndex": 6})
	_ = tx.Commit()
	if calls != 1 {
		t.Errorf("unsubscribed listener still called: %d", calls)
	}
}

func TestCommit_Conflict(t *testing.T) {
	d := twoPages(t)
	a, b := d.Begin(), d.Begin()
	_ = a.SetAttrs(0, Attrs{"pageIndex": 3})
	_ = b.SetAttrs(9, Attrs{"pageIndex": 4})
	if err := a.Commit(); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := b.Commit(); !errors.Is(err, ErrConflict) {
		t.Errorf("second commit error = %v, want ErrConflict", err)
	}
	if err := b.Commit(); !errors.Is(err, ErrClosed) {
		t.Errorf("reuse error = %v, want ErrClosed", err)
	}
}

func TestAttrs_Accessors(t *testing.T) {
	a := Attrs{"w": "8.27in", "i": 3, "f": 1.5, "s": "x"}
	if a.Float("w") != 8.27 || a.Float("i") != 3 || a.Float("s") != 0 {
		t.Errorf("Float mismatch: %v %v %v", a.Float("w"), a.Float("i"), a.Float("s"))
	}
	if a.Int("f") != 1 || a.Int("i") != 3 {
		t.Errorf("Int mismatch")
	}
	if a.String("f") != "1.5" || a.String("missing") != "" {
		t.Errorf("String mismatch")
	}
	merged := a.Merge(Attrs{"s": "y"})
	if merged.String("s") != "y" || a.String("s") != "x" {
		t.Error("Merge must not mutate the receiver")
	}
}
