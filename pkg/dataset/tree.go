package dataset

// Tree indexes one data tree: id lookup, parent lookup and the shared
// dataset metadata. Items never point back at their parent or at Meta; the
// tree is the only place those relations live, and it is rebuilt whenever
// the items are reconstructed.
type Tree struct {
	Root *Item
	Meta *Meta

	byID   map[string]*Item
	parent map[*Item]*Item
	size   int
}

// NewTree indexes root without normalizing it. A nil meta is treated as a
// dataset without revisions.
func NewTree(root *Item, meta *Meta) *Tree {
	if meta == nil {
		meta = &Meta{}
	}
	t := &Tree{Root: root, Meta: meta}
	t.Rebuild()
	return t
}

// Rebuild recomputes the id and parent tables from the current items.
// When ids repeat, the item visited last in post-order wins.
func (t *Tree) Rebuild() {
	t.byID = make(map[string]*Item)
	t.parent = make(map[*Item]*Item)
	t.size = 0
	Walk(t.Root, func(it *Item) {
		t.size++
		t.byID[it.ID] = it
		for _, c := range it.Children {
			t.parent[c] = it
		}
	})
}

// Lookup returns the item with the given id.
func (t *Tree) Lookup(id string) (*Item, bool) {
	it, ok := t.byID[id]
	return it, ok
}

// Parent returns the parent of it. The root has none.
func (t *Tree) Parent(it *Item) (*Item, bool) {
	p, ok := t.parent[it]
	return p, ok
}

// IsRoot reports whether it is the root of the tree.
func (t *Tree) IsRoot(it *Item) bool { return it != nil && it == t.Root }

// Depth returns the number of ancestors of it (0 for the root).
func (t *Tree) Depth(it *Item) int {
	d := 0
	for p, ok := t.parent[it]; ok; p, ok = t.parent[p] {
		d++
	}
	return d
}

// Len returns the number of items in the tree.
func (t *Tree) Len() int { return t.size }

// Walk visits every item in post-order.
func (t *Tree) Walk(fn func(*Item)) { Walk(t.Root, fn) }
