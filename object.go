package bencode

// ObjectKind identifies which variant of the decoder's higher-level
// Object view is populated.
type ObjectKind int

const (
	ObjList ObjectKind = iota
	ObjDict
	ObjInteger
	ObjBytes
)

// Object is the decoder-side view over one bencode value: either an
// atom (Integer text / Bytes slice) or a scoped view into a List or
// Dict (spec.md §3 "Object (decoder view)").
//
// An Object borrows from the Decoder that produced it; a List or Dict
// Object must be fully consumed, or closed with its view's Close
// method, before the parent Decoder is read from again. An abandoned
// view is not drained on its own: the parent keeps rejecting reads.
type Object struct {
	kind ObjectKind

	num   []byte
	bytes []byte
	list  *ListDecoder
	dict  *DictDecoder
}

// Kind reports which variant this Object holds.
func (o *Object) Kind() ObjectKind { return o.kind }

// Integer returns the textual integer body when Kind is ObjInteger,
// and ok=false otherwise. The text is exactly what appeared between
// 'i' and 'e' — parsing it into a numeric type is the caller's job
// (spec.md "Integer carrying as text").
func (o *Object) Integer() (text []byte, ok bool) {
	if o.kind != ObjInteger {
		return nil, false
	}
	return o.num, true
}

// Bytes returns the byte string payload when Kind is ObjBytes, and
// ok=false otherwise.
func (o *Object) Bytes() (b []byte, ok bool) {
	if o.kind != ObjBytes {
		return nil, false
	}
	return o.bytes, true
}

// List returns the list view when Kind is ObjList, and ok=false
// otherwise.
func (o *Object) List() (l *ListDecoder, ok bool) {
	if o.kind != ObjList {
		return nil, false
	}
	return o.list, true
}

// Dict returns the dict view when Kind is ObjDict, and ok=false
// otherwise.
func (o *Object) Dict() (d *DictDecoder, ok bool) {
	if o.kind != ObjDict {
		return nil, false
	}
	return o.dict, true
}

// view is the shared plumbing between ListDecoder and DictDecoder: a
// scoped, exclusive loan of the parent Decoder covering one
// container, from just after its opening marker to its matching End.
//
// A view's methods call parent.nextObjectInternal directly — they
// hold the loan and are the legitimate way to keep advancing the
// shared decoder position while parent.childOpen is set. Any other
// caller trying to read from parent while the view is alive goes
// through the guarded parent.NextObject/NextToken and is rejected.
type view struct {
	parent    *Decoder
	openedAt  int  // d.Pos() right after the opening List/Dict token
	closedAt  int  // d.Pos() when the view finished
	outerOpen bool // parent.childOpen before this view opened
	finished  bool
}

func newView(parent *Decoder) view {
	v := view{parent: parent, openedAt: parent.Pos(), outerOpen: parent.childOpen}
	parent.childOpen = true
	return v
}

// rawBytes returns the exact input slice from the container's opening
// marker through its matching End, inclusive (spec.md "a view also
// exposes its original raw slice"). Before the view has finished it
// returns the bytes read so far.
func (v *view) rawBytes() []byte {
	if v.finished {
		return v.parent.buf[v.openedAt-1 : v.closedAt]
	}
	return v.parent.buf[v.openedAt-1 : v.parent.pos]
}

// release closes the child-open loan on the parent, regardless of
// whether the container was fully drained. A nested view hands the
// loan back to the enclosing view rather than clearing it.
func (v *view) release() {
	if !v.finished {
		v.finished = true
		v.closedAt = v.parent.pos
		v.parent.childOpen = v.outerOpen
	}
}

// ListDecoder is a scoped view over one list's contents: repeated
// calls to NextObject yield the list's items in order.
type ListDecoder struct {
	view
}

func newListDecoder(parent *Decoder) *ListDecoder {
	return &ListDecoder{view: newView(parent)}
}

// NextObject returns the list's next item, or (nil, nil) once the
// matching End has been consumed.
func (l *ListDecoder) NextObject() (*Object, error) {
	if l.finished {
		return nil, nil
	}
	obj, err := l.parent.nextObjectInternal()
	if err != nil {
		l.release()
		return nil, err
	}
	if obj == nil {
		l.release()
		return nil, nil
	}
	return obj, nil
}

// RawBytes returns the exact input slice spanning this list, from its
// opening 'l' through its matching 'e', once the view has consumed
// that End (NextObject returned (nil, nil), or Close ran). Before
// that it returns only the bytes read so far.
func (l *ListDecoder) RawBytes() []byte { return l.rawBytes() }

// Close drains any unread items, swallowing errors (they remain
// latched on the parent decoder's tracker and will resurface on its
// next use). Call this when you stop consuming a list before reaching
// its end — spec.md §5 "Resource acquisition"; a ListDecoder that is
// simply dropped is not drained.
func (l *ListDecoder) Close() {
	for !l.finished {
		obj, err := l.NextObject()
		if err != nil {
			return
		}
		if obj == nil {
			return
		}
		if sub, ok := obj.List(); ok {
			sub.Close()
		} else if sub, ok := obj.Dict(); ok {
			sub.Close()
		}
	}
}

// DictDecoder is a scoped view over one dict's contents: repeated
// calls to NextPair yield (key, value) pairs in ascending key order.
type DictDecoder struct {
	view
}

func newDictDecoder(parent *Decoder) *DictDecoder {
	return &DictDecoder{view: newView(parent)}
}

// NextPair reads one key then its value. It returns (nil, nil, nil)
// once the matching End has been consumed. The key is always a byte
// string — the StateTracker independently enforces that dict keys are
// strings and strictly ascending, so a non-string key surfaces as a
// StructureError before NextPair would otherwise return one.
func (d *DictDecoder) NextPair() (key []byte, value *Object, err error) {
	if d.finished {
		return nil, nil, nil
	}

	keyObj, err := d.parent.nextObjectInternal()
	if err != nil {
		d.release()
		return nil, nil, err
	}
	if keyObj == nil {
		d.release()
		return nil, nil, nil
	}
	keyBytes, ok := keyObj.Bytes()
	if !ok {
		d.release()
		return nil, nil, invalidState("Map keys must be strings")
	}

	valObj, err := d.parent.nextObjectInternal()
	if err != nil {
		d.release()
		return nil, nil, err
	}

	return keyBytes, valObj, nil
}

// RawBytes returns the exact input slice spanning this dict, from its
// opening 'd' through its matching 'e', once the view has consumed
// that End. Before that it returns only the bytes read so far.
func (d *DictDecoder) RawBytes() []byte { return d.rawBytes() }

// Close drains any unread pairs, swallowing errors (they remain
// latched on the parent decoder's tracker and will resurface on its
// next use).
func (d *DictDecoder) Close() {
	for !d.finished {
		_, val, err := d.NextPair()
		if err != nil {
			return
		}
		if val == nil {
			return
		}
		if sub, ok := val.List(); ok {
			sub.Close()
		} else if sub, ok := val.Dict(); ok {
			sub.Close()
		}
	}
}
