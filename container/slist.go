package container

import "github.com/Integerfox/kit.core-sub000/fault"

// SinglyList is a singly linked intrusive list that preserves application
// insertion order. The zero value is a valid, empty list; there is no
// explicit constructor, so a SinglyList can be declared as a plain
// struct field and used immediately.
//
// SinglyList is not safe for concurrent use without external locking, and
// must not be copied after first use (its head/tail reference elements
// that point back into it via their owner field).
type SinglyList[E SElem] struct {
	_    [0]func() // noCopy marker
	head SElem
	tail SElem
}

// PutFirst inserts item as the new head of the list.
func (l *SinglyList[E]) PutFirst(item E) {
	li := item.Link()
	if !insertGuard(li.owner) {
		return
	}
	li.owner = l
	li.next = l.head
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
}

// PutLast inserts item as the new tail of the list.
func (l *SinglyList[E]) PutLast(item E) {
	li := item.Link()
	if !insertGuard(li.owner) {
		return
	}
	li.owner = l
	li.next = nil
	if l.tail == nil {
		l.head = item
	} else {
		l.tail.Link().next = item
	}
	l.tail = item
}

// GetFirst removes and returns the first item in the list.
func (l *SinglyList[E]) GetFirst() (out E, ok bool) {
	if l.head == nil {
		return out, false
	}
	item := l.head
	li := item.Link()
	l.head = li.next
	if l.head == nil {
		l.tail = nil
	}
	li.next = nil
	li.owner = nil
	return item.(E), true
}

// GetLast removes and returns the last item in the list. O(n): a singly
// linked list must walk from head to find the predecessor of tail.
func (l *SinglyList[E]) GetLast() (out E, ok bool) {
	if l.tail == nil {
		return out, false
	}
	if l.head == l.tail {
		return l.GetFirst()
	}
	prev := l.head
	for prev.Link().next != l.tail {
		prev = prev.Link().next
	}
	item := l.tail
	li := item.Link()
	prev.Link().next = nil
	l.tail = prev
	li.next = nil
	li.owner = nil
	return item.(E), true
}

// First returns the first item without removing it.
func (l *SinglyList[E]) First() (out E, ok bool) {
	if l.head == nil {
		return out, false
	}
	return l.head.(E), true
}

// Last returns the last item without removing it.
func (l *SinglyList[E]) Last() (out E, ok bool) {
	if l.tail == nil {
		return out, false
	}
	return l.tail.(E), true
}

// Next returns the item following item, or ok=false at end of list.
// Fatal-errors (fault.CodeContainer) if item is not a member of this list.
func (l *SinglyList[E]) Next(item E) (out E, ok bool) {
	li := item.Link()
	if li.owner != any(l) {
		fault.Raise(fault.CodeContainer, "container: next() called on an item that is not in this list")
		return out, false
	}
	if li.next == nil {
		return out, false
	}
	return li.next.(E), true
}

// Find reports whether item currently belongs to this list.
func (l *SinglyList[E]) Find(item E) bool {
	return item.Link().owner == any(l)
}

// Remove detaches item from the list. Returns false if item was not a
// member (this is a recoverable condition per the design, not fatal).
func (l *SinglyList[E]) Remove(item E) bool {
	li := item.Link()
	if li.owner != any(l) {
		return false
	}
	if l.head == SElem(item) {
		l.head = li.next
		if l.head == nil {
			l.tail = nil
		}
		li.next = nil
		li.owner = nil
		return true
	}
	prev := l.head
	for prev != nil {
		pli := prev.Link()
		if pli.next == SElem(item) {
			pli.next = li.next
			if l.tail == SElem(item) {
				l.tail = prev
			}
			li.next = nil
			li.owner = nil
			return true
		}
		prev = pli.next
	}
	return false
}

// InsertAfter inserts item immediately after after. If after's zero value
// is passed (the interface is nil), item is inserted at the head. O(1).
func (l *SinglyList[E]) InsertAfter(after E, item E) {
	li := item.Link()
	if !insertGuard(li.owner) {
		return
	}
	li.owner = l
	var afterElem SElem = after
	if afterElem == nil {
		li.next = l.head
		l.head = item
		if l.tail == nil {
			l.tail = item
		}
		return
	}
	ali := after.Link()
	li.next = ali.next
	ali.next = item
	if l.tail == afterElem {
		l.tail = item
	}
}

// InsertBefore inserts item immediately before before, walking from head
// to locate before's predecessor. If before's zero value is passed, item
// is appended at the tail.
func (l *SinglyList[E]) InsertBefore(before E, item E) {
	li := item.Link()
	if !insertGuard(li.owner) {
		return
	}
	var beforeElem SElem = before
	if beforeElem == nil {
		li.owner = l
		li.next = nil
		if l.tail == nil {
			l.head = item
		} else {
			l.tail.Link().next = item
		}
		l.tail = item
		return
	}
	li.owner = l
	if l.head == beforeElem {
		li.next = l.head
		l.head = item
		return
	}
	prev := l.head
	for prev != nil && prev.Link().next != beforeElem {
		prev = prev.Link().next
	}
	if prev == nil {
		// before is not in the list; treat defensively as append.
		li.next = nil
		if l.tail == nil {
			l.head = item
		} else {
			l.tail.Link().next = item
		}
		l.tail = item
		return
	}
	li.next = beforeElem
	prev.Link().next = item
}

// Move transfers every item in l to dst, preserving order, by repeated
// GetFirst/PutLast so every transition passes through the normal
// insert/remove guard (matching the original's debug-hook visibility into
// every move).
func (l *SinglyList[E]) Move(dst *SinglyList[E]) {
	for {
		item, ok := l.GetFirst()
		if !ok {
			return
		}
		dst.PutLast(item)
	}
}

// Clear empties the list. All references to its items are lost without
// running the normal per-item detach bookkeeping; callers that need each
// item's owner cleared should Move to a scratch list and drain it instead.
func (l *SinglyList[E]) Clear() {
	for e := l.head; e != nil; {
		li := e.Link()
		next := li.next
		li.next = nil
		li.owner = nil
		e = next
	}
	l.head = nil
	l.tail = nil
}

// Empty reports whether the list currently holds no items.
func (l *SinglyList[E]) Empty() bool { return l.head == nil }
