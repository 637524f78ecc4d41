package container

import "github.com/Integerfox/kit.core-sub000/fault"

// DoublyList is a doubly linked intrusive list. Like SinglyList, its zero
// value is immediately usable. Remove and InsertBefore are O(1) here
// (unlike SinglyList) since every element carries its own predecessor
// link.
type DoublyList[E DElem] struct {
	_    [0]func() // noCopy marker
	head DElem
	tail DElem
}

// PutFirst inserts item as the new head of the list.
func (l *DoublyList[E]) PutFirst(item E) {
	eli := item.DLink()
	if !insertGuard(eli.owner) {
		return
	}
	eli.owner = l
	eli.prev = nil
	eli.next = l.head
	if l.head != nil {
		l.head.DLink().prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
}

// PutLast inserts item as the new tail of the list.
func (l *DoublyList[E]) PutLast(item E) {
	eli := item.DLink()
	if !insertGuard(eli.owner) {
		return
	}
	eli.owner = l
	eli.next = nil
	eli.prev = l.tail
	if l.tail != nil {
		l.tail.DLink().next = item
	}
	l.tail = item
	if l.head == nil {
		l.head = item
	}
}

// GetFirst removes and returns the first item in the list.
func (l *DoublyList[E]) GetFirst() (out E, ok bool) {
	if l.head == nil {
		return out, false
	}
	item := l.head
	l.removeElem(item)
	return item.(E), true
}

// GetLast removes and returns the last item in the list.
func (l *DoublyList[E]) GetLast() (out E, ok bool) {
	if l.tail == nil {
		return out, false
	}
	item := l.tail
	l.removeElem(item)
	return item.(E), true
}

// First returns the first item without removing it.
func (l *DoublyList[E]) First() (out E, ok bool) {
	if l.head == nil {
		return out, false
	}
	return l.head.(E), true
}

// Last returns the last item without removing it.
func (l *DoublyList[E]) Last() (out E, ok bool) {
	if l.tail == nil {
		return out, false
	}
	return l.tail.(E), true
}

// Next returns the item following item, or ok=false at end of list.
// Fatal-errors if item is not a member of this list.
func (l *DoublyList[E]) Next(item E) (out E, ok bool) {
	eli := item.DLink()
	if eli.owner != any(l) {
		fault.Raise(fault.CodeContainer, "container: next() called on an item that is not in this list")
		return out, false
	}
	if eli.next == nil {
		return out, false
	}
	return eli.next.(E), true
}

// Find reports whether item currently belongs to this list.
func (l *DoublyList[E]) Find(item E) bool {
	return item.DLink().owner == any(l)
}

// removeElem unlinks elem, which must currently belong to l.
func (l *DoublyList[E]) removeElem(elem DElem) {
	eli := elem.DLink()
	if eli.prev != nil {
		eli.prev.DLink().next = eli.next
	} else {
		l.head = eli.next
	}
	if eli.next != nil {
		eli.next.DLink().prev = eli.prev
	} else {
		l.tail = eli.prev
	}
	eli.next = nil
	eli.prev = nil
	eli.owner = nil
}

// Remove detaches item from the list in O(1). Returns false (recoverable,
// not fatal) if item was not a member.
func (l *DoublyList[E]) Remove(item E) bool {
	eli := item.DLink()
	if eli.owner != any(l) {
		return false
	}
	l.removeElem(item)
	return true
}

// InsertAfter inserts item immediately after after in O(1). If after's
// zero value is passed, item is inserted at the head.
func (l *DoublyList[E]) InsertAfter(after E, item E) {
	eli := item.DLink()
	if !insertGuard(eli.owner) {
		return
	}
	eli.owner = l
	var afterElem DElem = after
	if afterElem == nil {
		eli.prev = nil
		eli.next = l.head
		if l.head != nil {
			l.head.DLink().prev = item
		}
		l.head = item
		if l.tail == nil {
			l.tail = item
		}
		return
	}
	ali := after.DLink()
	eli.prev = afterElem
	eli.next = ali.next
	if ali.next != nil {
		ali.next.DLink().prev = item
	} else {
		l.tail = item
	}
	ali.next = item
}

// InsertBefore inserts item immediately before before in O(1) (the
// reverse link makes this as cheap as InsertAfter, unlike SinglyList). If
// before's zero value is passed, item is appended at the tail.
func (l *DoublyList[E]) InsertBefore(before E, item E) {
	eli := item.DLink()
	if !insertGuard(eli.owner) {
		return
	}
	eli.owner = l
	var beforeElem DElem = before
	if beforeElem == nil {
		eli.next = nil
		eli.prev = l.tail
		if l.tail != nil {
			l.tail.DLink().next = item
		}
		l.tail = item
		if l.head == nil {
			l.head = item
		}
		return
	}
	bli := before.DLink()
	eli.next = beforeElem
	eli.prev = bli.prev
	if bli.prev != nil {
		bli.prev.DLink().next = item
	} else {
		l.head = item
	}
	bli.prev = item
}

// Move transfers every item in l to dst, preserving order.
func (l *DoublyList[E]) Move(dst *DoublyList[E]) {
	for {
		item, ok := l.GetFirst()
		if !ok {
			return
		}
		dst.PutLast(item)
	}
}

// Clear empties the list without running per-item detach bookkeeping.
func (l *DoublyList[E]) Clear() {
	for e := l.head; e != nil; {
		eli := e.DLink()
		next := eli.next
		eli.next = nil
		eli.prev = nil
		eli.owner = nil
		e = next
	}
	l.head = nil
	l.tail = nil
}

// Empty reports whether the list currently holds no items.
func (l *DoublyList[E]) Empty() bool { return l.head == nil }
