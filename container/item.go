package container

import "github.com/Integerfox/kit.core-sub000/fault"

// SElem is implemented by pointer-receiver types usable as SinglyList
// elements. Link returns the embedded linkage struct.
type SElem interface {
	Link() *ListItem
}

// DElem is implemented by pointer-receiver types usable as DoublyList
// elements. DLink returns the embedded (extended) linkage struct.
type DElem interface {
	DLink() *ExtendedListItem
}

// ListItem is the intrusive linkage embedded by every SinglyList element.
type ListItem struct {
	next  SElem
	owner any // identity of the owning list, or nil when detached
}

// ExtendedListItem is the intrusive linkage embedded by every DoublyList
// element; it extends ListItem with a reverse link.
type ExtendedListItem struct {
	ListItem
	prev DElem
}

// InContainer reports whether the element is currently attached to any
// list.
func (li *ListItem) InContainer() bool { return li.owner != nil }

// insertGuard enforces that an item already owned by a container cannot
// be inserted into another (or the same) one. Returns false (after
// raising fault.CodeContainer) instead of corrupting the list, so unit
// tests that install a counting fault.Handler can keep running.
func insertGuard(current any) bool {
	if current != nil {
		fault.Raise(fault.CodeContainer, "container: item is already in a container, cannot insert into another")
		return false
	}
	return true
}
