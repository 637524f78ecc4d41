// Package container implements the intrusive-list primitives used
// throughout the kernel core: SinglyList and DoublyList. Elements embed
// ListItem (or ExtendedListItem for doubly linked lists) and implement a
// small linkage-accessor interface instead of the lists allocating their
// own nodes. This keeps timers, watched-thread records, and event-flag
// groups allocation-free once constructed: no dynamic memory is required
// to add an element.
//
// An element may belong to at most one list at a time: attempting to
// insert an already-attached element raises fault.CodeContainer instead
// of corrupting the list silently.
package container
