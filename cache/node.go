package cache

// node is an intrusive doubly linked list element.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]

	// linked is false once the node has left the list (evicted, invalidated
	// or cleared). Deferred promotions skip such nodes.
	linked bool
}

// recencyList is an MRU↔LRU list: head is MRU, tail is LRU.
// It is not safe for concurrent use; owners guard it.
type recencyList[K comparable, V any] struct {
	head *node[K, V]
	tail *node[K, V]
	len  int
}

// pushFront inserts n at MRU in O(1).
func (l *recencyList[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	n.linked = true
	l.len++
}

// moveToFront promotes n to MRU in O(1).
func (l *recencyList[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

// remove detaches n in O(1).
func (l *recencyList[K, V]) remove(n *node[K, V]) {
	l.unlink(n)
	n.linked = false
	l.len--
}

func (l *recencyList[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// back returns the LRU node, or nil when empty.
func (l *recencyList[K, V]) back() *node[K, V] { return l.tail }

// reset drops every node. Nodes still referenced elsewhere are marked unlinked.
func (l *recencyList[K, V]) reset() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.linked = nil, nil, false
		n = next
	}
	l.head, l.tail, l.len = nil, nil, 0
}
