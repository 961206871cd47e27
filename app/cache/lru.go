package cache

// lruList maintains cache eviction order. Front is most recently used.
type lruList struct {
	head  *lruNode
	tail  *lruNode
	nodes map[string]*lruNode
	size  int
}

type lruNode struct {
	key        string
	prev, next *lruNode
}

func newLRUList() *lruList {
	head := &lruNode{}
	tail := &lruNode{}
	head.next = tail
	tail.prev = head

	return &lruList{
		head:  head,
		tail:  tail,
		nodes: make(map[string]*lruNode),
	}
}

// addToFront inserts key, or moves it to the front if already present
func (l *lruList) addToFront(key string) {
	if node, exists := l.nodes[key]; exists {
		l.moveToFront(node)
		return
	}

	node := &lruNode{key: key}
	l.nodes[key] = node
	l.insertAfterHead(node)
	l.size++
}

func (l *lruList) touch(key string) {
	if node, exists := l.nodes[key]; exists {
		l.moveToFront(node)
	}
}

func (l *lruList) remove(key string) {
	if node, exists := l.nodes[key]; exists {
		l.unlink(node)
		delete(l.nodes, key)
		l.size--
	}
}

// removeOldest removes and returns the least recently used key
func (l *lruList) removeOldest() (string, bool) {
	if l.size == 0 {
		return "", false
	}

	oldest := l.tail.prev
	l.unlink(oldest)
	delete(l.nodes, oldest.key)
	l.size--

	return oldest.key, true
}

// keys returns keys from most to least recently used
func (l *lruList) keys() []string {
	keys := make([]string, 0, l.size)
	for n := l.head.next; n != l.tail; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (l *lruList) moveToFront(node *lruNode) {
	l.unlink(node)
	l.insertAfterHead(node)
}

func (l *lruList) insertAfterHead(node *lruNode) {
	node.next = l.head.next
	node.prev = l.head
	l.head.next.prev = node
	l.head.next = node
}

func (l *lruList) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
