package zxast

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(id NodeID) error

// Walk performs a pre-order traversal of the tree starting at root.
// The callback walkFunc is called for each node. If walkFunc returns a
// non-nil error, the walk stops immediately and returns that error.
func (t *Tree) Walk(root NodeID, walkFunc WalkFunc) error {
	if t.Node(root) == nil {
		return nil
	}

	if err := walkFunc(root); err != nil {
		return err
	}

	for _, child := range t.Children(root) {
		if err := t.Walk(child, walkFunc); err != nil {
			return err
		}
	}

	return nil
}

// WalkWithContext performs a traversal with enter and leave callbacks.
// Enter is called before visiting children, leave is called after.
// Either callback may be nil.
func (t *Tree) WalkWithContext(root NodeID, enter, leave WalkFunc) error {
	if t.Node(root) == nil {
		return nil
	}

	if enter != nil {
		if err := enter(root); err != nil {
			return err
		}
	}

	for _, child := range t.Children(root) {
		if err := t.WalkWithContext(child, enter, leave); err != nil {
			return err
		}
	}

	if leave != nil {
		if err := leave(root); err != nil {
			return err
		}
	}

	return nil
}

// FindAll returns all nodes under root matching the predicate.
func (t *Tree) FindAll(root NodeID, predicate func(id NodeID) bool) []NodeID {
	var result []NodeID

	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	t.Walk(root, func(id NodeID) error {
		if predicate(id) {
			result = append(result, id)
		}
		return nil
	})

	return result
}

// FindFirst returns the first node matching the predicate, or NilNode.
func (t *Tree) FindFirst(root NodeID, predicate func(id NodeID) bool) NodeID {
	found := NilNode

	//nolint:errcheck,revive // errStopWalk is expected and intentionally ignored
	t.Walk(root, func(id NodeID) error {
		if predicate(id) {
			found = id
			return errStopWalk
		}
		return nil
	})

	return found
}

// FindByKind returns all nodes of the specified kind under root.
func (t *Tree) FindByKind(root NodeID, kind NodeKind) []NodeID {
	return t.FindAll(root, func(id NodeID) bool {
		return t.Kind(id) == kind
	})
}

// errStopWalk is a sentinel error used to stop walking early.
var errStopWalk = &stopWalkError{}

type stopWalkError struct{}

func (e *stopWalkError) Error() string {
	return "stop walk"
}
