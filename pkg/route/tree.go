package route

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// node is a node in the radix tree.
type node struct {
	// segment is the static path segment this node matches
	segment string

	// paramName is the parameter name (without : or *)
	paramName string

	// paramType is the expected parameter type (int, string, uuid)
	paramType string

	// def is the definition terminating at this node, if any
	def *Definition

	children []*node

	// paramChildren are distinct by name and type and are tried in the
	// order their patterns appear in the table.
	paramChildren []*node
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name, paramType string) *node {
	for _, child := range n.paramChildren {
		if child.paramName == name && child.paramType == paramType {
			return child
		}
	}
	child := &node{paramName: name, paramType: paramType}
	n.paramChildren = append(n.paramChildren, child)
	return child
}

func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	n.catchAllChild = &node{paramName: name, paramType: "[]string"}
	return n.catchAllChild
}

// insert adds a pattern to the tree and returns its terminal node.
func (n *node) insert(pattern string) *node {
	current := n
	for _, seg := range splitPath(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the path.
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			current = current.addParamChild(name, paramType)
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match finds the terminal node for segments, filling props on the way.
func (n *node) match(segments []string, props Props) (*node, bool) {
	if len(segments) == 0 {
		if n.def != nil {
			return n, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if found, ok := child.match(remaining, props); ok {
			return found, true
		}
	}

	for _, child := range n.paramChildren {
		if !validParam(segment, child.paramType) {
			continue
		}
		prev, had := props[child.paramName]
		props[child.paramName] = segment
		if found, ok := child.match(remaining, props); ok {
			return found, true
		}
		// Backtrack on failure
		if had {
			props[child.paramName] = prev
		} else {
			delete(props, child.paramName)
		}
	}

	if n.catchAllChild != nil && n.catchAllChild.def != nil {
		props[n.catchAllChild.paramName] = strings.Join(segments, "/")
		return n.catchAllChild, true
	}

	return nil, false
}

// validParam reports whether a path segment satisfies a parameter type.
func validParam(segment, paramType string) bool {
	switch paramType {
	case "int":
		_, err := strconv.ParseInt(segment, 10, 64)
		return err == nil
	case "uuid":
		_, err := uuid.Parse(segment)
		return err == nil
	default:
		return segment != ""
	}
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
