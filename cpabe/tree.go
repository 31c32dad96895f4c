package cpabe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Iscaraca/cryptid"
)

// ErrInvalidPolicy is returned for malformed access trees and policy
// expressions.
var ErrInvalidPolicy = errors.New("cpabe: invalid policy")

// Node is an access tree node. A node without children is a leaf naming an
// Attribute; any other node is a gate satisfied when at least Threshold of
// its Children are.
type Node struct {
	Threshold int
	Children  []*Node
	Attribute string
}

// Leaf returns a leaf for attribute.
func Leaf(attribute string) *Node {
	return &Node{Threshold: 1, Attribute: attribute}
}

// Threshold returns a k-of-n gate over children.
func Threshold(k int, children ...*Node) *Node {
	return &Node{Threshold: k, Children: children}
}

// And returns a gate requiring all children.
func And(children ...*Node) *Node {
	return Threshold(len(children), children...)
}

// Or returns a gate requiring any one child.
func Or(children ...*Node) *Node {
	return Threshold(1, children...)
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Validate checks that every leaf names an attribute and every gate has a
// threshold in [1, len(Children)].
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidPolicy)
	}
	if n.IsLeaf() {
		if n.Attribute == "" {
			return fmt.Errorf("%w: leaf without attribute", ErrInvalidPolicy)
		}
		return nil
	}
	if n.Attribute != "" {
		return fmt.Errorf("%w: gate %q carries an attribute", ErrInvalidPolicy, n.Attribute)
	}
	if n.Threshold < 1 || n.Threshold > len(n.Children) {
		return fmt.Errorf("%w: threshold %d of %d", ErrInvalidPolicy, n.Threshold, len(n.Children))
	}
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Satisfies reports whether attrs satisfy the tree. Gates stop evaluating
// children once the threshold is met.
func (n *Node) Satisfies(attrs []string) cryptid.ValidationResult {
	set := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		set[a] = struct{}{}
	}
	return cryptid.ValidationFrom(n.satisfies(set))
}

func (n *Node) satisfies(set map[string]struct{}) bool {
	if n == nil {
		return false
	}
	if n.IsLeaf() {
		_, ok := set[n.Attribute]
		return ok
	}
	count := 0
	for _, c := range n.Children {
		if c.satisfies(set) {
			count++
			if count >= n.Threshold {
				return true
			}
		}
	}
	return false
}

// Leaves returns the leaves of n in depth-first order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.walkLeaves(func(l *Node) { out = append(out, l) })
	return out
}

// Attributes returns the distinct attributes named by the tree in
// depth-first order.
func (n *Node) Attributes() []string {
	seen := make(map[string]struct{})
	var out []string
	n.walkLeaves(func(l *Node) {
		if _, ok := seen[l.Attribute]; ok {
			return
		}
		seen[l.Attribute] = struct{}{}
		out = append(out, l.Attribute)
	})
	return out
}

func (n *Node) walkLeaves(fn func(*Node)) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		fn(n)
		return
	}
	for _, c := range n.Children {
		c.walkLeaves(fn)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Threshold: n.Threshold, Attribute: n.Attribute}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports whether n and o describe the same tree.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.IsLeaf() != o.IsLeaf() {
		return false
	}
	if n.IsLeaf() {
		return n.Attribute == o.Attribute
	}
	if n.Threshold != o.Threshold || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders n as a policy expression accepted by ParsePolicy.
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder) {
	switch {
	case n == nil:
		sb.WriteString("<nil>")
	case n.IsLeaf():
		sb.WriteString(quoteAttribute(n.Attribute))
	case len(n.Children) > 1 && (n.Threshold == 1 || n.Threshold == len(n.Children)):
		op := " or "
		if n.Threshold == len(n.Children) {
			op = " and "
		}
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(op)
			}
			c.format(sb)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(strconv.Itoa(n.Threshold))
		sb.WriteString(" of (")
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.format(sb)
		}
		sb.WriteByte(')')
	}
}

func quoteAttribute(a string) string {
	if isKeyword(a) || a == "" {
		return strconv.Quote(a)
	}
	for _, r := range a {
		if !isAttributeRune(r) {
			return strconv.Quote(a)
		}
	}
	if a[0] >= '0' && a[0] <= '9' {
		return strconv.Quote(a)
	}
	if _, err := strconv.Atoi(a); err == nil {
		return strconv.Quote(a)
	}
	return a
}
