package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/spectre256/ecs/mask"
)

// Query is a composable filter over archetypes: a superset-of-mask
// test generalized into an And/Or/Not tree. A single-node And already
// covers the plain "superset of component set" case, so the tree
// subsumes it rather than needing a separate leaf form.
type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

// QueryNode evaluates whether an archetype matches.
type QueryNode interface {
	Evaluate(archetype Archetype, w World) bool
}

type queryOp int

const (
	opAnd queryOp = iota
	opOr
	opNot
)

type compositeNode struct {
	op         queryOp
	children   []QueryNode
	components []Component
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func newCompositeNode(op queryOp, components []Component) *compositeNode {
	return &compositeNode{op: op, components: components}
}

func maskOf(w World, components []Component) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		bit := w.RowIndexFor(c)
		m.Mark(int(bit))
	}
	return m
}

func archMask(a Archetype) mask.Mask {
	return a.Table().Mask()
}

func (n *compositeNode) Evaluate(a Archetype, w World) bool {
	nodeMask := maskOf(w, n.components)
	am := archMask(a)

	switch n.op {
	case opAnd:
		if !am.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(a, w) {
				return false
			}
		}
		return true
	case opOr:
		if am.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(a, w) {
				return true
			}
		}
		return false
	case opNot:
		if len(n.components) > 0 && !am.ContainsNone(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(a, w) {
				return false
			}
		}
		return true
	}
	return false
}

func (q *query) And(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(opAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(opOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(opNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) validateQueryItems(items ...any) error {
	for _, item := range items {
		switch item.(type) {
		case Component, []Component, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("ecs: invalid query item type: %T (want Component, []Component, or QueryNode)", item)
		}
	}
	return nil
}

func (q *query) processItems(items ...any) ([]Component, []QueryNode) {
	if err := q.validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	var components []Component
	var children []QueryNode
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return components, children
}

func (q *query) Evaluate(a Archetype, w World) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(a, w)
}
