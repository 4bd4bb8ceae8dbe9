package report

import "strings"

// The walker is deliberately pure: every traversal returns its matches as an
// accumulator threaded through return values, never through captured mutable
// state, so sibling branches are always searched after a match.

// findCategoryRows walks the tree depth-first in pre-order looking for nodes
// whose header label equals target (case-folded, trimmed). On a match the
// node's direct data rows are collected and descent into that node stops;
// the search itself is global, so duplicate category names in other branches
// all contribute rows.
func findCategoryRows(node ReportNode, target string) []ReportNode {
	if node.Header != nil && headerEquals(node.HeaderLabel(), target) {
		return node.dataRows()
	}
	var matches []ReportNode
	for _, child := range node.children() {
		matches = append(matches, findCategoryRows(child, target)...)
	}
	return matches
}

// findSections collects every node whose header label satisfies match,
// visiting children in declaration order. Matched nodes are returned whole;
// their subtrees are not searched again, so a section never double-counts
// rows through a nested match.
func findSections(node ReportNode, match func(label string) bool) []ReportNode {
	if node.Header != nil && match(node.HeaderLabel()) {
		return []ReportNode{node}
	}
	var sections []ReportNode
	for _, child := range node.children() {
		sections = append(sections, findSections(child, match)...)
	}
	return sections
}

// titleInSet builds a matcher for exact (case-insensitive, trimmed) membership
// in a fixed title set. Keys must be upper-case.
func titleInSet(titles map[string]struct{}) func(string) bool {
	return func(label string) bool {
		_, ok := titles[strings.ToUpper(strings.TrimSpace(label))]
		return ok
	}
}
