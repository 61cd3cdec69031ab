package core

import "strings"

// restoreNode is one level of a byte trie built over restoration-table
// keys. terminal marks a complete key; value holds its original content.
type restoreNode struct {
	children map[byte]*restoreNode
	value    string
	terminal bool
}

func buildRestoreTrie(table map[string]string) *restoreNode {
	root := &restoreNode{children: make(map[byte]*restoreNode)}
	for key, value := range table {
		if key == "" {
			continue
		}
		node := root
		for i := 0; i < len(key); i++ {
			next := node.children[key[i]]
			if next == nil {
				next = &restoreNode{children: make(map[byte]*restoreNode)}
				node.children[key[i]] = next
			}
			node = next
		}
		node.value = value
		node.terminal = true
	}
	return root
}

// Restore inverts Substitute: every occurrence of every restoration-table
// key in sanitized is replaced by its original content.
//
// The text is walked exactly once with longest-match semantics against a
// trie of the keys. That gives two guarantees that iterative whole-text
// find/replace cannot:
//
//   - a key that is a prefix of another (<PER_1> vs <PER_10>) can never
//     clip its longer sibling, regardless of any processing order;
//   - substituted content is emitted verbatim and never re-scanned, so
//     original content that happens to look like another placeholder is
//     left intact.
//
// A placeholder present in the text but missing from the table stays in
// the text literally; a table key absent from the text is ignored. Both
// are documented behavior, not errors.
func Restore(sanitized string, table map[string]string) string {
	if len(table) == 0 {
		return sanitized
	}

	trie := buildRestoreTrie(table)

	var b strings.Builder
	b.Grow(len(sanitized))

	for i := 0; i < len(sanitized); {
		node := trie
		matchLen := 0
		matchValue := ""
		for j := i; j < len(sanitized); j++ {
			node = node.children[sanitized[j]]
			if node == nil {
				break
			}
			if node.terminal {
				matchLen = j - i + 1
				matchValue = node.value
			}
		}
		if matchLen > 0 {
			b.WriteString(matchValue)
			i += matchLen
			continue
		}
		b.WriteByte(sanitized[i])
		i++
	}

	return b.String()
}
