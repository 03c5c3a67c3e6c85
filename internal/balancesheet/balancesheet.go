// Package balancesheet picks the balance-sheet table out of an accounts
// document (iXBRL or plain HTML). It is a heuristic: it scores tables and
// returns the likeliest one, with no guarantee that it is right.
package balancesheet

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Strategy string

const (
	// StrategyKeywords: the table mentions statement keywords and is dense
	// with figures.
	StrategyKeywords Strategy = "keywords"
	// StrategyDensity: no table had both signals; the one with most figures won.
	StrategyDensity Strategy = "numeric-density"
	// StrategyHeading: the table follows a balance-sheet heading.
	StrategyHeading Strategy = "heading"
)

const (
	// A keyword table is taken straight away above this many figures.
	strongNumericCells = 5
	// The densest table is only trusted with at least this many.
	minNumericCells = 3
	// Longer text is body copy, not a heading.
	maxHeadingLength = 200
)

var (
	numericCell = regexp.MustCompile(`\d{1,3}(,\d{3})+|\d{3,}`)

	statementKeywords = []string{
		"balance sheet",
		"statement of financial position",
		"net assets",
		"total assets",
		"current assets",
		"fixed assets",
		"creditors",
		"capital and reserves",
		"shareholders' funds",
		"shareholders funds",
	}

	statementTitles = []string{
		"balance sheet",
		"statement of financial position",
	}
)

type Table struct {
	Rows         [][]string `json:"rows"`
	NumericCells int        `json:"numeric_cells"`
	HasKeywords  bool       `json:"has_keywords"`
	Strategy     Strategy   `json:"strategy"`
}

// Parse reads an HTML document and runs Find on it.
func Parse(r io.Reader) (*Table, bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, false, err
	}
	table, ok := Find(doc)
	return table, ok, nil
}

// Find returns the most likely balance-sheet table in doc.
func Find(doc *html.Node) (*Table, bool) {
	var (
		best      *html.Node
		bestCount = -1
	)

	for _, table := range findAll(doc, atom.Table) {
		text := strings.ToLower(textContent(table))
		count := countNumericCells(table)
		keywords := containsAny(text, statementKeywords)

		if keywords && count > strongNumericCells {
			return buildTable(table, count, true, StrategyKeywords), true
		}
		if count > bestCount {
			best, bestCount = table, count
		}
	}

	if best != nil && bestCount >= minNumericCells {
		text := strings.ToLower(textContent(best))
		return buildTable(best, bestCount, containsAny(text, statementKeywords), StrategyDensity), true
	}

	if table := tableAfterHeading(doc); table != nil {
		count := countNumericCells(table)
		text := strings.ToLower(textContent(table))
		return buildTable(table, count, containsAny(text, statementKeywords), StrategyHeading), true
	}

	return nil, false
}

func tableAfterHeading(doc *html.Node) *html.Node {
	var heading *html.Node
	walk(doc, func(n *html.Node) bool {
		if heading != nil {
			return false
		}
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Head, atom.Table, atom.Script, atom.Style:
			return false
		}
		text := strings.ToLower(strings.TrimSpace(ownText(n)))
		if text != "" && len(text) <= maxHeadingLength && containsAny(text, statementTitles) {
			heading = n
			return false
		}
		return true
	})
	if heading == nil {
		return nil
	}

	// Walk forward through siblings, climbing out of the heading's
	// containers until something holds a table.
	for node := heading; node != nil; node = node.Parent {
		for sibling := node.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if sibling.Type != html.ElementNode {
				continue
			}
			if sibling.DataAtom == atom.Table {
				return sibling
			}
			if nested := findAll(sibling, atom.Table); len(nested) > 0 {
				return nested[0]
			}
		}
	}
	return nil
}

func buildTable(node *html.Node, numeric int, keywords bool, strategy Strategy) *Table {
	rows := make([][]string, 0)
	for _, tr := range findAll(node, atom.Tr) {
		var cells []string
		for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
				cells = append(cells, collapseSpace(textContent(cell)))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}

	return &Table{
		Rows:         rows,
		NumericCells: numeric,
		HasKeywords:  keywords,
		Strategy:     strategy,
	}
}

func countNumericCells(table *html.Node) int {
	count := 0
	walk(table, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
			if numericCell.MatchString(textContent(n)) {
				count++
			}
			return false
		}
		return true
	})
	return count
}

func findAll(root *html.Node, a atom.Atom) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && n.DataAtom == a {
			found = append(found, n)
		}
		return true
	})
	return found
}

// walk visits root and its descendants depth first. visit returns false to
// skip a node's children.
func walk(root *html.Node, visit func(*html.Node) bool) {
	if !visit(root) {
		return
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}

// ownText is the text of n's direct text children and inline descendants,
// stopping at nested block containers.
func ownText(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.TextNode:
			sb.WriteString(child.Data)
		case child.Type == html.ElementNode && isInline(child.DataAtom):
			sb.WriteString(textContent(child))
		}
		sb.WriteString(" ")
	}
	return collapseSpace(sb.String())
}

func isInline(a atom.Atom) bool {
	switch a {
	case atom.Span, atom.B, atom.Strong, atom.Em, atom.I, atom.U, atom.Small, atom.Font:
		return true
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
