package models

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fragment parses an HTML cell. Cells are tiny, so parse errors are treated
// as empty content rather than failures.
func fragment(cell string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return nil
	}
	return doc.Selection
}

// anchors returns every link in a cell.
func anchors(cell string) []Link {
	sel := fragment(cell)
	if sel == nil {
		return nil
	}

	var links []Link
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, Link{
			Name: collapseSpace(a.Text()),
			URL:  strings.TrimSpace(href),
		})
	})
	return links
}

// firstAnchor returns the first link in a cell.
func firstAnchor(cell string) (Link, bool) {
	links := anchors(cell)
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}

// anchorOrText returns the first link, or a name-only link holding the
// cell text when the cell has no anchor.
func anchorOrText(cell string) Link {
	if link, ok := firstAnchor(cell); ok {
		return link
	}
	return Link{Name: text(cell)}
}

// text returns the visible text of a cell.
func text(cell string) string {
	sel := fragment(cell)
	if sel == nil {
		return ""
	}
	return collapseSpace(sel.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
