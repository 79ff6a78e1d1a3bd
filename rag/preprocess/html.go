package preprocess

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	dropped = "script,style,nav,footer,header,noscript"
	blocks  = "h1,h2,h3,h4,p,li,pre,table"
)

var blockPrefix = map[string]string{
	"h1": "# ",
	"h2": "## ",
	"h3": "### ",
	"h4": "### ",
	"li": "- ",
}

// HTMLToText extracts headings, paragraphs, list items, code and tables from
// a page as markdown-flavored text. Page chrome is discarded.
func HTMLToText(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	doc.Find(dropped).Remove()

	var parts []string
	doc.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch name := goquery.NodeName(s); name {
		case "table":
			parts = append(parts, tableRows(s))
		case "pre":
			parts = append(parts, "```\n"+text+"\n```")
		default:
			parts = append(parts, blockPrefix[name]+text)
		}
	})
	return strings.Join(parts, "\n\n"), nil
}

func tableRows(table *goquery.Selection) string {
	var rows []string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th,td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) > 0 {
			rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		}
	})
	return strings.Join(rows, "\n")
}

// StripTags returns the text of an HTML fragment such as a search snippet
// with <strong> highlights. Plain text passes through trimmed.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(fragment))
	}
	return strings.TrimSpace(runsOfBlanks.ReplaceAllString(doc.Text(), " "))
}
