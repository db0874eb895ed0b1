package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NewsPageSize is the number of news posts per page on the site.
const NewsPageSize = 10

// News is a post from the site's news page.
type News struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   string `json:"date,omitempty"`
	Author Link   `json:"author"`
	Body   string `json:"body,omitempty"`
}

// NewsKind decodes the HTML news pages. The site does not report a total,
// so paging continues until a page comes back empty.
type NewsKind struct{}

func (NewsKind) Name() string { return "news" }

func (NewsKind) URLTemplate() string { return "/news/index/page/<PAGE_NUMBER>" }

func (NewsKind) PageSize() int { return NewsPageSize }

func (k NewsKind) Decode(data []byte) (*Page[News], error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, documentError(k.Name(), "invalid html", err)
	}

	container := doc.Find("#news")
	if container.Length() == 0 {
		return nil, documentError(k.Name(), "could not find #news in HTML", ErrUnrecognizedPayload)
	}

	page := &Page[News]{Items: []News{}}
	var parseErr error
	container.Find("div.motd").EachWithBreak(func(i int, post *goquery.Selection) bool {
		title := post.Find("h3 a").First()
		if title.Length() == 0 {
			parseErr = rowError(k.Name(), i, "missing title link")
			return false
		}
		href, _ := title.Attr("href")

		item := News{
			Title: collapseSpace(title.Text()),
			URL:   strings.TrimSpace(href),
			Date:  collapseSpace(post.Find(".date").First().Text()),
			Body:  collapseSpace(post.Find(".body").First().Text()),
		}

		author := post.Find("a.author").First()
		if author.Length() > 0 {
			authorURL, _ := author.Attr("href")
			item.Author = Link{Name: collapseSpace(author.Text()), URL: strings.TrimSpace(authorURL)}
		}

		page.Items = append(page.Items, item)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return page, nil
}

// String renders a one-line summary.
func (n News) String() string {
	if n.Date == "" {
		return n.Title
	}
	return fmt.Sprintf("%s (%s)", n.Title, n.Date)
}
