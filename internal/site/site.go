// Package site isolates the markup of the repack site behind an Adapter so
// a layout change is a selector change.
package site

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"repackget/internal/browser"
	"repackget/internal/common"
)

// Result is one search hit. Index is 1-based in display order.
type Result struct {
	Index int
	Title string
	URL   string
	ID    string // element id of the post, anchors the mirror lookup
}

type Adapter interface {
	SearchURL(title string) string
	ParseResults(pageURL, html string) ([]Result, error)
	// MirrorLink extracts the mirror URL from the chosen result's own page.
	MirrorLink(pageURL, html string, r Result) (string, error)
	PartLinks(pageURL, html string) ([]string, error)
	DownloadTrigger() browser.Locator
}

// Selectors configure Markup. Mirror is a format string taking the result ID.
type Selectors struct {
	BaseURL      string `mapstructure:"base_url"`
	SearchPath   string `mapstructure:"search_path"`
	Result       string `mapstructure:"result_selector"`
	Title        string `mapstructure:"title_selector"`
	Mirror       string `mapstructure:"mirror_selector"`
	Parts        string `mapstructure:"parts_selector"`
	TriggerXPath string `mapstructure:"trigger_xpath"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		BaseURL:      "https://fitgirl-repacks.site",
		SearchPath:   "/?s=%s",
		Result:       `[id*="post-"]`,
		Title:        "header h1 a",
		Mirror:       "#%s > div > ul:nth-of-type(1) > li:nth-of-type(2) > a",
		Parts:        "#plaintext ul li a",
		TriggerXPath: "/html/body/div[2]/div/div[1]/button",
	}
}

// Markup is the goquery-based Adapter.
type Markup struct {
	sel Selectors
}

func New(sel Selectors) *Markup {
	return &Markup{sel: sel}
}

// SearchURL joins the whitespace-separated words of title with "+".
func (m *Markup) SearchURL(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return strings.TrimRight(m.sel.BaseURL, "/") + fmt.Sprintf(m.sel.SearchPath, strings.Join(words, "+"))
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func resolve(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// ParseResults returns the entries matching the result marker that carry a
// title link. Entries without one are skipped and do not take an index.
func (m *Markup) ParseResults(pageURL, html string) ([]Result, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var results []Result
	doc.Find(m.sel.Result).Each(func(_ int, post *goquery.Selection) {
		link := post.Find(m.sel.Title).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		id, _ := post.Attr("id")
		results = append(results, Result{
			Index: len(results) + 1,
			Title: strings.TrimSpace(link.Text()),
			URL:   resolve(pageURL, href),
			ID:    id,
		})
	})
	return results, nil
}

func (m *Markup) MirrorLink(pageURL, html string, r Result) (string, error) {
	if r.ID == "" {
		return "", fmt.Errorf("result %d has no id: %w", r.Index, common.ErrNotFound)
	}
	doc, err := parse(html)
	if err != nil {
		return "", err
	}
	sel := fmt.Sprintf(m.sel.Mirror, r.ID)
	href, ok := doc.Find(sel).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("mirror link %q: %w", sel, common.ErrNotFound)
	}
	return resolve(pageURL, href), nil
}

func (m *Markup) PartLinks(pageURL, html string) ([]string, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find(m.sel.Parts).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, resolve(pageURL, href))
		}
	})
	return links, nil
}

func (m *Markup) DownloadTrigger() browser.Locator {
	return browser.Locator{Kind: browser.XPath, Value: m.sel.TriggerXPath}
}
