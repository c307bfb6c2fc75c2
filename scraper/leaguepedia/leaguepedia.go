// Package leaguepedia finds the solo queue accounts of professional players on the Leaguepedia wiki.
package leaguepedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"loltools/fetcher/requests"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultBaseURL is the wiki root, the page name is appended to it.
const DefaultBaseURL = "https://lol.fandom.com/wiki/"

var (
	// ErrPlayerNotFound is returned when no article of the player could be reached.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrNoSoloqIDs is returned when the article has no solo queue ids on the infobox.
	ErrNoSoloqIDs = errors.New("no soloqueue ids on the player page")
)

// Texts used to tell the pages apart.
const (
	missingText        = "There is currently no text in this page."
	disambiguationText = "This disambiguation page lists articles associated with the same title."
	articleText        = "Soloqueue IDs"
)

// PageType is the kind of wiki page that was returned.
type PageType int

const (
	PageOther PageType = iota
	PageMissing
	PageDisambiguation
	PageArticle
)

func (p PageType) String() string {
	switch p {
	case PageMissing:
		return "missing"
	case PageDisambiguation:
		return "disambiguation"
	case PageArticle:
		return "article"
	}
	return "other"
}

// ProFinder navigates the wiki until the article of a player.
type ProFinder struct {
	client  *requests.Client
	baseURL string
}

// NewProFinder creates a finder, empty baseURL uses the Leaguepedia wiki.
func NewProFinder(client *requests.Client, baseURL string) *ProFinder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &ProFinder{
		client:  client,
		baseURL: baseURL,
	}
}

// GetProSoloqIDs returns the solo queue ids of a player by server, e.g. {"KR": ["Hide on bush"]}.
// The real names are used to pick the right page when the summoner name is ambiguous.
func (p *ProFinder) GetProSoloqIDs(ctx context.Context, summonerName string, firstName string, familyName string) (map[string][]string, error) {
	doc, err := p.findProPage(ctx, summonerName, firstName, familyName)
	if err != nil {
		return nil, err
	}
	return ParseSoloqIDs(doc)
}

// Find the article of the player, starting by the summoner name page.
func (p *ProFinder) findProPage(ctx context.Context, summonerName string, firstName string, familyName string) (*goquery.Document, error) {
	doc, err := p.getPage(ctx, pageName(summonerName))
	if err != nil {
		return nil, err
	}

	switch classifyPage(doc) {
	case PageDisambiguation:
		page, err := findDisambiguation(doc, firstName, familyName)
		if err != nil {
			return nil, err
		}
		if doc, err = p.getPage(ctx, page); err != nil {
			return nil, err
		}

	case PageMissing:
		// No page with this name, use the wiki search results as a disambiguation page.
		search, err := p.getPage(ctx, "Special:Search?query="+url.QueryEscape(summonerName))
		if err != nil {
			return nil, err
		}
		page, err := findDisambiguation(search, firstName, familyName)
		if err != nil {
			return nil, err
		}
		if doc, err = p.getPage(ctx, page); err != nil {
			return nil, err
		}
	}

	if pageType := classifyPage(doc); pageType != PageArticle {
		return nil, fmt.Errorf("%w: %s ended on a %s page", ErrPlayerNotFound, summonerName, pageType)
	}
	return doc, nil
}

// Get a wiki page and parse it.
// Missing pages still have a body, so a not found status is parsed too.
func (p *ProFinder) getPage(ctx context.Context, page string) (*goquery.Document, error) {
	pageURL := p.baseURL + page
	resp, err := p.client.Request(ctx, "GET", pageURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't get the page %s: %w", page, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("API returned status code %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the page %s: %w", page, err)
	}
	return doc, nil
}

// Tell what kind of page was returned by its text.
func classifyPage(doc *goquery.Document) PageType {
	text := doc.Text()
	switch {
	case strings.Contains(text, missingText):
		return PageMissing
	case strings.Contains(text, disambiguationText):
		return PageDisambiguation
	case strings.Contains(text, articleText):
		return PageArticle
	}
	return PageOther
}

// Return the page of the first link mentioning the first or family name.
func findDisambiguation(doc *goquery.Document, firstName string, familyName string) (string, error) {
	var page string
	doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		text := link.Text()
		if !(containsName(text, firstName) || containsName(text, familyName)) {
			return true
		}

		// Links can be relative or absolute, only wiki pages are followed.
		href, _ := link.Attr("href")
		index := strings.Index(href, "/wiki/")
		if index < 0 || index+len("/wiki/") == len(href) {
			return true
		}

		page = href[index+len("/wiki/"):]
		return false
	})

	if page == "" {
		return "", fmt.Errorf("%w: no link for %s %s", ErrPlayerNotFound, firstName, familyName)
	}
	return page, nil
}

// Empty names never match.
func containsName(text string, name string) bool {
	return name != "" && strings.Contains(text, name)
}

// ParseSoloqIDs reads the solo queue row of the infobox.
// Each bold server name is followed by the ids separated by comma.
func ParseSoloqIDs(doc *goquery.Document) (map[string][]string, error) {
	var row *goquery.Selection
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if strings.HasPrefix(strings.TrimSpace(tr.Text()), articleText) {
			row = tr
			return false
		}
		return true
	})

	if row == nil {
		return nil, ErrNoSoloqIDs
	}

	ids := make(map[string][]string)
	row.Find("b").Each(func(_ int, server *goquery.Selection) {
		name := strings.TrimSuffix(strings.TrimSpace(server.Text()), ":")
		if name == "" {
			return
		}

		var accounts []string
		for _, account := range strings.Split(followingText(server), ", ") {
			if account = strings.TrimSpace(account); account != "" {
				accounts = append(accounts, account)
			}
		}
		ids[name] = accounts
	})

	return ids, nil
}

// Text node right after the selection, empty if the next node is a element.
func followingText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	next := sel.Nodes[0].NextSibling
	if next == nil || next.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(next.Data)
}

// Wiki page names use underscores for spaces.
func pageName(name string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
