package browser

import (
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Request describes one fetch. GET requests carry their data in URL;
// Form is only sent as a body for other methods.
type Request struct {
	Method string
	URL    string
	Form   url.Values
}

func (r Request) clone() Request {
	c := r
	if r.Form != nil {
		c.Form = make(url.Values, len(r.Form))
		for k, v := range r.Form {
			c.Form[k] = append([]string(nil), v...)
		}
	}
	return c
}

// Page is an immutable snapshot of one resolved fetch
type Page struct {
	url       string
	status    int
	header    http.Header
	body      []byte
	text      string
	charset   string
	doc       *goquery.Document
	req       Request
	fetchedAt time.Time
}

// NewPage builds a Page from raw response parts. The body is decoded using
// the charset announced by the response, then the document's own
// declaration, then statistical detection, falling back to UTF-8. Markup is
// parsed leniently; malformed documents still produce a tree.
func NewPage(req Request, finalURL string, status int, header http.Header, body []byte) (*Page, error) {
	text, label := decodeBody(body, header.Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if base, err := url.Parse(finalURL); err == nil {
		doc.Url = base
	}

	return &Page{
		url:       finalURL,
		status:    status,
		header:    header.Clone(),
		body:      append([]byte(nil), body...),
		text:      text,
		charset:   label,
		doc:       doc,
		req:       req.clone(),
		fetchedAt: time.Now(),
	}, nil
}

// URL returns the final URL, after any HTTP-level redirects
func (p *Page) URL() string { return p.url }

// Status returns the HTTP status code
func (p *Page) Status() int { return p.status }

// Header returns a copy of the response headers
func (p *Page) Header() http.Header { return p.header.Clone() }

// Body returns a copy of the raw response body
func (p *Page) Body() []byte { return append([]byte(nil), p.body...) }

// Text returns the decoded body
func (p *Page) Text() string { return p.text }

// Charset returns the label the body was decoded with
func (p *Page) Charset() string { return p.charset }

// Request returns the request that produced this page
func (p *Page) Request() Request { return p.req.clone() }

// FetchedAt returns when the page was fetched
func (p *Page) FetchedAt() time.Time { return p.fetchedAt }

// Document returns a copy of the parsed document. Changes made through the
// selection API stay in the copy.
func (p *Page) Document() *goquery.Document { return goquery.CloneDocument(p.doc) }

// Node returns the root of a copy of the document for XPath queries
func (p *Page) Node() *html.Node {
	doc := p.Document()
	if len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

// Title returns the trimmed <title> text
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// reloadRequest is what a refresh of this page sends. When the transport
// followed an HTTP redirect the final URL is fetched with a plain GET.
func (p *Page) reloadRequest() Request {
	if p.url != p.req.URL {
		return Request{Method: http.MethodGet, URL: p.url}
	}
	return p.req.clone()
}

// DetectCharset guesses the charset of a byte slice
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func decodeBody(body []byte, contentType string) (string, string) {
	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = params["charset"]
	}
	if label == "" {
		// windows-1252 is the prescan's give-up answer, not a finding
		_, name, certain := charset.DetermineEncoding(body, contentType)
		if certain || name != "windows-1252" {
			label = name
		} else {
			label = DetectCharset(body)
		}
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return string(body), "utf-8"
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), "utf-8"
	}
	return string(decoded), name
}
