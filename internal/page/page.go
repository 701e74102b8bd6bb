// Package page loads HTML pages for the sandbox: inline scripts in document
// order and a DOM the scripts can query.
package page

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

// Script is one <script> element
type Script struct {
	Index int    `json:"index"`
	Src   string `json:"src,omitempty"` // external scripts are listed, not loaded
	Code  string `json:"-"`
}

// Inline reports whether the script carries its own code
func (s Script) Inline() bool {
	return s.Src == ""
}

// Page is a parsed HTML document
type Page struct {
	Title   string
	Scripts []Script
	doc     *goquery.Document
}

var scriptTypes = map[string]bool{
	"":                       true,
	"text/javascript":        true,
	"application/javascript": true,
}

// Parse reads an HTML document
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p := &Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		doc:   doc,
	}
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		if !scriptTypes[strings.ToLower(strings.TrimSpace(typ))] {
			return
		}
		src, _ := s.Attr("src")
		p.Scripts = append(p.Scripts, Script{Index: i, Src: src, Code: s.Text()})
	})
	return p, nil
}

// ParseString parses HTML from a string
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

// Load parses the HTML file at path
func Load(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Script joins the inline scripts into one program, in document order
func (p *Page) Script() string {
	var parts []string
	for _, s := range p.Scripts {
		if s.Inline() && strings.TrimSpace(s.Code) != "" {
			parts = append(parts, s.Code)
		}
	}
	return strings.Join(parts, ";\n")
}

// External returns the src of scripts that were skipped
func (p *Page) External() []string {
	var srcs []string
	for _, s := range p.Scripts {
		if !s.Inline() {
			srcs = append(srcs, s.Src)
		}
	}
	return srcs
}

// DOM builds a sandbox document mirroring the page body. Script elements are
// left out.
func (p *Page) DOM() *sandbox.DOM {
	dom := sandbox.NewDOM()
	body := dom.Body()
	p.doc.Find("body").First().Children().Each(func(_ int, s *goquery.Selection) {
		if el := convert(s); el != nil {
			body.AddElement(el)
		}
	})
	return dom
}

func convert(s *goquery.Selection) *sandbox.Element {
	node := s.Get(0)
	if node == nil || node.Type != html.ElementNode || node.Data == "script" {
		return nil
	}

	attrs := make(map[string]string, len(node.Attr))
	for _, attr := range node.Attr {
		attrs[attr.Key] = attr.Val
	}
	el := sandbox.NewElement(node.Data, attrs)

	children := s.Children()
	if children.Length() == 0 {
		el.TextContent = strings.TrimSpace(s.Text())
	}
	children.Each(func(_ int, c *goquery.Selection) {
		if child := convert(c); child != nil {
			el.AddElement(child)
		}
	})
	return el
}
