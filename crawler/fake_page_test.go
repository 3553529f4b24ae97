package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/mimirprompt/gallery-crawler/browse"
)

// fakeNode is a minimal DOM stand-in supporting the selector shapes
// the extractor actually uses: "tag", "tag.class", "tag#id", and
// comma-separated alternatives.
type fakeNode struct {
	tag      string
	id       string
	class    string
	text     string
	attrs    map[string]string
	children []*fakeNode
	onClick  func()
}

func (n *fakeNode) matches(selector string) bool {
	for _, alt := range strings.Split(selector, ",") {
		alt = strings.TrimSpace(alt)
		tag, rest := alt, ""
		if i := strings.IndexAny(alt, ".#"); i >= 0 {
			tag, rest = alt[:i], alt[i:]
		}
		if tag != "" && tag != n.tag {
			continue
		}
		switch {
		case rest == "":
			return true
		case strings.HasPrefix(rest, "."):
			if n.class == rest[1:] {
				return true
			}
		case strings.HasPrefix(rest, "#"):
			if n.id == rest[1:] {
				return true
			}
		}
	}
	return false
}

func (n *fakeNode) collect(selector string, out *[]*fakeNode) {
	for _, child := range n.children {
		if child.matches(selector) {
			*out = append(*out, child)
		}
		child.collect(selector, out)
	}
}

func (n *fakeNode) fullText() string {
	parts := []string{}
	if n.text != "" {
		parts = append(parts, n.text)
	}
	for _, child := range n.children {
		if t := child.fullText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

type fakeElement struct {
	node *fakeNode
}

func (e *fakeElement) Text() string { return e.node.fullText() }

func (e *fakeElement) Attr(name string) string { return e.node.attrs[name] }

func (e *fakeElement) Click(ctx context.Context) error {
	if e.node.onClick != nil {
		e.node.onClick()
	}
	return nil
}

func (e *fakeElement) Query(selector string) ([]browse.Element, error) {
	var nodes []*fakeNode
	e.node.collect(selector, &nodes)
	return wrap(nodes), nil
}

func (e *fakeElement) ScrollToEnd(ctx context.Context) error { return nil }

func wrap(nodes []*fakeNode) []browse.Element {
	out := make([]browse.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &fakeElement{node: n}
	}
	return out
}

type fakePage struct {
	cards     []*fakeNode
	modal     *fakeNode
	navigated string
	keys      []string
	// scrollPositions is the sequence ScrollBy reports; when
	// exhausted the position stops advancing.
	scrollPositions []int
	scrollCalls     int
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = url
	return nil
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if els, _ := p.Query(selector); len(els) > 0 {
		return nil
	}
	return browse.ErrNotFound
}

func (p *fakePage) Query(selector string) ([]browse.Element, error) {
	root := &fakeNode{tag: "body", children: p.cards}
	if p.modal != nil {
		root.children = append(append([]*fakeNode{}, p.cards...), p.modal)
	}
	var nodes []*fakeNode
	root.collect(selector, &nodes)
	return wrap(nodes), nil
}

func (p *fakePage) ScrollBy(ctx context.Context, pixels int) (int, error) {
	p.scrollCalls++
	if len(p.scrollPositions) == 0 {
		return 0, nil
	}
	i := p.scrollCalls - 1
	if i >= len(p.scrollPositions) {
		i = len(p.scrollPositions) - 1
	}
	return p.scrollPositions[i], nil
}

func (p *fakePage) PressKey(ctx context.Context, key string) error {
	p.keys = append(p.keys, key)
	if key == "Escape" {
		p.modal = nil
	}
	return nil
}

// newGalleryPage builds a three-card page. Card titles and modals
// mirror the real gallery's structure; broken indexes get a card
// whose click opens nothing.
func newGalleryPage(broken map[int]bool) *fakePage {
	p := &fakePage{scrollPositions: []int{500, 1000, 1000}}

	specs := []struct {
		title, thumb, source, segText string
		tags                          []string
	}{
		{
			title:  "案例 1：水晶之城",
			thumb:  "https://cdn.example.com/thumb1.jpg",
			source: "https://x.com/artist1/status/111",
			segText: "提示词 1\nA crystal city floating in the sky above the clouds, ultra detailed matte painting\n复制\n" +
				"提示词 2\nAn underwater library with glowing jellyfish lanterns drifting between shelves\n复制",
			tags: []string{"fantasy", "cityscape", "复制", "x"},
		},
		{
			title: "案例 2：破碎的模态框",
			thumb: "https://cdn.example.com/thumb2.jpg",
		},
		{
			title:   "Case 3: Tiny Robot",
			thumb:   "https://cdn.example.com/thumb3.jpg",
			source:  "https://x.com/artist3/status/333",
			segText: "提示词 1\nA tiny desk robot made of brass gears pouring coffee into a thimble cup\n复制",
			tags:    []string{"robot", "macro"},
		},
	}

	for i, spec := range specs {
		i, spec := i, spec
		card := &fakeNode{
			tag:   "article",
			class: "prompt-card",
			children: []*fakeNode{
				{tag: "h3", text: spec.title},
				{tag: "img", attrs: map[string]string{"src": spec.thumb}},
			},
		}
		if !broken[i] {
			modal := buildModal(p, spec.title, spec.source, spec.thumb, spec.segText, spec.tags)
			card.onClick = func() { p.modal = modal }
		}
		p.cards = append(p.cards, card)
	}
	return p
}

func buildModal(p *fakePage, title, source, thumb, segText string, tags []string) *fakeNode {
	modal := &fakeNode{
		tag:   "div",
		class: "modal-content",
		children: []*fakeNode{
			{tag: "h2", text: title},
			{tag: "a", attrs: map[string]string{"href": source}},
			{tag: "img", attrs: map[string]string{"src": thumb}},
			{tag: "img", attrs: map[string]string{"src": "data:image/png;base64,xyz"}},
			{tag: "img", attrs: map[string]string{"src": thumb}}, // duplicate
			{tag: "div", text: segText},
		},
	}
	for _, tag := range tags {
		modal.children = append(modal.children, &fakeNode{tag: "span", text: tag})
	}
	modal.children = append(modal.children, &fakeNode{
		tag: "button", id: "modalClose",
		onClick: func() { p.modal = nil },
	})
	return modal
}
