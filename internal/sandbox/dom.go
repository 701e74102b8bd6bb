package sandbox

import (
	"slices"
	"strings"
	"sync"
)

// DOMChange is one mutation the bridge made to the page document
type DOMChange struct {
	Type     string `json:"type"` // append_child, remove_child
	Selector string `json:"selector"`
	Property string `json:"property"`
	Value    string `json:"value"`
}

// DOM is the minimal document a page script sees: a body to attach
// hidden forms to, and lookup by id, class or tag.
type DOM struct {
	mu      sync.RWMutex
	root    *Element
	changes []DOMChange
}

// Element is a node of the page document
type Element struct {
	TagName     string
	ID          string
	ClassName   string
	TextContent string
	Attributes  map[string]string
	Children    []*Element
	Parent      *Element
}

// NewElement creates a detached element; id and class attributes are
// mirrored onto ID and ClassName.
func NewElement(tag string, attrs map[string]string) *Element {
	el := &Element{TagName: tag, Attributes: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		el.SetAttribute(k, v)
	}
	return el
}

// NewDOM creates an empty document with a body
func NewDOM() *DOM {
	root := NewElement("document", nil)
	root.AddElement(NewElement("body", nil))
	return &DOM{root: root}
}

// Root returns the document element
func (d *DOM) Root() *Element {
	return d.root
}

// Body returns the body element, creating it if the document has none
func (d *DOM) Body() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if found := d.find(func(e *Element) bool { return e.TagName == "body" }); len(found) > 0 {
		return found[0]
	}
	body := NewElement("body", nil)
	d.root.AddElement(body)
	return body
}

// Query finds elements matching "#id", ".class" or a tag name
func (d *DOM) Query(selector string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var match func(*Element) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		match = func(e *Element) bool { return e.ID == id }
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		match = func(e *Element) bool { return slices.Contains(strings.Fields(e.ClassName), class) }
	default:
		match = func(e *Element) bool { return strings.EqualFold(e.TagName, selector) }
	}

	found := d.find(match)
	if strings.HasPrefix(selector, "#") && len(found) > 1 {
		found = found[:1]
	}
	return found
}

// caller holds mu
func (d *DOM) find(match func(*Element) bool) []*Element {
	found := []*Element{}
	var walk func(*Element)
	walk = func(e *Element) {
		if match(e) {
			found = append(found, e)
		}
		for _, child := range e.Children {
			walk(child)
		}
	}
	walk(d.root)
	return found
}

// GetChanges returns the mutations recorded so far
func (d *DOM) GetChanges() []DOMChange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.changes)
}

// RecordChange appends a mutation to the change log
func (d *DOM) RecordChange(change DOMChange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, change)
}

// GetAttribute returns the attribute value, "" when unset
func (e *Element) GetAttribute(name string) string {
	return e.Attributes[name]
}

func (e *Element) SetAttribute(name, value string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[name] = value
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.ClassName = value
	}
}

// AddElement appends child
func (e *Element) AddElement(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Remove detaches the element from its parent
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	e.Parent.Children = slices.DeleteFunc(e.Parent.Children, func(c *Element) bool { return c == e })
	e.Parent = nil
}
