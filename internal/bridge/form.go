package bridge

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Field is one hidden input of a synthesized form.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Form is a hidden HTML form built for a single POST dispatch. Field values
// are carried raw; form submission does the encoding.
type Form struct {
	Action string  `json:"action"`
	Method string  `json:"method"`
	Fields []Field `json:"fields"`
}

// NewForm builds a post form for req: the action is req.URL() and there is
// one field per body parameter, in order.
func NewForm(req Request) *Form {
	f := &Form{
		Action: req.URL(),
		Method: "post",
		Fields: make([]Field, 0, req.Body.Len()),
	}
	req.Body.Each(func(k, v string) {
		f.Fields = append(f.Fields, Field{Name: k, Value: v})
	})
	return f
}

// Values returns the fields as Params.
func (f *Form) Values() *Params {
	p := &Params{}
	for _, field := range f.Fields {
		p.Set(field.Name, field.Value)
	}
	return p
}

// Node builds the form element tree.
func (f *Form) Node() *html.Node {
	form := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Form,
		Data:     "form",
		Attr: []html.Attribute{
			{Key: "action", Val: f.Action},
			{Key: "method", Val: f.Method},
			{Key: "style", Val: "display:none"},
		},
	}
	for _, field := range f.Fields {
		form.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Input,
			Data:     "input",
			Attr: []html.Attribute{
				{Key: "type", Val: "hidden"},
				{Key: "name", Val: field.Name},
				{Key: "value", Val: field.Value},
			},
		})
	}
	return form
}

// HTML renders the form markup.
func (f *Form) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, f.Node()); err != nil {
		return ""
	}
	return buf.String()
}
