package template

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	documentNode nodeKind = iota
	elementNode
	textNode
	commentNode
	procInstNode
	directiveNode
)

// node is a minimal XML tree that round-trips namespace prefixes untouched
type node struct {
	kind     nodeKind
	name     xml.Name // prefix in Space, not the namespace URL
	attrs    []xml.Attr
	data     []byte // text, comment, directive or procinst content
	target   string // procinst target
	children []*node
}

func parseDocument(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &node{kind: documentNode}
	stack := []*node{doc}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		parent := stack[len(stack)-1]

		switch t := xml.CopyToken(tok).(type) {
		case xml.StartElement:
			el := &node{kind: elementNode, name: t.Name, attrs: t.Attr}
			parent.children = append(parent.children, el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 1 || parent.name != t.Name {
				return nil, fmt.Errorf("unexpected closing tag </%s>", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			parent.children = append(parent.children, &node{kind: textNode, data: t})
		case xml.Comment:
			parent.children = append(parent.children, &node{kind: commentNode, data: t})
		case xml.ProcInst:
			parent.children = append(parent.children, &node{kind: procInstNode, target: t.Target, data: t.Inst})
		case xml.Directive:
			parent.children = append(parent.children, &node{kind: directiveNode, data: t})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("unclosed element <%s>", qualified(stack[len(stack)-1].name))
	}
	return doc, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// root returns the first element child of the document
func (n *node) root() *node {
	for _, c := range n.children {
		if c.kind == elementNode {
			return c
		}
	}
	return nil
}

func (n *node) clone() *node {
	c := &node{
		kind:   n.kind,
		name:   n.name,
		target: n.target,
	}
	if n.attrs != nil {
		c.attrs = append([]xml.Attr(nil), n.attrs...)
	}
	if n.data != nil {
		c.data = append([]byte(nil), n.data...)
	}
	if n.children != nil {
		c.children = make([]*node, len(n.children))
		for i, child := range n.children {
			c.children[i] = child.clone()
		}
	}
	return c
}

// attr looks an attribute up by local name, ignoring any prefix
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// setAttr replaces every attribute with the local name, or appends an unprefixed one
func (n *node) setAttr(local, value string) {
	found := false
	for i := range n.attrs {
		if n.attrs[i].Name.Local == local {
			n.attrs[i].Value = value
			found = true
		}
	}
	if !found {
		n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
	}
}

func (n *node) removeAttr(local string) {
	kept := n.attrs[:0]
	for _, a := range n.attrs {
		if a.Name.Local != local {
			kept = append(kept, a)
		}
	}
	n.attrs = kept
}

// textContent concatenates all character data below n
func (n *node) textContent() string {
	var b strings.Builder
	n.walk(func(c *node) {
		if c.kind == textNode {
			b.Write(c.data)
		}
	})
	return b.String()
}

func (n *node) setText(s string) {
	n.children = []*node{{kind: textNode, data: []byte(s)}}
}

// walk visits n and its descendants in document order
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// slotElements indexes the <text> and <image> elements carrying an id attribute
func (n *node) slotElements() map[string]*node {
	ids := make(map[string]*node)
	n.walk(func(c *node) {
		if c.kind != elementNode || (c.name.Local != "text" && c.name.Local != "image") {
			return
		}
		if id, ok := c.attr("id"); ok && id != "" {
			if _, seen := ids[id]; !seen {
				ids[id] = c
			}
		}
	})
	return ids
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;", "\t", "&#x9;")
)

func (n *node) writeTo(w *bufio.Writer) error {
	switch n.kind {
	case documentNode:
		for _, c := range n.children {
			if err := c.writeTo(w); err != nil {
				return err
			}
		}
	case elementNode:
		w.WriteString("<" + qualified(n.name))
		for _, a := range n.attrs {
			w.WriteString(" " + qualified(a.Name) + `="` + attrEscaper.Replace(a.Value) + `"`)
		}
		if len(n.children) == 0 {
			w.WriteString("/>")
			return nil
		}
		w.WriteString(">")
		for _, c := range n.children {
			if err := c.writeTo(w); err != nil {
				return err
			}
		}
		w.WriteString("</" + qualified(n.name) + ">")
	case textNode:
		w.WriteString(textEscaper.Replace(string(n.data)))
	case commentNode:
		w.WriteString("<!--")
		w.Write(n.data)
		w.WriteString("-->")
	case procInstNode:
		w.WriteString("<?" + n.target)
		if len(n.data) > 0 {
			w.WriteString(" ")
			w.Write(n.data)
		}
		w.WriteString("?>")
	case directiveNode:
		w.WriteString("<!")
		w.Write(n.data)
		w.WriteString(">")
	}
	return nil
}
