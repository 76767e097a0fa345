package block

import (
	"strings"

	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

// ElseKind the kind of the alternative branch of a conditional
const ElseKind = "control.else"

// New create a block
func New(kind string) *Block {
	return &Block{Kind: kind, Params: map[string]Param{}}
}

// Lit a literal parameter
func Lit(v interface{}) Param {
	return Param{Kind: Literal, Value: value.Of(v)}
}

// RefTo a variable reference parameter
func RefTo(ref string) Param {
	return Param{Kind: Reference, Ref: variable.ParseRef(ref)}
}

// Text a text parameter, text holding placeholders becomes a template
func Text(text string) Param {
	if variable.HasPlaceholder(text) {
		return Param{Kind: Template, Template: text}
	}
	return Param{Kind: Literal, Value: value.NewText(text)}
}

// ParamOf the parameter form of a declared value: "?:scope.name" is a
// reference, text with placeholders a template, anything else a literal
func ParamOf(v interface{}) Param {
	text, ok := v.(string)
	if !ok {
		return Lit(v)
	}

	if strings.HasPrefix(text, "?:") && !strings.ContainsAny(text, " \t\n") {
		return RefTo(text[2:])
	}
	return Text(text)
}

// With set a parameter
func (b *Block) With(name string, v interface{}) *Block {
	switch p := v.(type) {
	case Param:
		b.Params[name] = p
	case string:
		b.Params[name] = Text(p)
	default:
		b.Params[name] = Lit(v)
	}
	return b
}

// Ref set a variable reference parameter
func (b *Block) Ref(name string, ref string) *Block {
	b.Params[name] = RefTo(ref)
	return b
}

// Named set the block id
func (b *Block) Named(id string) *Block {
	b.ID = id
	return b
}

// Body append a body chain
func (b *Block) Body(blocks ...*Block) *Block {
	if head := Chain(blocks...); head != nil {
		b.Children = append(b.Children, head)
	}
	return b
}

// Else append the alternative branch
func (b *Block) Else(blocks ...*Block) *Block {
	b.Children = append(b.Children, New(ElseKind).Body(blocks...))
	return b
}

// Then set the continuation
func (b *Block) Then(next *Block) *Block {
	b.Next = next
	return b
}

// Param get a parameter
func (b *Block) Param(name string) (Param, bool) {
	p, has := b.Params[name]
	return p, has
}

// Label the block id or its kind
func (b *Block) Label() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Kind
}

// Chain link the blocks through Next and return the head
func Chain(blocks ...*Block) *Block {
	var head, tail *Block
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if head == nil {
			head = b
		} else {
			tail.Next = b
		}
		tail = b
		for tail.Next != nil {
			tail = tail.Next
		}
	}
	return head
}

// Split the body chains of a conditional: the branch taken when the
// condition holds and the alternative branch
func Split(children []*Block) ([]*Block, []*Block) {
	then := []*Block{}
	alt := []*Block{}
	for _, child := range children {
		if child.Kind == ElseKind {
			alt = append(alt, child.Children...)
			continue
		}
		then = append(then, child)
	}
	return then, alt
}
