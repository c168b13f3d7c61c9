// Package lookml serializes a minimal LookML syntax tree to text
package lookml

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Kind controls how an attribute value is written
type Kind int

const (
	// KindString is a double quoted string
	KindString Kind = iota
	// KindBare is an unquoted keyword or number (yes, count, 50)
	KindBare
	// KindSQL is an expression terminated by ;;
	KindSQL
	// KindList is a bracketed list of bare values
	KindList
	// KindQuotedList is a bracketed list of quoted strings
	KindQuotedList
)

// Attr is one key/value line of a block
type Attr struct {
	Key    string
	Kind   Kind
	Value  string
	Values []string
}

// String creates a quoted attribute
func String(key, value string) Attr {
	return Attr{Key: key, Kind: KindString, Value: value}
}

// Bare creates an unquoted attribute
func Bare(key, value string) Attr {
	return Attr{Key: key, Kind: KindBare, Value: value}
}

// Yes creates a "key: yes" attribute
func Yes(key string) Attr {
	return Bare(key, "yes")
}

// SQL creates an attribute terminated by ;;
func SQL(key, value string) Attr {
	return Attr{Key: key, Kind: KindSQL, Value: value}
}

// List creates a bracketed list attribute
func List(key string, values ...string) Attr {
	return Attr{Key: key, Kind: KindList, Values: values}
}

// QuotedList creates a bracketed list of quoted strings
func QuotedList(key string, values ...string) Attr {
	return Attr{Key: key, Kind: KindQuotedList, Values: values}
}

// Block is a named LookML object such as view, dimension or join. An empty
// Name writes an anonymous block ("allowed_value: { ... }").
type Block struct {
	Type     string
	Name     string
	Attrs    []Attr
	Children []*Block
}

// NewBlock creates a block
func NewBlock(blockType, name string, attrs ...Attr) *Block {
	return &Block{Type: blockType, Name: name, Attrs: attrs}
}

// Add appends attributes, skipping string attributes with an empty value
func (b *Block) Add(attrs ...Attr) *Block {
	for _, attr := range attrs {
		if (attr.Kind == KindString || attr.Kind == KindBare) && attr.Value == "" {
			continue
		}

		b.Attrs = append(b.Attrs, attr)
	}

	return b
}

// AddChild appends child blocks
func (b *Block) AddChild(children ...*Block) *Block {
	b.Children = append(b.Children, children...)

	return b
}

// Child finds a direct child by type and name
func (b *Block) Child(blockType, name string) (*Block, bool) {
	for _, child := range b.Children {
		if child.Type == blockType && child.Name == name {
			return child, true
		}
	}

	return nil, false
}

// Attr finds an attribute by key
func (b *Block) Attr(key string) (Attr, bool) {
	for _, attr := range b.Attrs {
		if attr.Key == key {
			return attr, true
		}
	}

	return Attr{}, false
}

// File is a top-level LookML file
type File struct {
	// Header lines are written as comments
	Header []string
	Attrs  []Attr
	Blocks []*Block
}

// Write serializes f to w
func Write(w io.Writer, f *File) error {
	var buf bytes.Buffer

	for _, line := range f.Header {
		fmt.Fprintf(&buf, "# %s\n", line)
	}

	if len(f.Header) > 0 {
		buf.WriteString("\n")
	}

	for _, attr := range f.Attrs {
		writeAttr(&buf, attr, 0)
	}

	for i, block := range f.Blocks {
		if i > 0 || len(f.Attrs) > 0 {
			buf.WriteString("\n")
		}

		writeBlock(&buf, block, 0)
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// Marshal serializes f to a string
func Marshal(f *File) string {
	var sb strings.Builder

	_ = Write(&sb, f)

	return sb.String()
}

func writeBlock(buf *bytes.Buffer, block *Block, depth int) {
	indent := strings.Repeat("  ", depth)

	if block.Name == "" {
		fmt.Fprintf(buf, "%s%s: {\n", indent, block.Type)
	} else {
		fmt.Fprintf(buf, "%s%s: %s {\n", indent, block.Type, block.Name)
	}

	for _, attr := range block.Attrs {
		writeAttr(buf, attr, depth+1)
	}

	for i, child := range block.Children {
		if i > 0 || len(block.Attrs) > 0 {
			buf.WriteString("\n")
		}

		writeBlock(buf, child, depth+1)
	}

	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeAttr(buf *bytes.Buffer, attr Attr, depth int) {
	indent := strings.Repeat("  ", depth)

	switch attr.Kind {
	case KindBare:
		fmt.Fprintf(buf, "%s%s: %s\n", indent, attr.Key, attr.Value)
	case KindSQL:
		if value := strings.TrimSpace(attr.Value); value != "" {
			fmt.Fprintf(buf, "%s%s: %s ;;\n", indent, attr.Key, value)
		} else {
			fmt.Fprintf(buf, "%s%s: ;;\n", indent, attr.Key)
		}
	case KindList:
		fmt.Fprintf(buf, "%s%s: [%s]\n", indent, attr.Key, strings.Join(attr.Values, ", "))
	case KindQuotedList:
		quoted := make([]string, 0, len(attr.Values))
		for _, value := range attr.Values {
			quoted = append(quoted, quote(value))
		}

		fmt.Fprintf(buf, "%s%s: [%s]\n", indent, attr.Key, strings.Join(quoted, ", "))
	default:
		fmt.Fprintf(buf, "%s%s: %s\n", indent, attr.Key, quote(attr.Value))
	}
}

func quote(value string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
}
