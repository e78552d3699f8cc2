// Package shopping merges the ingredient lines of every recipe in a cart into
// a single shopping list.
package shopping

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Header is the first line of a rendered list.
	Header = "Shopping list:"
	// Footer closes a rendered list.
	Footer = "Happy shopping!"
	// FileName is the attachment name used when the list is downloaded.
	FileName = "shopping_list.txt"
	// ContentType of the rendered list.
	ContentType = "text/plain; charset=utf-8"
)

// Line is one ingredient requirement of one recipe in the cart.
type Line struct {
	IngredientID uint
	Name         string
	Unit         string
	Amount       int
}

// Item is an aggregated shopping list entry.
type Item struct {
	Name   string
	Unit   string
	Amount int
}

// List accumulates amounts per ingredient, remembering the order in which
// ingredients were first seen. A List is not safe for concurrent use; build
// one per request.
type List struct {
	index map[uint]int
	items []Item
}

// New returns an empty List.
func New() *List {
	return &List{index: make(map[uint]int)}
}

// Aggregate builds a List from lines in the given order.
func Aggregate(lines []Line) *List {
	l := New()
	for _, line := range lines {
		l.Add(line)
	}
	return l
}

// Add sums line into the list. Amounts are validated upstream, so a negative
// amount means the caller broke the contract and Add panics.
func (l *List) Add(line Line) {
	if line.Amount < 0 {
		panic(fmt.Sprintf("shopping: negative amount %d for ingredient %d", line.Amount, line.IngredientID))
	}
	if i, ok := l.index[line.IngredientID]; ok {
		l.items[i].Amount += line.Amount
		return
	}
	l.index[line.IngredientID] = len(l.items)
	l.items = append(l.items, Item{Name: line.Name, Unit: line.Unit, Amount: line.Amount})
}

// Len reports the number of distinct ingredients.
func (l *List) Len() int {
	return len(l.items)
}

// Total returns the accumulated amount for an ingredient.
func (l *List) Total(ingredientID uint) (int, bool) {
	i, ok := l.index[ingredientID]
	if !ok {
		return 0, false
	}
	return l.items[i].Amount, true
}

// All yields the items in first-appearance order.
func (l *List) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, item := range l.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Render returns the downloadable text form of the list.
func (l *List) Render() string {
	var b strings.Builder
	l.render(&b)
	return b.String()
}

// WriteTo writes the rendered list to w.
func (l *List) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.Render())
	return int64(n), err
}

func (l *List) render(b *strings.Builder) {
	// Casers keep state, so every render gets its own.
	lower := cases.Lower(language.Und)

	b.WriteString(Header)
	b.WriteString("\n\n")
	for item := range l.All() {
		b.WriteString(capitalize(lower, FormatItem(item)))
		b.WriteByte('\n')
	}
	b.WriteString(Footer)
}

// FormatItem renders an item without case mapping, e.g. "flour(g) - 500,".
func FormatItem(item Item) string {
	return fmt.Sprintf("%s(%s) - %d,", item.Name, item.Unit, item.Amount)
}

// capitalize upper-cases the first rune of s and lower-cases the rest.
func capitalize(lower cases.Caser, s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToTitle(r)) + lower.String(s[size:])
}
