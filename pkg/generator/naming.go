package generator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/buml/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleWord upper-cases the first letter and keeps the rest as is.
// Casers are stateful, so one is built per call.
func titleWord(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// words splits an identifier on underscores, dashes and case changes.
// "HTTPServer_config" -> [HTTP Server config].
func words(s string) []string {
	var out []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// snakeCase converts "BookAuthor" to "book_author".
func snakeCase(s string) string {
	w := words(s)
	for i := range w {
		w[i] = strings.ToLower(w[i])
	}
	return strings.Join(w, "_")
}

// pascalCase converts "book_author" to "BookAuthor".
func pascalCase(s string) string {
	w := words(s)
	for i := range w {
		w[i] = titleWord(w[i])
	}
	return strings.Join(w, "")
}

// camelCase converts "BookAuthor" to "bookAuthor" and "HTTPServer" to "httpServer".
func camelCase(s string) string {
	w := words(s)
	for i := range w {
		if i == 0 {
			w[i] = strings.ToLower(w[i])
			continue
		}
		w[i] = titleWord(w[i])
	}
	return strings.Join(w, "")
}

// orderedClasses returns the classes with every parent before its children,
// otherwise keeping model order.
func orderedClasses(m *domain.DomainModel) []*domain.Class {
	classes := m.Classes()
	index := make(map[*domain.Class]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	var out []*domain.Class
	visited := make(map[*domain.Class]bool, len(classes))
	var visit func(c *domain.Class)
	visit = func(c *domain.Class) {
		if visited[c] {
			return
		}
		visited[c] = true
		parents := m.Parents(c)
		sort.SliceStable(parents, func(i, j int) bool { return index[parents[i]] < index[parents[j]] })
		for _, p := range parents {
			visit(p)
		}
		out = append(out, c)
	}
	for _, c := range classes {
		visit(c)
	}
	return out
}

// lineage returns the ancestors of c, most distant first, followed by c.
func lineage(m *domain.DomainModel, c *domain.Class) []*domain.Class {
	anc := m.Ancestors(c)
	out := make([]*domain.Class, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, anc[i])
	}
	return append(out, c)
}

// navigableEnds returns the association ends reachable from c: each entry's
// Type is the class on the other side.
func navigableEnds(m *domain.DomainModel, c *domain.Class) []*domain.Property {
	var out []*domain.Property
	for _, a := range m.AssociationsOf(c) {
		for _, end := range a.Ends {
			if end.Owner == c && end.IsNavigable {
				out = append(out, end)
			}
		}
	}
	return out
}

// className returns the class name of an association end's type.
func className(t domain.Type) string {
	if t == nil {
		return ""
	}
	return t.TypeName()
}
