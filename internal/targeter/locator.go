package targeter

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// MarkerAttr gives an element an intentional, stable identity for tooling.
const MarkerAttr = "data-ai-id"

const maxPathDepth = 4

type strategy int

const (
	strategyMarker strategy = iota
	strategyID
	strategyPath
)

// ResolveLocator derives a selector for el. The first rule that applies wins:
// the nearest self-or-ancestor carrying a marker, the element's own id, then a
// tag-and-first-class path of at most four levels.
func ResolveLocator(el *html.Node) string {
	loc, _ := resolve(el)
	return loc
}

func resolve(el *html.Node) (string, strategy) {
	for n := el; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if v, ok := attr(n, MarkerAttr); ok && v != "" {
			return fmt.Sprintf(`[%s="%s"]`, MarkerAttr, cssString(v)), strategyMarker
		}
	}

	if id, ok := attr(el, "id"); ok && id != "" {
		return "#" + cssEscape(id), strategyID
	}

	return pathLocator(el), strategyPath
}

func pathLocator(el *html.Node) string {
	var parts []string
	for n := el; n != nil && n.Type == html.ElementNode && len(parts) < maxPathDepth; n = n.Parent {
		seg := strings.ToLower(n.Data)
		if class, ok := attr(n, "class"); ok {
			if fields := strings.Fields(class); len(fields) > 0 {
				seg += "." + cssEscape(fields[0])
			}
		}
		parts = append([]string{seg}, parts...)
	}
	return strings.Join(parts, " > ")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// cssEscape serialises an identifier the way CSS.escape does.
func cssEscape(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case r >= '0' && r <= '9' && (i == 0 || (i == 1 && runes[0] == '-')):
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '-' && i == 0 && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cssString escapes a value for use inside a double-quoted CSS string.
func cssString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == 0:
			b.WriteRune('\uFFFD')
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
