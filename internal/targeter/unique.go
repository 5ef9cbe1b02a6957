package targeter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// PickedAttr tags the clicked node in the document snapshot sent back by the
// page. It is stripped before any locator is derived.
const PickedAttr = "data-inline-ai-picked"

var ErrPickedNodeNotFound = errors.New("clicked node missing from document snapshot")

// Locate resolves a locator for target inside doc. Marker and id locators are
// used as is. A path locator must select exactly target in doc; otherwise it
// is replaced by an :nth-child path anchored at the root element.
func Locate(doc, target *html.Node) string {
	loc, s := resolve(target)
	if s != strategyPath {
		return loc
	}

	sel, err := cascadia.Compile(loc)
	if err == nil {
		if matches := cascadia.QueryAll(doc, sel); len(matches) == 1 && matches[0] == target {
			return loc
		}
	}
	return nthChildPath(target)
}

// LocateInSnapshot parses a serialised document, finds the node tagged with
// PickedAttr and resolves its locator.
func LocateInSnapshot(document string) (string, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parsing document snapshot: %w", err)
	}

	target := findPicked(doc)
	if target == nil {
		return "", ErrPickedNodeNotFound
	}
	removeAttr(target, PickedAttr)

	return Locate(doc, target), nil
}

func nthChildPath(el *html.Node) string {
	var parts []string
	for n := el; n != nil && n.Type == html.ElementNode; n = n.Parent {
		tag := strings.ToLower(n.Data)
		if n.Parent == nil || n.Parent.Type != html.ElementNode {
			parts = append([]string{tag}, parts...)
			break
		}
		parts = append([]string{fmt.Sprintf("%s:nth-child(%d)", tag, elementIndex(n))}, parts...)
	}
	return strings.Join(parts, " > ")
}

func elementIndex(n *html.Node) int {
	i := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}

func findPicked(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if _, ok := attr(n, PickedAttr); ok {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findPicked(c); found != nil {
			return found
		}
	}
	return nil
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}
