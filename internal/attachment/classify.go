// Package attachment decides how a message's file is displayed.
//
// The decision is a two-way branch on the extension: pdf files are shown as
// documents and every other file is shown as an image.
package attachment

import "strings"

type Kind int

const (
	None Kind = iota
	Image
	Document
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Document:
		return "document"
	default:
		return "none"
	}
}

// Classify inspects the extension of the URL path.
func Classify(url *string) Kind {
	if url == nil || *url == "" {
		return None
	}
	if Extension(*url) == "pdf" {
		return Document
	}
	return Image
}

// Extension returns what follows the last '.' of the path, ignoring query and
// fragment. A path without a dot yields the whole path.
func Extension(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if i := strings.LastIndexByte(url, '.'); i >= 0 {
		return url[i+1:]
	}
	return url
}
