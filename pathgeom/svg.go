// Package pathgeom turns SVG path outlines into extruded triangle meshes.
package pathgeom

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

var ErrNoPaths = errors.New("svg document has no path elements")

// ExtractPaths returns the d attribute of every <path> element, in document
// order.
func ExtractPaths(svg string) ([]string, error) {
	lexer := xml.NewLexer(parse.NewInputString(svg))

	var paths []string
	inPath := false
	for {
		tt, _ := lexer.Next()
		switch tt {
		case xml.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("lex svg: %w", err)
			}
			if len(paths) == 0 {
				return nil, ErrNoPaths
			}
			return paths, nil
		case xml.StartTagToken:
			inPath = bytes.Equal(lexer.Text(), []byte("path"))
		case xml.AttributeToken:
			if inPath && bytes.Equal(lexer.Text(), []byte("d")) {
				paths = append(paths, string(unquote(lexer.AttrVal())))
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			inPath = false
		}
	}
}

func unquote(b []byte) []byte {
	if len(b) >= 2 && (b[0] == '"' || b[0] == '\'') && b[len(b)-1] == b[0] {
		return b[1 : len(b)-1]
	}
	return b
}
