package ast

// SourceParser lowers a source file into a syntax tree.
type SourceParser interface {
	ParseSource(filePath string, content []byte) (*Tree, error)
}

var parsers = make(map[string]SourceParser)

// RegisterParser registers a parser for a file extension (e.g. ".c").
func RegisterParser(ext string, p SourceParser) {
	parsers[ext] = p
}

// ParserFor retrieves the parser for the given extension.
func ParserFor(ext string) (SourceParser, bool) {
	p, ok := parsers[ext]
	return p, ok
}
