package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSyntax is returned when a manifest cannot be parsed
var ErrSyntax = errors.New("manifest syntax error")

// Node is a key with either a string value or an ordered list of children
type Node struct {
	Key      string
	Value    string
	Children []*Node
	IsBlock  bool
}

// Child returns the first direct child with the given key (case-insensitive)
func (n *Node) Child(key string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Key, key) {
			return c
		}
	}
	return nil
}

// Find walks a key path from n
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, key := range path {
		cur = cur.Child(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Count returns how many direct children have the given key
func (n *Node) Count(key string) int {
	count := 0
	for _, c := range n.Children {
		if strings.EqualFold(c.Key, key) {
			count++
		}
	}
	return count
}

type tokenKind int

const (
	tokenString tokenKind = iota
	tokenOpen
	tokenClose
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	r    *bufio.Reader
	line int
}

func (l *lexer) next() (token, error) {
	for {
		ch, _, err := l.r.ReadRune()
		if err == io.EOF {
			return token{kind: tokenEOF, line: l.line}, nil
		}
		if err != nil {
			return token{}, err
		}

		switch {
		case ch == '\n':
			l.line++
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\uFEFF':
		case ch == '{':
			return token{kind: tokenOpen, line: l.line}, nil
		case ch == '}':
			return token{kind: tokenClose, line: l.line}, nil
		case ch == '/':
			next, _, err := l.r.ReadRune()
			if err != nil || next != '/' {
				return token{}, fmt.Errorf("%w: line %d: unexpected '/'", ErrSyntax, l.line)
			}
			if _, err := l.r.ReadString('\n'); err != nil && err != io.EOF {
				return token{}, err
			}
			l.line++
		case ch == '"':
			return l.quoted()
		default:
			return l.bare(ch)
		}
	}
}

func (l *lexer) quoted() (token, error) {
	start := l.line
	var sb strings.Builder
	for {
		ch, _, err := l.r.ReadRune()
		if err == io.EOF {
			return token{}, fmt.Errorf("%w: line %d: unterminated string", ErrSyntax, start)
		}
		if err != nil {
			return token{}, err
		}
		switch ch {
		case '"':
			return token{kind: tokenString, text: sb.String(), line: start}, nil
		case '\n':
			l.line++
			sb.WriteRune(ch)
		case '\\':
			esc, _, err := l.r.ReadRune()
			if err != nil {
				return token{}, fmt.Errorf("%w: line %d: dangling escape", ErrSyntax, l.line)
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"':
				sb.WriteRune(esc)
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

func (l *lexer) bare(first rune) (token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch, _, err := l.r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '{' || ch == '}' || ch == '"' {
			if err := l.r.UnreadRune(); err != nil {
				return token{}, err
			}
			break
		}
		sb.WriteRune(ch)
	}
	return token{kind: tokenString, text: sb.String(), line: l.line}, nil
}

// Parse reads a VDF document and returns a synthetic root whose children are
// the top-level entries.
func Parse(r io.Reader) (*Node, error) {
	lex := &lexer{r: bufio.NewReader(r), line: 1}
	root := &Node{IsBlock: true}
	if err := parseBlock(lex, root, true); err != nil {
		return nil, err
	}
	return root, nil
}

func parseBlock(lex *lexer, parent *Node, top bool) error {
	for {
		tok, err := lex.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokenEOF:
			if top {
				return nil
			}
			return fmt.Errorf("%w: line %d: missing '}'", ErrSyntax, tok.line)
		case tokenClose:
			if top {
				return fmt.Errorf("%w: line %d: unexpected '}'", ErrSyntax, tok.line)
			}
			return nil
		case tokenOpen:
			return fmt.Errorf("%w: line %d: block without key", ErrSyntax, tok.line)
		}

		node := &Node{Key: tok.text}
		parent.Children = append(parent.Children, node)

		val, err := lex.next()
		if err != nil {
			return err
		}
		switch val.kind {
		case tokenString:
			node.Value = val.text
		case tokenOpen:
			node.IsBlock = true
			if err := parseBlock(lex, node, false); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: line %d: key %q has no value", ErrSyntax, val.line, node.Key)
		}
	}
}
