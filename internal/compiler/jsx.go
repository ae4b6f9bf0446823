package compiler

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/weft-ui/weft/internal/compiler/diag"
)

// jsxTransformer rewrites JSX element syntax into h(...) factory calls,
// leaving all other source text untouched. It is a syntax-level rewriter, not
// a JavaScript parser: it tracks just enough lexical state (strings, comments,
// expression position) to locate JSX boundaries reliably.
type jsxTransformer struct {
	src  string
	pos  int
	line int
	col  int
	out  strings.Builder

	// lastSig is the last significant (non-space, non-comment) byte copied to
	// the output; it decides whether '<' opens a JSX element or is a
	// comparison operator.
	lastSig byte
	// lastWord is the last identifier copied, for keyword positions such as
	// `return <div/>`.
	lastWord string
}

// transformJSX converts all JSX in source to h() calls. On the first blocking
// syntax error it stops and returns the diagnostic.
func transformJSX(source string) (string, *diag.Diagnostic) {
	t := &jsxTransformer{src: source, line: 1, col: 1}
	if err := t.run(); err != nil {
		return "", err
	}
	return t.out.String(), nil
}

func (t *jsxTransformer) run() *diag.Diagnostic {
	for t.pos < len(t.src) {
		c := t.src[t.pos]

		switch {
		case c == '"' || c == '\'' || c == '`':
			if err := t.copyString(c); err != nil {
				return err
			}
		case c == '/' && t.peek(1) == '/':
			t.copyLineComment()
		case c == '/' && t.peek(1) == '*':
			t.copyBlockComment()
		case c == '<' && t.atJSXStart():
			expr, err := t.parseElement()
			if err != nil {
				return err
			}
			t.out.WriteString(expr)
			t.lastSig = ')'
			t.lastWord = ""
		default:
			if isWordByte(c) {
				start := t.pos
				for t.pos < len(t.src) && isWordByte(t.src[t.pos]) {
					t.advance()
				}
				word := t.src[start:t.pos]
				t.out.WriteString(word)
				t.lastWord = word
				t.lastSig = word[len(word)-1]
			} else {
				if !isSpaceByte(c) {
					t.lastSig = c
					t.lastWord = ""
				}
				t.out.WriteByte(c)
				t.advance()
			}
		}
	}
	return nil
}

// atJSXStart reports whether the '<' at the current position begins a JSX
// element rather than a comparison. JSX appears only in expression position:
// at the start of the source, after an opening delimiter or operator, or
// after keywords like return.
func (t *jsxTransformer) atJSXStart() bool {
	n := t.peek(1)
	if n != '>' && !isTagStartByte(n) {
		return false
	}
	switch t.lastWord {
	case "return", "default", "do", "else", "yield", "typeof":
		return true
	}
	if t.lastWord != "" {
		// `foo < bar` is a comparison
		return false
	}
	switch t.lastSig {
	case 0, '(', ',', '=', '?', ':', '{', '[', '&', '|', '!', ';', '>':
		// '>' covers arrow function bodies (`=>`); a comparison chain
		// `a > b < c` is not meaningful JSX position anyway.
		return true
	}
	return false
}

// parseElement consumes a JSX element (or fragment) starting at '<' and
// returns the equivalent h(...) expression.
func (t *jsxTransformer) parseElement() (string, *diag.Diagnostic) {
	startLine, startCol := t.line, t.col
	t.advance() // consume '<'

	// Fragment: <>children</>
	if t.cur() == '>' {
		t.advance()
		children, err := t.parseChildren("")
		if err != nil {
			return "", err
		}
		return buildCall("Fragment", "null", children), nil
	}

	tag := t.readTagName()
	if tag == "" {
		return "", diag.Errorf(diag.SyntaxUnterminatedElement, startLine, startCol, "expected element name after '<'")
	}

	props, selfClosing, err := t.parseAttributes(tag, startLine, startCol)
	if err != nil {
		return "", err
	}

	tagExpr := tag
	if isIntrinsicTag(tag) {
		tagExpr = quoteJS(tag)
	}

	if selfClosing {
		return buildCall(tagExpr, props, nil), nil
	}

	children, err := t.parseChildren(tag)
	if err != nil {
		return "", err
	}
	return buildCall(tagExpr, props, children), nil
}

// parseAttributes consumes attributes up to '>' or '/>'. It returns the props
// object literal ("null" when there are none).
func (t *jsxTransformer) parseAttributes(tag string, elemLine, elemCol int) (string, bool, *diag.Diagnostic) {
	var pairs []string

	for {
		t.skipSpace()
		if t.pos >= len(t.src) {
			return "", false, diag.Errorf(diag.SyntaxUnterminatedElement, elemLine, elemCol, "unterminated element <%s>", tag)
		}

		c := t.cur()
		if c == '>' {
			t.advance()
			return propsLiteral(pairs), false, nil
		}
		if c == '/' && t.peek(1) == '>' {
			t.advance()
			t.advance()
			return propsLiteral(pairs), true, nil
		}

		// Spread attribute: {...expr}
		if c == '{' {
			line, col := t.line, t.col
			expr, err := t.readBraced(line, col)
			if err != nil {
				return "", false, err
			}
			inner := strings.TrimSpace(expr)
			if !strings.HasPrefix(inner, "...") {
				return "", false, diag.Errorf(diag.SyntaxMalformedAttribute, line, col, "expected spread attribute in <%s>", tag)
			}
			pairs = append(pairs, inner)
			continue
		}

		if !isTagStartByte(c) {
			return "", false, diag.Errorf(diag.SyntaxMalformedAttribute, t.line, t.col, "unexpected %q in <%s> attributes", string(c), tag)
		}

		name := t.readAttrName()
		t.skipSpace()

		if t.cur() != '=' {
			// Bare boolean attribute
			pairs = append(pairs, propKey(name)+": true")
			continue
		}
		t.advance() // '='
		t.skipSpace()

		switch v := t.cur(); {
		case v == '"' || v == '\'':
			line, col := t.line, t.col
			lit, err := t.readStringLiteral(v, line, col)
			if err != nil {
				return "", false, err
			}
			pairs = append(pairs, propKey(name)+": "+quoteJS(lit))
		case v == '{':
			line, col := t.line, t.col
			expr, err := t.readBraced(line, col)
			if err != nil {
				return "", false, err
			}
			pairs = append(pairs, propKey(name)+": ("+strings.TrimSpace(expr)+")")
		default:
			return "", false, diag.Errorf(diag.SyntaxMalformedAttribute, t.line, t.col, "invalid value for attribute %q in <%s>", name, tag)
		}
	}
}

// parseChildren consumes children until the matching closing tag. The empty
// tag name matches a fragment close (</>).
func (t *jsxTransformer) parseChildren(tag string) ([]string, *diag.Diagnostic) {
	var children []string
	var text strings.Builder

	flushText := func() {
		trimmed := collapseJSXText(text.String())
		if trimmed != "" {
			children = append(children, quoteJS(trimmed))
		}
		text.Reset()
	}

	for {
		if t.pos >= len(t.src) {
			label := tag
			if label == "" {
				label = "fragment"
			}
			return nil, diag.Errorf(diag.SyntaxUnterminatedElement, t.line, t.col, "unterminated element: missing </%s>", label)
		}

		c := t.cur()
		switch {
		case c == '<' && t.peek(1) == '/':
			flushText()
			line, col := t.line, t.col
			t.advance()
			t.advance()
			closing := t.readTagName()
			t.skipSpace()
			if t.cur() != '>' {
				return nil, diag.Errorf(diag.SyntaxUnterminatedElement, line, col, "malformed closing tag </%s", closing)
			}
			t.advance()
			if closing != tag {
				return nil, diag.Errorf(diag.SyntaxMismatchedClosingTag, line, col, "mismatched closing tag: expected </%s>, found </%s>", displayTag(tag), displayTag(closing))
			}
			return children, nil
		case c == '<':
			flushText()
			child, err := t.parseElement()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case c == '{':
			flushText()
			line, col := t.line, t.col
			expr, err := t.readBraced(line, col)
			if err != nil {
				return nil, err
			}
			inner := strings.TrimSpace(expr)
			// {/* comment */} and empty containers produce no child
			if inner != "" && !strings.HasPrefix(inner, "/*") {
				children = append(children, "("+inner+")")
			}
		default:
			text.WriteByte(c)
			t.advance()
		}
	}
}

// readBraced consumes a brace-delimited expression starting at '{' and
// returns the inner text. Nested braces and string literals are honored.
func (t *jsxTransformer) readBraced(line, col int) (string, *diag.Diagnostic) {
	t.advance() // '{'
	start := t.pos
	depth := 1
	for t.pos < len(t.src) {
		c := t.cur()
		switch c {
		case '"', '\'', '`':
			if err := t.skipStringRaw(c); err != nil {
				return "", err
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				inner := t.src[start:t.pos]
				t.advance()
				return inner, nil
			}
		}
		t.advance()
	}
	return "", diag.Errorf(diag.SyntaxUnterminatedExpression, line, col, "unterminated expression container")
}

// readStringLiteral consumes a quoted attribute value and returns the raw
// inner text.
func (t *jsxTransformer) readStringLiteral(quote byte, line, col int) (string, *diag.Diagnostic) {
	t.advance() // opening quote
	start := t.pos
	for t.pos < len(t.src) {
		c := t.cur()
		if c == quote {
			lit := t.src[start:t.pos]
			t.advance()
			return lit, nil
		}
		if c == '\n' {
			break
		}
		t.advance()
	}
	return "", diag.Errorf(diag.SyntaxUnterminatedString, line, col, "unterminated string literal")
}

// skipStringRaw advances past a string literal without emitting output,
// honoring backslash escapes. Template literals may span lines.
func (t *jsxTransformer) skipStringRaw(quote byte) *diag.Diagnostic {
	line, col := t.line, t.col
	t.advance()
	for t.pos < len(t.src) {
		c := t.cur()
		if c == '\\' {
			t.advance()
			if t.pos < len(t.src) {
				t.advance()
			}
			continue
		}
		if c == quote {
			t.advance()
			return nil
		}
		if c == '\n' && quote != '`' {
			break
		}
		t.advance()
	}
	return diag.Errorf(diag.SyntaxUnterminatedString, line, col, "unterminated string literal")
}

// copyString copies a string literal to the output verbatim.
func (t *jsxTransformer) copyString(quote byte) *diag.Diagnostic {
	start := t.pos
	err := t.skipStringRaw(quote)
	t.out.WriteString(t.src[start:t.pos])
	if err != nil {
		return err
	}
	t.lastSig = quote
	t.lastWord = ""
	return nil
}

func (t *jsxTransformer) copyLineComment() {
	for t.pos < len(t.src) && t.cur() != '\n' {
		t.out.WriteByte(t.cur())
		t.advance()
	}
}

func (t *jsxTransformer) copyBlockComment() {
	for t.pos < len(t.src) {
		if t.cur() == '*' && t.peek(1) == '/' {
			t.out.WriteString("*/")
			t.advance()
			t.advance()
			return
		}
		t.out.WriteByte(t.cur())
		t.advance()
	}
}

func (t *jsxTransformer) readTagName() string {
	start := t.pos
	for t.pos < len(t.src) && isTagByte(t.src[t.pos]) {
		t.advance()
	}
	return t.src[start:t.pos]
}

func (t *jsxTransformer) readAttrName() string {
	start := t.pos
	for t.pos < len(t.src) && (isTagByte(t.src[t.pos]) || t.src[t.pos] == ':') {
		t.advance()
	}
	return t.src[start:t.pos]
}

func (t *jsxTransformer) skipSpace() {
	for t.pos < len(t.src) && isSpaceByte(t.src[t.pos]) {
		t.advance()
	}
}

func (t *jsxTransformer) cur() byte {
	if t.pos >= len(t.src) {
		return 0
	}
	return t.src[t.pos]
}

func (t *jsxTransformer) peek(n int) byte {
	if t.pos+n >= len(t.src) {
		return 0
	}
	return t.src[t.pos+n]
}

func (t *jsxTransformer) advance() {
	if t.pos < len(t.src) {
		if t.src[t.pos] == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		t.pos++
	}
}

// buildCall assembles the h(...) expression for an element.
func buildCall(tagExpr, props string, children []string) string {
	var b strings.Builder
	b.WriteString("h(")
	b.WriteString(tagExpr)
	b.WriteString(", ")
	b.WriteString(props)
	for _, child := range children {
		b.WriteString(", ")
		b.WriteString(child)
	}
	b.WriteString(")")
	return b.String()
}

func propsLiteral(pairs []string) string {
	if len(pairs) == 0 {
		return "null"
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// propKey quotes a props key when it is not a valid JS identifier
// (data-* and namespaced attributes).
func propKey(name string) string {
	for _, r := range name {
		if r == '-' || r == ':' {
			return quoteJS(name)
		}
	}
	return name
}

// isIntrinsicTag reports whether the tag names a host element ("div") rather
// than a component identifier ("Card", "UI.Panel").
func isIntrinsicTag(tag string) bool {
	if strings.Contains(tag, ".") {
		return false
	}
	r := rune(tag[0])
	return !unicode.IsUpper(r)
}

func displayTag(tag string) string {
	if tag == "" {
		return ""
	}
	return tag
}

// collapseJSXText trims a text run and collapses internal whitespace runs to
// single spaces, matching how JSX text children behave.
func collapseJSXText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func quoteJS(s string) string {
	// JSON string quoting is valid JS string quoting
	b, _ := json.Marshal(s)
	return string(b)
}

func isTagStartByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagByte(c byte) bool {
	return isTagStartByte(c) || c == '.' || c == '-' || (c >= '0' && c <= '9')
}

func isWordByte(c byte) bool {
	return isTagStartByte(c) || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
