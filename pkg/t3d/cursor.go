package t3d

import (
	"strings"
)

// AnyOffset disables the offset limit of Cursor.Value.
const AnyOffset = -1

const (
	beginPrefix       = "Begin "
	endPrefix         = "End "
	beginObjectPrefix = "Begin Object "
	endObjectLine     = "End Object"
)

// Cursor walks the lines of a T3D document.
//
// The zero value is an empty cursor. A Cursor is not safe for concurrent use;
// each import owns its own.
type Cursor struct {
	lines []string
	index int // next line to read
	line  string
	depth int
}

// Checkpoint is a saved cursor position restored with Cursor.Rewind.
type Checkpoint struct {
	index int
	line  string
	depth int
}

// NewCursor creates a cursor over content.
func NewCursor(content string) *Cursor {
	c := &Cursor{}
	c.Reset(content)
	return c
}

// Reset replaces the cursor content. Empty fragments produced by
// consecutive newlines are discarded.
func (c *Cursor) Reset(content string) {
	parts := strings.Split(content, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			lines = append(lines, p)
		}
	}

	c.lines = lines
	c.index = 0
	c.line = ""
	c.depth = 0
}

// Next advances to the next line and reports whether one was available.
// The loaded line is trimmed of spaces, tabs and carriage returns.
func (c *Cursor) Next() bool {
	if c.index >= len(c.lines) {
		return false
	}

	c.line = strings.Trim(c.lines[c.index], " \t\r")
	c.index++

	switch {
	case strings.HasPrefix(c.line, beginPrefix):
		c.depth++
	case strings.HasPrefix(c.line, endPrefix):
		if c.depth > 0 {
			c.depth--
		}
	}
	return true
}

// Line returns the current line.
func (c *Cursor) Line() string {
	return c.line
}

// Index returns the zero-based index of the next line to read.
func (c *Cursor) Index() int {
	return c.index
}

// LineNumber returns the 1-based number of the current line, or 0 before
// the first Next.
func (c *Cursor) LineNumber() int {
	return c.index
}

// Depth returns the block nesting depth after the current line.
func (c *Cursor) Depth() int {
	return c.depth
}

// Len returns the number of non-empty lines.
func (c *Cursor) Len() int {
	return len(c.lines)
}

// Checkpoint saves the current position.
func (c *Cursor) Checkpoint() Checkpoint {
	return Checkpoint{index: c.index, line: c.line, depth: c.depth}
}

// Rewind restores a position saved with Checkpoint.
func (c *Cursor) Rewind(cp Checkpoint) {
	c.index = cp.index
	c.line = cp.line
	c.depth = cp.depth
}

// Value looks up key in the current line and extracts the value that follows
// it. The key must start at or before byte offset maxOffset; AnyOffset
// disables the limit and 0 requires the key at the start of the line.
//
// A quoted value is returned without its quotes. A parenthesized value is
// returned with its balanced parentheses. Any other value runs until the
// next space, comma or closing parenthesis.
func (c *Cursor) Value(key string, maxOffset int) (string, bool) {
	return ValueAfter(c.line, key, maxOffset)
}

// Property returns the value of a "Key=Value" line, with key including the
// trailing '='.
func (c *Cursor) Property(key string) (string, bool) {
	return ValueAfter(c.line, key, 0)
}

// SplitProperty splits the current line on its first '='. The name must be
// non-empty.
func (c *Cursor) SplitProperty() (name, value string, ok bool) {
	i := strings.IndexByte(c.line, '=')
	if i <= 0 {
		return "", "", false
	}
	return c.line[:i], c.line[i+1:], true
}

// Command returns the first whitespace-delimited token of the current line.
func (c *Cursor) Command() string {
	fields := strings.Fields(c.line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// HasCommand reports whether the current line starts with word as a whole
// token, ignoring case, and returns the rest of the line.
func (c *Cursor) HasCommand(word string) (string, bool) {
	line := c.line
	if len(line) < len(word) || !strings.EqualFold(line[:len(word)], word) {
		return "", false
	}
	rest := line[len(word):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimLeft(rest, " \t"), true
}

// IsBeginObject reports whether the current line opens an object block and
// returns its class.
func (c *Cursor) IsBeginObject() (class string, ok bool) {
	if !strings.HasPrefix(c.line, beginObjectPrefix) {
		return "", false
	}
	class, _ = c.Value(" Class=", AnyOffset)
	return class, true
}

// IsBeginBlock reports whether the current line opens a "Begin <word>" block.
func (c *Cursor) IsBeginBlock(word string) bool {
	return strings.HasPrefix(c.line, beginPrefix+word)
}

// IsAnyBegin reports whether the current line opens any block.
func (c *Cursor) IsAnyBegin() bool {
	return strings.HasPrefix(c.line, beginPrefix)
}

// IsEndObject reports whether the current line is exactly "End Object".
func (c *Cursor) IsEndObject() bool {
	return c.line == endObjectLine
}

// IsEndBlock reports whether the current line closes an "End <word>" block.
func (c *Cursor) IsEndBlock(word string) bool {
	return strings.HasPrefix(c.line, endPrefix+word)
}

// SkipToMatchingEnd consumes lines until the block opened by the current
// line is closed. Any "Begin " balances any "End ". Afterwards Line is the
// matching end line. It returns false if the input ended first.
func (c *Cursor) SkipToMatchingEnd() bool {
	level := 1
	for c.Next() {
		switch {
		case strings.HasPrefix(c.line, beginPrefix):
			level++
		case strings.HasPrefix(c.line, endPrefix):
			level--
			if level == 0 {
				return true
			}
		}
	}
	return false
}

// SkipNestedObjects skips every "Begin Object" block starting at the current
// line and advances past it. It returns false if the input ended.
func (c *Cursor) SkipNestedObjects() bool {
	for strings.HasPrefix(c.line, beginObjectPrefix) {
		c.SkipToMatchingEnd()
		if !c.Next() {
			return false
		}
	}
	return true
}

// SkipNestedBlocks is SkipNestedObjects for blocks of any kind.
func (c *Cursor) SkipNestedBlocks() bool {
	for strings.HasPrefix(c.line, beginPrefix) {
		c.SkipToMatchingEnd()
		if !c.Next() {
			return false
		}
	}
	return true
}

// ValueAfter extracts the value following key in line. See Cursor.Value.
func ValueAfter(line, key string, maxOffset int) (string, bool) {
	start := strings.Index(line, key)
	if start == -1 || (maxOffset >= 0 && start > maxOffset) {
		return "", false
	}
	start += len(key)

	rest := line[start:]
	if rest == "" {
		return "", true
	}

	switch rest[0] {
	case '"':
		escaping := false
		for i := 1; i < len(rest); i++ {
			switch {
			case escaping:
				escaping = false
			case rest[i] == '\\':
				escaping = true
			case rest[i] == '"':
				return rest[1:i], true
			}
		}
		return rest[1:], true

	case '(':
		level := 1
		for i := 1; i < len(rest); i++ {
			switch rest[i] {
			case '(':
				level++
			case ')':
				level--
				if level == 0 {
					return rest[:i+1], true
				}
			}
		}
		return rest, true

	default:
		end := strings.IndexAny(rest, " ,)")
		if end == -1 {
			return rest, true
		}
		return rest[:end], true
	}
}

// Unquote removes one pair of surrounding double quotes, if present.
func Unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
