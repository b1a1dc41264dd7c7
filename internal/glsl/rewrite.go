package glsl

import (
	"fmt"
	"regexp"
	"strings"
)

// Low-level text rewriting shared by the fragment and vertex adapters.

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// containsWord reports whether s contains ident as a whole word.
func containsWord(s, ident string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], ident)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordByte(s[i-1])
		afterIdx := i + len(ident)
		after := afterIdx >= len(s) || !isWordByte(s[afterIdx])
		if before && after {
			return true
		}
		start = i + 1
	}
}

// replaceWord replaces whole-word occurrences of ident with repl.
func replaceWord(s, ident, repl string) string {
	var b strings.Builder
	for start := 0; ; {
		i := strings.Index(s[start:], ident)
		if i < 0 {
			b.WriteString(s[start:])
			return b.String()
		}
		i += start
		before := i == 0 || !isWordByte(s[i-1])
		afterIdx := i + len(ident)
		after := afterIdx >= len(s) || !isWordByte(s[afterIdx])
		if before && after {
			b.WriteString(s[start:i])
			b.WriteString(repl)
			start = afterIdx
		} else {
			b.WriteString(s[start : i+1])
			start = i + 1
		}
	}
}

// rewriteCalls rewrites every whole-word call of the named macro. The
// argument list is scanned with balanced parentheses, so nested calls in
// arguments survive; top-level commas split arguments. An unbalanced call
// or a call with the wrong argument count is a missing anchor.
func rewriteCalls(stage, src, name string, arity int, rewrite func(args []string) string) (string, error) {
	var b strings.Builder
	for start := 0; ; {
		i := strings.Index(src[start:], name)
		if i < 0 {
			b.WriteString(src[start:])
			return b.String(), nil
		}
		i += start
		before := i == 0 || !isWordByte(src[i-1])
		afterIdx := i + len(name)
		after := afterIdx >= len(src) || !isWordByte(src[afterIdx])
		if !before || !after {
			b.WriteString(src[start : i+1])
			start = i + 1
			continue
		}

		// Skip whitespace to the opening parenthesis.
		j := afterIdx
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j >= len(src) || src[j] != '(' {
			return "", &AdaptError{Stage: stage, Token: name,
				Message: "macro reference without a call argument list"}
		}

		args, end, ok := scanArgs(src, j)
		if !ok {
			return "", &AdaptError{Stage: stage, Token: name,
				Message: "unbalanced parentheses in macro call"}
		}
		if len(args) != arity {
			return "", &AdaptError{Stage: stage, Token: name,
				Message: fmt.Sprintf("macro call has %d arguments, want %d", len(args), arity)}
		}

		b.WriteString(src[start:i])
		b.WriteString(rewrite(args))
		start = end
	}
}

// scanArgs parses a balanced argument list starting at the '(' at src[open].
// It returns the trimmed top-level arguments and the index just past the
// closing ')'.
func scanArgs(src string, open int) (args []string, end int, ok bool) {
	depth := 0
	argStart := open + 1
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				last := strings.TrimSpace(src[argStart:i])
				if last != "" || len(args) > 0 {
					args = append(args, last)
				}
				return args, i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(src[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, false
}

var (
	// #if __VERSION__ <= 120 / varying ... / #else / in ... / #endif
	// blocks; the fragment adapter drops them entirely, the vertex adapter
	// keeps the modern branch.
	versionCondRe = regexp.MustCompile(
		`#if\s+__VERSION__\s*<=\s*120\s*\n(\s*varying\s+[^\n]+\n)+\s*#else\s*\n((?:\s*(?:in|out)\s+[^\n]+\n)+)\s*#endif[^\n]*\n?`)

	outDeclRe = regexp.MustCompile(`(?m)^\s*out\s+vec4\s+\w+\s*;`)
)

// commentVaryings comments out deprecated varying declarations. Lines
// already commented are left alone so a second run changes nothing.
func commentVaryings(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "varying ") || strings.HasPrefix(trimmed, "varying\t") {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			lines[i] = indent + "// " + strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// rewriteBoolCompares rewrites comparisons against true/false literals.
// Boolean inputs surface as float uniforms, so `flag == true` must become
// `flag != 0.0`.
func rewriteBoolCompares(src string) string {
	src = regexp.MustCompile(`\s*==\s*true\b`).ReplaceAllString(src, " != 0.0")
	src = regexp.MustCompile(`\s*!=\s*true\b`).ReplaceAllString(src, " == 0.0")
	src = regexp.MustCompile(`\s*==\s*false\b`).ReplaceAllString(src, " == 0.0")
	src = regexp.MustCompile(`\s*!=\s*false\b`).ReplaceAllString(src, " != 0.0")
	return src
}

// ensureVersion prepends a #version directive when the body has none; an
// existing directive is never altered.
func ensureVersion(src, directive string) string {
	if strings.Contains(src, "#version") {
		return src
	}
	return directive + "\n" + src
}

// headerInsertIndex returns the line index right after the #version
// directive and any contiguous #extension lines — the anchor where
// synthesized declarations go.
func headerInsertIndex(lines []string) int {
	idx := 0
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#version") {
			idx = i + 1
			break
		}
	}
	for idx < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[idx]), "#extension") {
		idx++
	}
	return idx
}

// declaresUniform reports whether the body already declares name as a
// shader input. The scan is deliberately biased toward over-matching (any
// line mentioning both a declaration keyword and the identifier counts): a
// skipped declaration is recoverable, a duplicate one is a compile error.
func declaresUniform(src, name string) bool {
	for _, line := range strings.Split(src, "\n") {
		if !strings.Contains(line, "uniform") && !strings.Contains(line, "attribute") {
			continue
		}
		if containsWord(line, name) {
			return true
		}
	}
	return false
}
