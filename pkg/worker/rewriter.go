package worker

import (
	"bytes"
	"path"
	"strings"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/rs/zerolog"
)

// BuiltinNamespace is never checked against the index
const BuiltinNamespace = "minecraft"

const callKeyword = "function"

// Rewriter turns a function source file into its processed form
type Rewriter struct {
	logger zerolog.Logger
}

// NewRewriter creates a rewriter
func NewRewriter() *Rewriter {
	return &Rewriter{logger: logging.GetLogger("worker.rewriter")}
}

// Rewrite expands line continuations in src and qualifies its call
// targets. key is the destination key of the file, which decides the
// namespace and directory that short and relative targets resolve against.
func (r *Rewriter) Rewrite(key string, src []byte, index *Index) ([]byte, error) {
	lines := joinContinuations(splitLines(src))
	self, isFunction := parseFunctionKey(key)

	qualified := 0
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if isComment(l.text) {
			out = append(out, l.text)
			continue
		}
		text, n, err := qualifyCalls(l.text, func(target string) (string, bool) {
			return resolveTarget(target, self, isFunction, index)
		})
		if err != nil {
			return nil, errors.Newf(errors.ErrUnresolvedCallTarget, "%s:%d: unresolved call target %q", key, l.number, err.Error()).
				WithDetail("source", key).
				WithDetail("line", l.number).
				WithDetail("target", err.Error())
		}
		qualified += n
		out = append(out, text)
	}

	r.logger.Trace().
		Str("key", key).
		Int("lines", len(out)).
		Int("qualified", qualified).
		Msg("Rewrote function file")

	result := strings.Join(out, "\n")
	if len(src) > 0 && bytes.HasSuffix(src, []byte("\n")) {
		result += "\n"
	}
	return []byte(result), nil
}

type line struct {
	number int
	text   string
}

func splitLines(src []byte) []line {
	if len(src) == 0 {
		return nil
	}
	raw := strings.Split(strings.TrimSuffix(string(src), "\n"), "\n")
	lines := make([]line, len(raw))
	for i, text := range raw {
		lines[i] = line{number: i + 1, text: strings.TrimSuffix(text, "\r")}
	}
	return lines
}

func isComment(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t"), "#")
}

// joinContinuations merges every line ending in a backslash with the line
// after it. A joined line keeps the number of its first physical line.
func joinContinuations(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		if isComment(cur.text) {
			out = append(out, cur)
			continue
		}
		for {
			trimmed := strings.TrimRight(cur.text, " \t")
			if !strings.HasSuffix(trimmed, `\`) {
				break
			}
			cur.text = strings.TrimRight(strings.TrimSuffix(trimmed, `\`), " \t")
			if i+1 >= len(lines) || isComment(lines[i+1].text) {
				break
			}
			i++
			if next := strings.TrimLeft(lines[i].text, " \t"); next != "" {
				cur.text += " " + next
			}
		}
		out = append(out, cur)
	}
	return out
}

type unresolved string

func (u unresolved) Error() string { return string(u) }

// qualifyCalls rewrites the target of every `function` command in text.
// The keyword only counts at command position, so text such as chat
// messages that mention it is left alone.
func qualifyCalls(text string, resolve func(string) (string, bool)) (string, int, error) {
	fields := splitKeepingSpace(text)
	changed := 0
	var tokens []string
	// fields alternate between tokens and whitespace runs
	for i := tokenParity(fields); i < len(fields); i += 2 {
		tokens = append(tokens, fields[i])
		if fields[i] != callKeyword || i+2 >= len(fields) || !isCallPosition(tokens) {
			continue
		}
		target := fields[i+2]
		resolved, ok := resolve(target)
		if !ok {
			return "", 0, unresolved(target)
		}
		if resolved != target {
			fields[i+2] = resolved
			changed++
		}
		tokens = append(tokens, resolved)
		i += 2
	}
	return strings.Join(fields, ""), changed, nil
}

// isCallPosition reports whether the last of tokens starts a function
// command: at line start, after `run` or `schedule`, or as the
// `if function` / `unless function` condition of an execute command.
func isCallPosition(tokens []string) bool {
	k := len(tokens) - 1
	if k == 0 {
		return true
	}
	switch tokens[k-1] {
	case "run", "schedule":
		return true
	case "if", "unless":
		return tokens[0] == "execute"
	}
	return false
}

// splitKeepingSpace splits s into alternating runs of non-space and space
// characters so that joining the parts restores s.
func splitKeepingSpace(s string) []string {
	var parts []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || isSpace(s[i]) != isSpace(s[start]) {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	return parts
}

func tokenParity(parts []string) int {
	if len(parts) > 0 && isSpace(parts[0][0]) {
		return 1
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func resolveTarget(target string, self functionKey, isFunction bool, index *Index) (string, bool) {
	switch {
	case strings.HasPrefix(target, "#"):
		return target, true
	case strings.HasPrefix(target, "./"), strings.HasPrefix(target, "../"):
		if !isFunction {
			return "", false
		}
		joined := path.Join(path.Dir(self.path), target)
		if joined == ".." || strings.HasPrefix(joined, "../") || joined == "." {
			return "", false
		}
		id := self.namespace + ":" + joined
		return id, index.Has(id)
	case strings.HasPrefix(target, ":"):
		if !isFunction || len(target) == 1 {
			return "", false
		}
		id := self.namespace + target
		return id, index.Has(id)
	case strings.Contains(target, ":"):
		ns, p, _ := strings.Cut(target, ":")
		if ns == "" || p == "" {
			return "", false
		}
		if ns == BuiltinNamespace {
			return target, true
		}
		return target, index.Has(target)
	default:
		return target, true
	}
}
