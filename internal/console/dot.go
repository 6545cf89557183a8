package console

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// dotCallPattern matches `<Class>.<method>(<args>)`.
var dotCallPattern = regexp.MustCompile(`^([A-Za-z_]\w*)\.(\w+)\((.*)\)$`)

// dotCall is a parsed `<Class>.<method>(<args>)` line.
type dotCall struct {
	class  string
	method string
	args   string
}

// parseDotCall reports whether line uses the method-call form.
func parseDotCall(line string) (dotCall, bool) {
	m := dotCallPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return dotCall{}, false
	}
	return dotCall{class: m[1], method: m[2], args: strings.TrimSpace(m[3])}, true
}

// executeDot runs a method-call line through the regular handlers.
//
//	User.all()                         -> all User
//	User.count()                       -> count User
//	User.show("<id>")                  -> show User <id>
//	User.destroy("<id>")               -> destroy User <id>
//	User.update("<id>", "name", "v")   -> update User <id> name v
//	User.update("<id>", {"age": 89})   -> one update per key, saved once
func (c *Console) executeDot(line string, call dotCall) error {
	switch call.method {
	case "all", "count":
		if call.args != "" {
			return unknownSyntax(line)
		}
		return c.Execute(call.method, []string{call.class})
	case "show", "destroy":
		args, err := splitCallArgs(call.args)
		if err != nil {
			return unknownSyntax(line)
		}
		return c.Execute(call.method, append([]string{call.class}, args...))
	case "update":
		if id, dict, ok := splitDictArgs(call.args); ok {
			return c.updateFromDict(line, call.class, id, dict)
		}
		args, err := splitCallArgs(call.args)
		if err != nil {
			return unknownSyntax(line)
		}
		return c.Execute("update", append([]string{call.class}, args...))
	default:
		return unknownSyntax(line)
	}
}

// updateFromDict applies a `{"attr": value, ...}` argument. Values keep their
// JSON types.
func (c *Console) updateFromDict(line, class, id, dict string) error {
	r, err := c.lookup([]string{class, id})
	if err != nil {
		return err
	}
	attrs, err := decodeDict(dict)
	if err != nil {
		return unknownSyntax(line)
	}
	return c.applyUpdate(r, attrs)
}

// splitCallArgs splits comma-separated, optionally quoted call arguments.
func splitCallArgs(s string) ([]string, error) {
	tokens, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSuffix(tok, ",")
		if tok == "" {
			continue
		}
		args = append(args, tok)
	}
	return args, nil
}

// splitDictArgs recognizes `"<id>", {...}` and returns the id and the
// dictionary text.
func splitDictArgs(s string) (string, string, bool) {
	comma := strings.Index(s, ",")
	if comma < 0 {
		return "", "", false
	}
	rest := strings.TrimSpace(s[comma+1:])
	if !strings.HasPrefix(rest, "{") || !strings.HasSuffix(rest, "}") {
		return "", "", false
	}
	id := strings.Trim(strings.TrimSpace(s[:comma]), `"'`)
	return id, rest, true
}

// decodeDict parses a JSON object, accepting single-quoted keys and strings.
// Integers that fit in int64 decode as int64; other numbers as float64.
func decodeDict(s string) (map[string]any, error) {
	attrs, err := decodeObject(s)
	if err == nil {
		return attrs, nil
	}
	if normalized, ok := doubleQuote(s); ok {
		if attrs, nerr := decodeObject(normalized); nerr == nil {
			return attrs, nil
		}
	}
	return nil, err
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after object")
	}
	if attrs == nil {
		return nil, errors.New("not an object")
	}
	for name, v := range attrs {
		if n, ok := v.(json.Number); ok {
			attrs[name] = number(n)
		}
	}
	return attrs, nil
}

// number converts n to int64 when it is an integer in range, keeping the
// literal otherwise so no digits are lost.
func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if strings.ContainsAny(n.String(), ".eE") {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return n
}

// doubleQuote rewrites single-quoted strings in s as JSON strings. Text inside
// double-quoted strings, apostrophes included, is copied unchanged. It reports
// false for an unterminated string.
func doubleQuote(s string) (string, bool) {
	var b strings.Builder
	var quote rune
	escaped := false
	for _, ch := range s {
		switch {
		case quote == 0:
			if ch == '\'' {
				quote = ch
				b.WriteRune('"')
				continue
			}
			if ch == '"' {
				quote = ch
			}
			b.WriteRune(ch)
		case escaped:
			escaped = false
			if quote == '\'' && ch == '\'' {
				b.WriteRune('\'')
				continue
			}
			b.WriteRune('\\')
			b.WriteRune(ch)
		case ch == '\\':
			escaped = true
		case ch == quote:
			quote = 0
			b.WriteRune('"')
		case quote == '\'' && ch == '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String(), quote == 0
}
