package bundle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWrap is the column width generated literals are wrapped at.
const DefaultWrap = 80

const hexDigits = "0123456789ABCDEF"

// Profile is one generated-output dialect.
//
// Declare renders a single declaration terminated by ';' (no trailing
// newline). Decode parses text produced by Declare, possibly several
// declarations separated by whitespace, back into identifiers and bytes.
type Profile interface {
	Name() string
	Declare(ident string, data []byte, wrap int) string
	Decode(text string) ([]Declaration, error)
}

// Declaration is one decoded (identifier, bytes) pair.
type Declaration struct {
	Identifier string
	Data       []byte
}

// Profile names accepted by ProfileByName.
const (
	ProfileArray  = "array"
	ProfileString = "string"
)

// ProfileNames lists the supported profiles in a stable order.
func ProfileNames() []string { return []string{ProfileArray, ProfileString} }

// ProfileByName returns the profile registered under name.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileArray:
		return ArrayProfile{}, nil
	case ProfileString:
		return StringProfile{}, nil
	default:
		return nil, &Error{Kind: ErrUnknownProfile, Err: fmt.Errorf("%q (expected %s)", name, strings.Join(ProfileNames(), "|"))}
	}
}

// wrapTokens greedily packs tokens into lines of at most width columns,
// joining tokens on one line with sep. A token wider than width gets a line
// of its own; tokens are never split.
func wrapTokens(tokens []string, sep string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, tok := range tokens {
		if line.Len() > 0 && line.Len()+len(sep)+len(tok) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(sep)
		}
		line.WriteString(tok)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// ArrayProfile renders
//
//	static const unsigned char ASSET_X[] = {
//		0x00, 0x1F, ...
//	};
//
// Every byte is "0xHH," and tokens are space separated.
type ArrayProfile struct{}

func (ArrayProfile) Name() string { return ProfileArray }

func (ArrayProfile) Declare(ident string, data []byte, wrap int) string {
	tokens := make([]string, len(data))
	for i, b := range data {
		tokens[i] = string([]byte{'0', 'x', hexDigits[b>>4], hexDigits[b&0x0f], ','})
	}
	lines := wrapTokens(tokens, " ", wrap)

	var sb strings.Builder
	sb.WriteString("static const unsigned char ")
	sb.WriteString(ident)
	sb.WriteString("[] = {\n\t")
	sb.WriteString(strings.Join(lines, "\n\t"))
	sb.WriteString("\n};")
	return sb.String()
}

var arrayDeclRE = regexp.MustCompile(`static const unsigned char ([A-Za-z_][A-Za-z0-9_]*)\[\] = \{([^}]*)\};`)

func (ArrayProfile) Decode(text string) ([]Declaration, error) {
	return decodeAll(text, arrayDeclRE, func(body string) ([]byte, error) {
		fields := strings.FieldsFunc(body, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		out := make([]byte, 0, len(fields))
		for _, f := range fields {
			if len(f) != 4 || !strings.HasPrefix(f, "0x") {
				return nil, fmt.Errorf("bad byte token %q", f)
			}
			v, err := strconv.ParseUint(f[2:], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad byte token %q: %w", f, err)
			}
			out = append(out, byte(v))
		}
		return out, nil
	})
}

// StringProfile renders
//
//	static const char ASSET_X[] =
//		"\x00\x1F..."
//		"\x..";
//
// Adjacent literals are concatenated by the compiler. Empty input renders
// as a single "" literal on the declaration line. Note that sizeof on the
// result counts the implicit trailing NUL.
type StringProfile struct{}

func (StringProfile) Name() string { return ProfileString }

func (StringProfile) Declare(ident string, data []byte, wrap int) string {
	var sb strings.Builder
	sb.WriteString("static const char ")
	sb.WriteString(ident)
	sb.WriteString("[] =")
	if len(data) == 0 {
		sb.WriteString(` "";`)
		return sb.String()
	}

	tokens := make([]string, len(data))
	for i, b := range data {
		tokens[i] = string([]byte{'\\', 'x', hexDigits[b>>4], hexDigits[b&0x0f]})
	}
	for _, line := range wrapTokens(tokens, "", wrap) {
		sb.WriteString("\n\t\"")
		sb.WriteString(line)
		sb.WriteByte('"')
	}
	sb.WriteByte(';')
	return sb.String()
}

var (
	stringDeclRE = regexp.MustCompile(`static const char ([A-Za-z_][A-Za-z0-9_]*)\[\] =([^;]*);`)
	quotedRE     = regexp.MustCompile(`"([^"]*)"`)
)

func (StringProfile) Decode(text string) ([]Declaration, error) {
	return decodeAll(text, stringDeclRE, func(body string) ([]byte, error) {
		if rest := strings.TrimSpace(quotedRE.ReplaceAllString(body, "")); rest != "" {
			return nil, fmt.Errorf("unexpected text %q between literals", rest)
		}
		var out []byte
		for _, m := range quotedRE.FindAllStringSubmatch(body, -1) {
			lit := m[1]
			if len(lit)%4 != 0 {
				return nil, fmt.Errorf("bad escape run %q", lit)
			}
			for i := 0; i < len(lit); i += 4 {
				esc := lit[i : i+4]
				if esc[0] != '\\' || esc[1] != 'x' {
					return nil, fmt.Errorf("bad escape %q", esc)
				}
				v, err := strconv.ParseUint(esc[2:], 16, 8)
				if err != nil {
					return nil, fmt.Errorf("bad escape %q: %w", esc, err)
				}
				out = append(out, byte(v))
			}
		}
		if out == nil {
			out = []byte{}
		}
		return out, nil
	})
}

// decodeAll matches every declaration in text and requires that nothing but
// whitespace sits between or around them.
func decodeAll(text string, re *regexp.Regexp, body func(string) ([]byte, error)) ([]Declaration, error) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	decls := make([]Declaration, 0, len(matches))
	last := 0
	for _, m := range matches {
		if gap := strings.TrimSpace(text[last:m[0]]); gap != "" {
			return nil, malformedf("unexpected text %q", truncate(gap))
		}
		ident := text[m[2]:m[3]]
		data, err := body(text[m[4]:m[5]])
		if err != nil {
			return nil, malformedf("%s: %v", ident, err)
		}
		decls = append(decls, Declaration{Identifier: ident, Data: data})
		last = m[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		return nil, malformedf("unexpected text %q", truncate(tail))
	}
	return decls, nil
}

func truncate(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
