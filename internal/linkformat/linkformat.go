package linkformat

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAbsent marks a link that carries no ct attribute.
const FormatAbsent = -1

// Attributes holds the link parameters of one entry in a link-format
// document. Unrecognized parameters are kept in Extra.
type Attributes struct {
	// Observable reports presence of the obs flag.
	Observable bool

	// ContentFormat is the ct attribute, or FormatAbsent.
	ContentFormat int

	// ResourceType is the rt attribute, unquoted.
	ResourceType string

	// Interface is the if attribute, unquoted.
	Interface string

	// Title is the title attribute, unquoted.
	Title string

	// Extra holds any other parameters, values unquoted (empty string
	// for valueless flags).
	Extra map[string]string
}

// Parse decodes an RFC 6690 link-format document into a mapping from
// resource path to link attributes. Paths are normalized to have no
// leading slash, matching the form used for observation registration
// and bus topics.
func Parse(doc string) (map[string]Attributes, error) {
	links := make(map[string]Attributes)

	for _, record := range splitQuoted(doc, ',') {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		parts := splitQuoted(record, ';')
		uri := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(uri, "<") || !strings.HasSuffix(uri, ">") {
			return nil, fmt.Errorf("linkformat: malformed URI reference %q", uri)
		}
		path := strings.TrimLeft(uri[1:len(uri)-1], "/")
		if path == "" {
			return nil, fmt.Errorf("linkformat: empty resource path in %q", record)
		}

		attrs := Attributes{ContentFormat: FormatAbsent}
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if param == "" {
				continue
			}
			name, value := param, ""
			if i := strings.IndexByte(param, '='); i >= 0 {
				name, value = param[:i], unquote(param[i+1:])
			}
			switch name {
			case "obs":
				attrs.Observable = true
			case "ct":
				ct, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("linkformat: invalid ct value %q: %w", value, err)
				}
				attrs.ContentFormat = ct
			case "rt":
				attrs.ResourceType = value
			case "if":
				attrs.Interface = value
			case "title":
				attrs.Title = value
			default:
				if attrs.Extra == nil {
					attrs.Extra = make(map[string]string)
				}
				attrs.Extra[name] = value
			}
		}

		links[path] = attrs
	}

	return links, nil
}

// splitQuoted splits s on sep, ignoring separators inside double-quoted
// strings.
func splitQuoted(s string, sep byte) []string {
	var out []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case sep:
			if !inQuote {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
