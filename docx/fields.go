package docx

import "strings"

// fldCharXML marks the begin, separate and end points of a complex field.
type fldCharXML struct {
	Type string `xml:"fldCharType,attr"`
}

// instrTextXML holds part of a complex field's instruction.
type instrTextXML struct {
	Value string `xml:",chardata"`
}

// fieldChar returns the field character type carried by the run, if any.
func (r *runXML) fieldChar() string {
	if len(r.FldChar) == 0 {
		return ""
	}
	return r.FldChar[0].Type
}

// parseHyperlinkInstr parses a HYPERLINK field instruction such as
// `HYPERLINK "https://example.com" \o "tip"` or `HYPERLINK \l "intro"`.
// ok is false for any other field.
func parseHyperlinkInstr(instr string) (target, anchor string, ok bool) {
	tokens := fieldTokens(instr)
	if len(tokens) == 0 || !strings.EqualFold(tokens[0].text, "HYPERLINK") || tokens[0].quoted {
		return "", "", false
	}

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.quoted || !strings.HasPrefix(tok.text, `\`) {
			if target == "" {
				target = tok.text
			}
			continue
		}
		switch strings.ToLower(tok.text) {
		case `\l`:
			if i+1 < len(tokens) {
				anchor = tokens[i+1].text
				i++
			}
		case `\o`, `\t`:
			// Tooltip and target frame carry an argument we do not keep.
			i++
		}
	}
	return target, anchor, true
}

type fieldToken struct {
	text   string
	quoted bool
}

// fieldTokens splits a field instruction on whitespace. Double quotes group
// an argument; inside quotes a backslash escapes the next character.
func fieldTokens(instr string) []fieldToken {
	var (
		tokens  []fieldToken
		cur     strings.Builder
		inQuote bool
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, fieldToken{text: cur.String(), quoted: quoted})
		}
		cur.Reset()
		quoted, started = false, false
	}

	runes := []rune(instr)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
			i++
			cur.WriteRune(runes[i])
		case c == '"':
			if inQuote {
				inQuote = false
				flush()
			} else {
				flush()
				inQuote, quoted, started = true, true, true
			}
		case !inQuote && (c == ' ' || c == '\t' || c == '\r' || c == '\n'):
			flush()
		default:
			cur.WriteRune(c)
			started = true
		}
	}
	flush()
	return tokens
}

// groupFieldHyperlinks folds complex HYPERLINK fields into hyperlinks. The
// runs between the separate and end field characters become the link's
// runs; instruction and field-character runs are dropped. Nested fields
// inside a link's result are kept as plain runs.
func groupFieldHyperlinks(content []inlineXML) []inlineXML {
	var (
		out      []inlineXML
		depth    int
		instr    strings.Builder
		inResult bool
		link     *hyperlinkXML
	)
	for _, in := range content {
		r := in.Run
		if r == nil {
			if link != nil {
				link.Runs = append(link.Runs, in.Hyperlink.Runs...)
				continue
			}
			out = append(out, in)
			continue
		}

		switch r.fieldChar() {
		case "begin":
			depth++
			if depth == 1 {
				instr.Reset()
				inResult = false
				link = nil
			}
			continue
		case "separate":
			if depth == 1 && !inResult {
				inResult = true
				if target, anchor, ok := parseHyperlinkInstr(instr.String()); ok {
					link = &hyperlinkXML{Target: target, Anchor: anchor}
					out = append(out, inlineXML{Hyperlink: link})
				}
			}
			continue
		case "end":
			if depth == 1 {
				inResult = false
				link = nil
			}
			if depth > 0 {
				depth--
			}
			continue
		}

		if len(r.InstrText) > 0 {
			if depth == 1 && !inResult {
				for _, t := range r.InstrText {
					instr.WriteString(t.Value)
				}
			}
			continue
		}

		if link != nil {
			link.Runs = append(link.Runs, *r)
			continue
		}
		out = append(out, in)
	}
	return out
}
