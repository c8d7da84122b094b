package rules

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// HyperlinkValidity checks hyperlink targets offline. Malformed targets,
// disallowed schemes and internal links to missing bookmarks are warnings.
// Targets whose reachability cannot be judged without a network call
// (relative paths, file URLs, local hosts) are informational. No request
// is ever made.
type HyperlinkValidity struct{}

func (HyperlinkValidity) ID() string { return "hyperlink-validity" }

func (HyperlinkValidity) Category() model.Category { return model.CategoryLinks }

// wordTopAnchor is the built-in bookmark for the start of a document.
const wordTopAnchor = "_top"

func (r HyperlinkValidity) Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error) {
	allowed := make(map[string]bool, len(cfg.Links.AllowedSchemes))
	for _, s := range cfg.Links.AllowedSchemes {
		allowed[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var findings []model.Finding
	for _, link := range doc.Hyperlinks {
		detail := map[string]any{"text": link.Text}

		if link.Target == "" {
			if link.Anchor == "" {
				findings = append(findings, newFinding(r, model.SeverityWarning, link.Location,
					"hyperlink has an empty target", detail))
				continue
			}
			if link.Anchor != wordTopAnchor && !doc.HasBookmark(link.Anchor) {
				detail["anchor"] = link.Anchor
				findings = append(findings, newFinding(r, model.SeverityWarning, link.Location,
					fmt.Sprintf("internal link points to missing bookmark %q", link.Anchor), detail))
			}
			continue
		}

		detail["target"] = link.Target
		severity, problem := checkTarget(link.Target, allowed)
		if problem == "" {
			continue
		}
		findings = append(findings, newFinding(r, severity, link.Location,
			fmt.Sprintf("hyperlink target %q %s", link.Target, problem), detail))
	}
	return findings, nil
}

// checkTarget validates an external target. It returns an empty problem
// when the target is acceptable.
func checkTarget(target string, allowed map[string]bool) (model.Severity, string) {
	if strings.TrimSpace(target) != target || strings.ContainsAny(target, "\t\r\n") {
		return model.SeverityWarning, "contains surrounding or embedded whitespace"
	}

	u, err := url.Parse(target)
	if err != nil {
		return model.SeverityWarning, "is not a well-formed URL"
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "":
		return model.SeverityInfo, "is a relative path and cannot be verified offline"
	case scheme == "file":
		return model.SeverityInfo, "is a local file and cannot be verified offline"
	case !allowed[scheme]:
		return model.SeverityWarning, fmt.Sprintf("uses scheme %q, which is not allowed", scheme)
	}

	switch scheme {
	case "http", "https", "ftp":
		host := u.Hostname()
		if host == "" {
			return model.SeverityWarning, "has no host"
		}
		return checkHost(host)
	case "mailto":
		addr, _, _ := strings.Cut(u.Opaque, "?")
		if addr == "" {
			addr, _ = url.PathUnescape(u.Path)
		}
		parsed, err := mail.ParseAddress(addr)
		if err != nil {
			return model.SeverityWarning, "is not a valid email address"
		}
		_, domain, _ := strings.Cut(parsed.Address, "@")
		if _, err := idna.Lookup.ToASCII(domain); err != nil {
			return model.SeverityWarning, "has an invalid email domain"
		}
	case "tel":
		number := u.Opaque
		if number == "" || strings.Trim(number, "+0123456789-(). ") != "" {
			return model.SeverityWarning, "is not a valid telephone number"
		}
	}
	return "", ""
}

// checkHost validates a host name or IP literal. Hosts that only resolve
// inside a private network are reported as unverifiable.
func checkHost(host string) (model.Severity, string) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
			return model.SeverityInfo, "points to a private or loopback address and cannot be verified offline"
		}
		return "", ""
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return model.SeverityWarning, "has an invalid host name"
	}
	ascii = strings.ToLower(strings.TrimSuffix(ascii, "."))
	if ascii == "localhost" || !strings.Contains(ascii, ".") ||
		strings.HasSuffix(ascii, ".localhost") || strings.HasSuffix(ascii, ".local") || strings.HasSuffix(ascii, ".internal") {
		return model.SeverityInfo, "points to a local host and cannot be verified offline"
	}
	return "", ""
}
