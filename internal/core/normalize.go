package core

import (
	"strings"
)

// Normalize produces the canonical lower-cased view of an email used for
// rule evaluation. Missing fields come through as empty strings, so
// evaluation never has to distinguish absent from blank.
func Normalize(email *Email) *NormalizedView {
	view := &NormalizedView{
		Subject:      strings.ToLower(email.Subject),
		Body:         strings.ToLower(email.Body),
		SenderDomain: strings.ToLower(ExtractDomain(email.From)),
	}

	if len(email.AttachmentNames) > 0 {
		view.AttachmentNames = make([]string, len(email.AttachmentNames))
		for i, name := range email.AttachmentNames {
			view.AttachmentNames[i] = strings.ToLower(name)
		}
	}

	return view
}

// ExtractDomain extracts the sender domain from a raw From header value and
// returns it in "@domain" form. It handles both "Display Name <addr@domain>"
// and bare addresses, and returns an empty string when no domain can be
// extracted. It never fails on malformed input.
func ExtractDomain(from string) string {
	addr := strings.TrimSpace(from)

	// Prefer an angle-bracket delimited address if one is present
	if start := strings.LastIndex(addr, "<"); start >= 0 {
		if end := strings.Index(addr[start:], ">"); end > 0 {
			addr = addr[start+1 : start+end]
		}
	}

	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}

	return "@" + addr[at+1:]
}

// MatchKeywords performs case-insensitive substring matching of every
// keyword against text. It returns whether at least one keyword was found
// and the full list of matched keywords in the order they were configured.
func MatchKeywords(text string, keywords []string) (bool, []string) {
	if text == "" {
		return false, nil
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}

	return len(matched) > 0, matched
}

// MatchAttachmentNames applies keyword matching to each attachment filename
// in turn. A single filename hit is enough for a match; the returned
// keywords are deduplicated across filenames, preserving configured order.
func MatchAttachmentNames(names []string, keywords []string) (bool, []string) {
	if len(names) == 0 {
		return false, nil
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if ok, hits := MatchKeywords(name, keywords); ok {
			for _, hit := range hits {
				seen[hit] = true
			}
		}
	}

	if len(seen) == 0 {
		return false, nil
	}

	var matched []string
	for _, keyword := range keywords {
		if seen[keyword] {
			matched = append(matched, keyword)
		}
	}
	return true, matched
}
