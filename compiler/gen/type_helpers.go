package gen

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Naming helpers
// =============================================================================

var (
	titleCaser = cases.Title(language.English, cases.NoLower)

	// acronyms are rendered upper case in Go identifiers.
	acronyms = map[string]struct{}{
		"ACL": {}, "API": {}, "ASCII": {}, "CPU": {}, "CSS": {}, "DNS": {}, "EOF": {},
		"GUID": {}, "HTML": {}, "HTTP": {}, "HTTPS": {}, "ID": {}, "IP": {}, "JSON": {},
		"LHS": {}, "QPS": {}, "RAM": {}, "RHS": {}, "RPC": {}, "SLA": {}, "SMTP": {},
		"SQL": {}, "SSH": {}, "TCP": {}, "TLS": {}, "TTL": {}, "UDP": {}, "UI": {},
		"UID": {}, "URI": {}, "URL": {}, "UTF8": {}, "UUID": {}, "VM": {}, "XML": {},
	}

	// pojoMethods are the methods of generated POJOs and keys; fields may
	// not shadow them.
	pojoMethods = names("Record", "FromJSON", "ToJSON", "KeyValues")
)

// words splits an identifier on separators and camel case humps.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && len(cur) > 0:
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// pascal converts a column or table name to an exported Go identifier:
// "someJsonObject" and "some_json_object" both become "SomeJSONObject".
func pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if upper := strings.ToUpper(w); isAcronym(upper) {
			b.WriteString(upper)
			continue
		}
		b.WriteString(titleCaser.String(strings.ToLower(w)))
	}
	out := b.String()
	if out == "" || unicode.IsDigit([]rune(out)[0]) {
		out = "X" + out
	}
	return out
}

func isAcronym(s string) bool {
	_, ok := acronyms[s]
	return ok
}

// camel is pascal with the leading word lowered. Leading acronyms are
// lowered entirely: "IDValue" becomes "idValue".
func camel(s string) string {
	p := pascal(s)
	ws := words(p)
	if len(ws) == 0 {
		return p
	}
	first := ws[0]
	if isAcronym(strings.ToUpper(first)) || len(first) == 1 {
		return strings.ToLower(first) + p[len(first):]
	}
	return strings.ToLower(first[:1]) + p[1:]
}

// singular singularizes the last word of a pascal identifier.
func singular(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return s
	}
	last := ws[len(ws)-1]
	if isAcronym(strings.ToUpper(last)) {
		return s
	}
	return s[:len(s)-len(last)] + inflect.Capitalize(inflect.Singularize(strings.ToLower(last)))
}

// receiver returns the receiver name for a type name.
func receiver(s string) string {
	r := strings.ToLower(s[:1])
	if token.Lookup(r).IsKeyword() {
		return "_" + r
	}
	return r
}

// packageName returns the Go package name used for a table's package.
func packageName(table string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(table) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
