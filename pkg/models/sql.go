package models

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TableRef is the placeholder the BI tool substitutes with the view's table
const TableRef = "${TABLE}"

//nolint:gochecknoglobals // compiled once
var bareIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QualifyColumn prefixes a bare column identifier with ${TABLE}. Anything that
// already looks like an expression is returned untouched.
func QualifyColumn(expr string) string {
	expr = strings.TrimSpace(expr)
	if bareIdentifier.MatchString(expr) {
		return TableRef + "." + expr
	}

	return expr
}

// Title turns a snake_case identifier into a human label ("order_items" -> "Order Items")
func Title(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(name))

	return cases.Title(language.English).String(strings.Join(words, " "))
}
