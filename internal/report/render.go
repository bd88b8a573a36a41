// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/bartekus/licaudit/internal/document"
)

// RenderTable renders a Markdown table. Rows are emitted in the given order.
func RenderTable(headers []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// RenderHeader renders a Markdown header.
func RenderHeader(level int, text string) string {
	return fmt.Sprintf("%s %s\n\n", strings.Repeat("#", level), text)
}

// RenderSummary renders the counts of s and, when listUnapproved is set, one
// row per unapproved document.
func RenderSummary(s *Scan, listUnapproved bool) string {
	var b strings.Builder
	b.WriteString(RenderHeader(2, "License audit: "+s.Root))

	rows := lo.FilterMap(document.Types(), func(t document.Type, _ int) ([]string, bool) {
		n := s.Summary.Types[t]
		return []string{string(t), fmt.Sprint(n)}, n > 0
	})
	rows = append(rows,
		[]string{"approved", fmt.Sprint(s.Summary.Approved)},
		[]string{"unapproved", fmt.Sprint(s.Summary.Unapproved)},
		[]string{"unknown", fmt.Sprint(s.Summary.Unknown)},
		[]string{"errors", fmt.Sprint(s.Summary.Errors)},
	)
	b.WriteString(RenderTable([]string{"Category", "Count"}, rows))

	unapproved := s.Unapproved()
	if !listUnapproved || len(unapproved) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(RenderHeader(3, "Unapproved documents"))
	b.WriteString(RenderTable([]string{"Path", "License"}, lo.Map(unapproved, func(r DocumentResult, _ int) []string {
		return []string{r.Path, licenseLabel(r)}
	})))
	return b.String()
}

func licenseLabel(r DocumentResult) string {
	if len(r.Licenses) == 0 {
		return "-"
	}
	return strings.Join(lo.Map(r.Licenses, func(c document.LicenseClaim, _ int) string {
		return fmt.Sprintf("%s (%s)", c.LicenseID, c.FamilyCategory)
	}), ", ")
}
