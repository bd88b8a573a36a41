package license

import (
	"fmt"
	"strings"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// categoryWidth is the fixed width of a family category.
const categoryWidth = 5

// MakeCategory pads or truncates s to the category width.
func MakeCategory(s string) string {
	if len(s) >= categoryWidth {
		return s[:categoryWidth]
	}
	return s + strings.Repeat(" ", categoryWidth-len(s))
}

// Family groups related license texts.
type Family struct {
	Category string
	Name     string
}

// NewFamily builds a family with a normalised category.
func NewFamily(category, name string) Family {
	return Family{Category: MakeCategory(category), Name: name}
}

// ID is the trimmed category.
func (f Family) ID() string { return strings.TrimSpace(f.Category) }

var (
	// UnknownFamily is reported when no license matched.
	UnknownFamily = NewFamily("?????", "Unknown license")
	// GeneratedFamily marks generated files, which are reported as ignored.
	GeneratedFamily = NewFamily("GEN", "Generated Files")
)

// License is a matcher strategy plus the family metadata it reports.
type License struct {
	ID      string
	Name    string
	Notes   string
	Family  Family
	Matcher Matcher
}

// NewLicense fills in the name and id from the family when they are empty.
func NewLicense(id, name string, family Family, m Matcher) *License {
	if name == "" {
		name = family.Name
	}
	if id == "" {
		id = family.ID()
	}
	return &License{ID: id, Name: name, Family: family, Matcher: m}
}

// Match delegates to the license's matcher.
func (l *License) Match(doc document.Name, line string) bool {
	return l.Matcher.Match(doc, line)
}

// Finalize delegates to the license's matcher.
func (l *License) Finalize() bool { return l.Matcher.Finalize() }

// Reset delegates to the license's matcher.
func (l *License) Reset() { l.Matcher.Reset() }

func (l *License) String() string {
	return fmt.Sprintf("%s (%s)", l.ID, l.Family.ID())
}

// Claim renders l as document metadata.
func (l *License) Claim(approved bool) document.LicenseClaim {
	return document.LicenseClaim{
		FamilyCategory: l.Family.ID(),
		FamilyName:     l.Family.Name,
		LicenseID:      l.ID,
		LicenseName:    l.Name,
		Notes:          l.Notes,
		Approved:       approved,
	}
}

// UnknownClaim is the claim recorded when no license matched.
func UnknownClaim() document.LicenseClaim {
	return document.LicenseClaim{
		FamilyCategory: UnknownFamily.ID(),
		FamilyName:     UnknownFamily.Name,
		LicenseID:      UnknownFamily.ID(),
		LicenseName:    UnknownFamily.Name,
	}
}

// DuplicatePolicy decides what happens when two licenses share an id.
type DuplicatePolicy string

const (
	DuplicateIgnore    DuplicatePolicy = "ignore"
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	DuplicateFail      DuplicatePolicy = "fail"
)

// ParseDuplicatePolicy parses a policy name; empty means ignore.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateIgnore, nil
	case DuplicateIgnore, DuplicateOverwrite, DuplicateFail:
		return p, nil
	default:
		return "", scanerr.Configf("unknown duplicate policy %q", s)
	}
}

// Collection tries its licenses in registration order. The first to match
// wins and is remembered until Reset.
type Collection struct {
	licenses []*License
	matched  *License
}

// NewCollection registers licenses, resolving duplicate ids by policy. An
// empty collection is a configuration error.
func NewCollection(policy DuplicatePolicy, licenses ...*License) (*Collection, error) {
	c := &Collection{}
	index := map[string]int{}
	for _, l := range licenses {
		i, dup := index[l.ID]
		switch {
		case !dup:
			index[l.ID] = len(c.licenses)
			c.licenses = append(c.licenses, l)
		case policy == DuplicateOverwrite:
			c.licenses[i] = l
		case policy == DuplicateFail:
			return nil, scanerr.Configf("duplicate license id %q", l.ID)
		}
	}
	if len(c.licenses) == 0 {
		return nil, scanerr.Configf("no license matchers configured")
	}
	return c, nil
}

func (c *Collection) ID() string { return "collection" }

// Match offers line to each license until one matches.
func (c *Collection) Match(doc document.Name, line string) bool {
	if c.matched != nil {
		return true
	}
	for _, l := range c.licenses {
		if l.Match(doc, line) {
			c.matched = l
			return true
		}
	}
	return false
}

// Finalize gives licenses that decide at the end of a document their say.
// The first one to hold wins unless a license already matched.
func (c *Collection) Finalize() bool {
	if c.matched != nil {
		return true
	}
	for _, l := range c.licenses {
		if l.Finalize() {
			c.matched = l
			return true
		}
	}
	return false
}

// Matched returns the winning license, or nil.
func (c *Collection) Matched() *License { return c.matched }

// Reset restores every license to its pre-scan state.
func (c *Collection) Reset() {
	c.matched = nil
	for _, l := range c.licenses {
		l.Reset()
	}
}

// Licenses returns the registered licenses in order.
func (c *Collection) Licenses() []*License {
	return append([]*License(nil), c.licenses...)
}
