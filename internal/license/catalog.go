package license

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/bartekus/licaudit/internal/scanerr"
)

//go:embed builtin.yaml
var builtinCatalog []byte

// FamilySpec declares a license family.
type FamilySpec struct {
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
}

// CopyrightSpec configures a copyright line matcher.
type CopyrightSpec struct {
	Start string `yaml:"start"`
	Stop  string `yaml:"stop"`
	Owner string `yaml:"owner"`
}

// MatcherSpec declares exactly one matcher kind.
type MatcherSpec struct {
	Text      string         `yaml:"text,omitempty"`
	Copyright *CopyrightSpec `yaml:"copyright,omitempty"`
	Substring []string       `yaml:"substring,omitempty"`
	Regex     string         `yaml:"regex,omitempty"`
	SPDX      string         `yaml:"spdx,omitempty"`
	Any       []MatcherSpec  `yaml:"any,omitempty"`
	All       []MatcherSpec  `yaml:"all,omitempty"`
	Not       *MatcherSpec   `yaml:"not,omitempty"`
}

// LicenseSpec declares a license.
type LicenseSpec struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Family  string      `yaml:"family"`
	Notes   string      `yaml:"notes"`
	Matcher MatcherSpec `yaml:"matcher"`
}

// Catalog is the declarative license configuration.
type Catalog struct {
	Families   []FamilySpec    `yaml:"families"`
	Licenses   []LicenseSpec   `yaml:"licenses"`
	Approved   []string        `yaml:"approved"`
	Duplicates DuplicatePolicy `yaml:"duplicates"`
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scanerr.Config(err, "failed to read license catalog")
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, scanerr.Config(err, "failed to parse license catalog YAML")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Builtin returns the embedded catalog.
func Builtin() *Catalog {
	c, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("builtin license catalog: %v", err))
	}
	return c
}

// Merge returns a catalog holding c's entries followed by other's. The
// approved list and duplicate policy of other win when set.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{
		Families:   append(append([]FamilySpec(nil), c.Families...), other.Families...),
		Licenses:   append(append([]LicenseSpec(nil), c.Licenses...), other.Licenses...),
		Approved:   c.Approved,
		Duplicates: c.Duplicates,
	}
	if len(other.Approved) > 0 {
		out.Approved = other.Approved
	}
	if other.Duplicates != "" {
		out.Duplicates = other.Duplicates
	}
	return out
}

// Validate reports every problem in the catalog at once.
func (c *Catalog) Validate() error {
	var errs *multierror.Error

	families := map[string]bool{}
	for i, f := range c.Families {
		id := familyKey(f.Category)
		switch {
		case id == "":
			errs = multierror.Append(errs, fmt.Errorf("family at index %d missing category", i))
		case len(id) > categoryWidth:
			errs = multierror.Append(errs, fmt.Errorf("family category %s is longer than %d characters", id, categoryWidth))
		case families[id] && c.Duplicates == DuplicateFail:
			errs = multierror.Append(errs, fmt.Errorf("duplicate family category: %s", id))
		}
		families[id] = true
	}

	if _, err := ParseDuplicatePolicy(string(c.Duplicates)); err != nil {
		errs = multierror.Append(errs, err)
	}

	if len(c.Licenses) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no license matchers configured"))
	}
	ids := map[string]bool{}
	for i, l := range c.Licenses {
		if familyKey(l.Family) == "" {
			errs = multierror.Append(errs, fmt.Errorf("license at index %d missing family", i))
		} else if !families[familyKey(l.Family)] {
			errs = multierror.Append(errs, fmt.Errorf("license %s has unknown family: %s", l.displayID(), l.Family))
		}
		if ids[l.displayID()] && c.Duplicates == DuplicateFail {
			errs = multierror.Append(errs, fmt.Errorf("duplicate license id: %s", l.displayID()))
		}
		ids[l.displayID()] = true
		if err := l.Matcher.validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("license %s: %w", l.displayID(), err))
		}
	}

	for _, a := range c.Approved {
		if !families[familyKey(a)] {
			errs = multierror.Append(errs, fmt.Errorf("approved family is not declared: %s", a))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return scanerr.Config(err, "invalid license catalog")
	}
	return nil
}

// familyKey is the form a category takes in Family.ID.
func familyKey(category string) string {
	return strings.TrimSpace(category)
}

func (l LicenseSpec) displayID() string {
	if l.ID != "" {
		return l.ID
	}
	return familyKey(l.Family)
}

// NewCollection builds a fresh session with new matcher instances.
func (c *Catalog) NewCollection() (*Collection, error) {
	families := map[string]Family{}
	for _, f := range c.Families {
		fam := NewFamily(familyKey(f.Category), f.Name)
		families[fam.ID()] = fam
	}

	spdx := NewSPDXScanner()
	licenses := make([]*License, 0, len(c.Licenses))
	for _, spec := range c.Licenses {
		id := spec.displayID()
		m, err := spec.Matcher.build(id, spdx)
		if err != nil {
			return nil, scanerr.Config(err, "building license "+id)
		}
		l := NewLicense(spec.ID, spec.Name, families[familyKey(spec.Family)], m)
		l.Notes = spec.Notes
		licenses = append(licenses, l)
	}
	policy, err := ParseDuplicatePolicy(string(c.Duplicates))
	if err != nil {
		return nil, err
	}
	return NewCollection(policy, licenses...)
}

// NewPool returns a session pool backed by this catalog.
func (c *Catalog) NewPool() *Pool {
	return NewPool(c.NewCollection)
}

// Approver reports whether a license's family is approved. An empty approved
// list approves every declared family. The unknown family is never approved.
func (c *Catalog) Approver() func(*License) bool {
	approved := map[string]bool{}
	for _, a := range c.Approved {
		approved[familyKey(a)] = true
	}
	return func(l *License) bool {
		if l == nil || l.Family.ID() == UnknownFamily.ID() {
			return false
		}
		return len(approved) == 0 || approved[l.Family.ID()]
	}
}

func (s MatcherSpec) kinds() int {
	n := 0
	for _, set := range []bool{
		s.Text != "", s.Copyright != nil, len(s.Substring) > 0, s.Regex != "", s.SPDX != "",
		len(s.Any) > 0, len(s.All) > 0, s.Not != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (s MatcherSpec) validate() error {
	if n := s.kinds(); n != 1 {
		return fmt.Errorf("matcher must declare exactly one kind, found %d", n)
	}
	if s.Regex != "" {
		if _, err := regexp.Compile(s.Regex); err != nil {
			return err
		}
	}
	for _, children := range [][]MatcherSpec{s.Any, s.All} {
		for _, child := range children {
			if err := child.validate(); err != nil {
				return err
			}
		}
	}
	if s.Not != nil {
		return s.Not.validate()
	}
	return nil
}

func (s MatcherSpec) build(id string, spdx *SPDXScanner) (Matcher, error) {
	switch {
	case s.Text != "":
		return NewFullText(id, s.Text), nil
	case s.Copyright != nil:
		return NewCopyright(id, s.Copyright.Start, s.Copyright.Stop, s.Copyright.Owner)
	case len(s.Substring) > 0:
		return NewSubstring(id, s.Substring...), nil
	case s.Regex != "":
		return NewRegex(id, s.Regex)
	case s.SPDX != "":
		return spdx.Matcher(s.SPDX), nil
	case s.Not != nil:
		inner, err := s.Not.build(id, spdx)
		if err != nil {
			return nil, err
		}
		return NewNot(id, inner), nil
	case len(s.Any) > 0:
		children, err := buildAll(s.Any, id, spdx)
		if err != nil {
			return nil, err
		}
		return NewAny(id, children...), nil
	case len(s.All) > 0:
		children, err := buildAll(s.All, id, spdx)
		if err != nil {
			return nil, err
		}
		return NewAll(id, children...), nil
	}
	return nil, fmt.Errorf("empty matcher for %s", id)
}

func buildAll(specs []MatcherSpec, id string, spdx *SPDXScanner) ([]Matcher, error) {
	out := make([]Matcher, 0, len(specs))
	for _, s := range specs {
		m, err := s.build(id, spdx)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
