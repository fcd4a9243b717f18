package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Grade struct {
	Name string `yaml:"name"`
	Rank int    `yaml:"rank"`
}

// Catalog lists the fixed choices shown as buttons.
type Catalog struct {
	Grades       []Grade  `yaml:"grades"`
	SessionTypes []string `yaml:"session_types"`
	Rites        []string `yaml:"rites"`
	DressCodes   []string `yaml:"dress_codes"`
}

// Default returns the embedded catalog. It panics only if the embedded file
// is broken, which tests catch.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Grades) == 0 {
		return nil, fmt.Errorf("catalog has no grades")
	}
	seen := map[int]bool{}
	for _, g := range c.Grades {
		if g.Name == "" || g.Rank <= 0 {
			return nil, fmt.Errorf("catalog grade %q has no rank", g.Name)
		}
		if seen[g.Rank] {
			return nil, fmt.Errorf("catalog grade rank %d repeated", g.Rank)
		}
		seen[g.Rank] = true
	}
	return &c, nil
}

// GradeNames lists grades in rank order as written in the file.
func (c *Catalog) GradeNames() []string {
	out := make([]string, 0, len(c.Grades))
	for _, g := range c.Grades {
		out = append(out, g.Name)
	}
	return out
}

// GradeRank returns the rank of a grade name, case-insensitively.
// Unknown grades rank 0, which every filter treats as "open to all".
func (c *Catalog) GradeRank(name string) int {
	for _, g := range c.Grades {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g.Rank
		}
	}
	return 0
}

// CanonicalGrade maps free text onto the catalog spelling.
func (c *Catalog) CanonicalGrade(name string) (string, bool) {
	for _, g := range c.Grades {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g.Name, true
		}
	}
	return "", false
}

// GradeAdmits reports whether a member of grade memberGrade may attend a
// session whose minimum grade is minGrade.
func (c *Catalog) GradeAdmits(minGrade, memberGrade string) bool {
	return c.GradeRank(minGrade) <= c.GradeRank(memberGrade)
}
