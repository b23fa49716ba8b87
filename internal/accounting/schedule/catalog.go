package schedule

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// Catalog is a validated, ordered set of mappings for one statement type.
type Catalog struct {
	Standard string
	Type     StatementType
	items    []Mapping
	index    map[string]int
	children map[string][]string
}

// NewCatalog validates the rollup graph: unique codes, known parents, signs of
// ±1, unique roles and no cycles.
func NewCatalog(standard string, statementType StatementType, items []Mapping) (Catalog, error) {
	if !statementType.Valid() {
		return Catalog{}, fmt.Errorf("%w: statement type %q", shared.ErrInvalidCatalog, statementType)
	}
	sorted := append([]Mapping(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DisplayOrder < sorted[j].DisplayOrder })
	c := Catalog{
		Standard: standard,
		Type:     statementType,
		items:    sorted,
		index:    make(map[string]int, len(sorted)),
		children: make(map[string][]string),
	}
	roles := make(map[Role]string)
	for idx, m := range sorted {
		if m.LineItemCode == "" {
			return Catalog{}, fmt.Errorf("%w: empty line item code", shared.ErrInvalidCatalog)
		}
		if m.StatementType != statementType {
			return Catalog{}, fmt.Errorf("%w: %s belongs to %s", shared.ErrInvalidCatalog, m.LineItemCode, m.StatementType)
		}
		if _, dup := c.index[m.LineItemCode]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate code %s", shared.ErrInvalidCatalog, m.LineItemCode)
		}
		if m.RollupSign != 1 && m.RollupSign != -1 {
			return Catalog{}, fmt.Errorf("%w: %s rollup sign %d", shared.ErrInvalidCatalog, m.LineItemCode, m.RollupSign)
		}
		if m.Role != "" {
			if other, dup := roles[m.Role]; dup {
				return Catalog{}, fmt.Errorf("%w: role %s on %s and %s", shared.ErrInvalidCatalog, m.Role, other, m.LineItemCode)
			}
			roles[m.Role] = m.LineItemCode
		}
		c.index[m.LineItemCode] = idx
	}
	for _, m := range sorted {
		if m.RollupParent == "" {
			continue
		}
		if _, ok := c.index[m.RollupParent]; !ok {
			return Catalog{}, fmt.Errorf("%w: %s rolls into unknown %s", shared.ErrInvalidCatalog, m.LineItemCode, m.RollupParent)
		}
		c.children[m.RollupParent] = append(c.children[m.RollupParent], m.LineItemCode)
	}
	for _, m := range sorted {
		seen := map[string]bool{m.LineItemCode: true}
		for parent := m.RollupParent; parent != ""; parent = c.items[c.index[parent]].RollupParent {
			if seen[parent] {
				return Catalog{}, fmt.Errorf("%w: rollup cycle through %s", shared.ErrInvalidCatalog, parent)
			}
			seen[parent] = true
		}
	}
	return c, nil
}

// Items returns the mappings in display order.
func (c Catalog) Items() []Mapping {
	return append([]Mapping(nil), c.items...)
}

// Lookup finds a mapping by code.
func (c Catalog) Lookup(code string) (Mapping, bool) {
	idx, ok := c.index[code]
	if !ok {
		return Mapping{}, false
	}
	return c.items[idx], true
}

// ByRole finds the mapping carrying role.
func (c Catalog) ByRole(role Role) (Mapping, bool) {
	for _, m := range c.items {
		if m.Role == role {
			return m, true
		}
	}
	return Mapping{}, false
}

// Children returns the codes rolling into code, in display order.
func (c Catalog) Children(code string) []string {
	return c.children[code]
}

// IsComputed reports whether the line's amount comes from its children.
func (c Catalog) IsComputed(code string) bool {
	return len(c.children[code]) > 0
}

// Roots returns the top-level mappings in display order.
func (c Catalog) Roots() []Mapping {
	var roots []Mapping
	for _, m := range c.items {
		if m.RollupParent == "" {
			roots = append(roots, m)
		}
	}
	return roots
}

// Evaluation carries rolled-up amounts per line code.
type Evaluation struct {
	Amounts map[string]decimal.Decimal
	Missing map[string]bool
}

// Evaluate rolls leaf amounts up the graph. Leaves absent from leaves are
// zero and reported missing; computed lines sum their signed children.
func (c Catalog) Evaluate(leaves map[string]decimal.Decimal) Evaluation {
	ev := Evaluation{Amounts: make(map[string]decimal.Decimal, len(c.items)), Missing: make(map[string]bool)}
	var visit func(code string) decimal.Decimal
	visit = func(code string) decimal.Decimal {
		if amount, done := ev.Amounts[code]; done {
			return amount
		}
		var amount decimal.Decimal
		if kids := c.children[code]; len(kids) > 0 {
			for _, kid := range kids {
				sign := decimal.NewFromInt(int64(c.items[c.index[kid]].RollupSign))
				amount = amount.Add(visit(kid).Mul(sign))
			}
		} else if leaf, ok := leaves[code]; ok {
			amount = leaf
		} else {
			ev.Missing[code] = true
		}
		ev.Amounts[code] = amount
		return amount
	}
	for _, m := range c.items {
		visit(m.LineItemCode)
	}
	return ev
}
