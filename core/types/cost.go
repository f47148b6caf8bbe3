// Package types - Cost breakdown types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

// CurrencyUSD is the single currency every breakdown is computed in
const CurrencyUSD Currency = "USD"

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Fixed percentages applied to the subtotal
var (
	ContingencyRate = decimal.RequireFromString("0.10")
	ProfitRate      = decimal.RequireFromString("0.15")
)

// MaterialItem is a single priced material quantity
type MaterialItem struct {
	// Name is the material name
	Name string `json:"name"`

	// Unit is the purchasing unit (cy, ton, sqft, each, ...)
	Unit string `json:"unit"`

	// Quantity is derived from square footage
	Quantity decimal.Decimal `json:"quantity"`

	// UnitCost is the price per unit
	UnitCost decimal.Decimal `json:"unit_cost"`

	// Total is Quantity * UnitCost
	Total decimal.Decimal `json:"total"`
}

// MaterialCategory groups material items (foundation, framing, ...)
type MaterialCategory struct {
	Name     string          `json:"name"`
	Items    []MaterialItem  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Add appends an item and folds it into the subtotal
func (c *MaterialCategory) Add(item MaterialItem) {
	c.Items = append(c.Items, item)
	c.Subtotal = c.Subtotal.Add(item.Total)
}

// resum recomputes the subtotal from the items
func (c *MaterialCategory) resum() {
	c.Subtotal = decimal.Zero
	for _, item := range c.Items {
		c.Subtotal = c.Subtotal.Add(item.Total)
	}
}

// LaborLine is a trade crew
type LaborLine struct {
	Trade      string          `json:"trade"`
	Workers    int             `json:"workers"`
	Hours      decimal.Decimal `json:"hours"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Total      decimal.Decimal `json:"total"`
}

// EquipmentLine is a rental
type EquipmentLine struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Duration int             `json:"duration"`
	Unit     string          `json:"unit"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
}

// SubcontractorLine is a subcontracted scope
type SubcontractorLine struct {
	Trade             string          `json:"trade"`
	Scope             string          `json:"scope"`
	Amount            decimal.Decimal `json:"amount"`
	MaterialsIncluded bool            `json:"materials_included"`
}

// CostBreakdown is the structured cost of a project. The derived scalars
// (Subtotal, Contingency, ProfitMargin, Total) are only ever written by Recompute.
type CostBreakdown struct {
	// Direct costs
	Materials      []MaterialCategory  `json:"materials"`
	Labor          []LaborLine         `json:"labor"`
	Equipment      []EquipmentLine     `json:"equipment"`
	Subcontractors []SubcontractorLine `json:"subcontractors"`

	// Indirect costs
	Permits   decimal.Decimal `json:"permits"`
	Insurance decimal.Decimal `json:"insurance"`
	Bonding   decimal.Decimal `json:"bonding"`
	Overhead  decimal.Decimal `json:"overhead"`

	// Derived
	Subtotal     decimal.Decimal `json:"subtotal"`
	Contingency  decimal.Decimal `json:"contingency"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	Total        decimal.Decimal `json:"total"`

	// Currency is the single currency of every amount
	Currency Currency `json:"currency"`
}

// MaterialsTotal sums the material category subtotals
func (b *CostBreakdown) MaterialsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b.Materials {
		total = total.Add(c.Subtotal)
	}
	return total
}

// LaborTotal sums the labor lines
func (b *CostBreakdown) LaborTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Labor {
		total = total.Add(l.Total)
	}
	return total
}

// EquipmentTotal sums the equipment lines
func (b *CostBreakdown) EquipmentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.Equipment {
		total = total.Add(e.Total)
	}
	return total
}

// SubcontractorTotal sums the subcontractor lines
func (b *CostBreakdown) SubcontractorTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range b.Subcontractors {
		total = total.Add(s.Amount)
	}
	return total
}

// DirectTotal is materials + labor + equipment + subcontractors
func (b *CostBreakdown) DirectTotal() decimal.Decimal {
	return b.MaterialsTotal().Add(b.LaborTotal()).Add(b.EquipmentTotal()).Add(b.SubcontractorTotal())
}

// IndirectTotal is permits + insurance + bonding + overhead
func (b *CostBreakdown) IndirectTotal() decimal.Decimal {
	return b.Permits.Add(b.Insurance).Add(b.Bonding).Add(b.Overhead)
}

// Recompute rebuilds category subtotals and every derived scalar from the
// line items. Call it after any line item changes.
func (b *CostBreakdown) Recompute() {
	for i := range b.Materials {
		b.Materials[i].resum()
	}
	b.Subtotal = b.DirectTotal().Add(b.IndirectTotal())
	b.Contingency = b.Subtotal.Mul(ContingencyRate)
	b.ProfitMargin = b.Subtotal.Mul(ProfitRate)
	b.Total = b.Subtotal.Add(b.Contingency).Add(b.ProfitMargin)
}

// Clone returns a deep copy
func (b *CostBreakdown) Clone() *CostBreakdown {
	if b == nil {
		return nil
	}
	out := *b
	out.Materials = make([]MaterialCategory, len(b.Materials))
	for i, c := range b.Materials {
		out.Materials[i] = MaterialCategory{
			Name:     c.Name,
			Items:    append([]MaterialItem(nil), c.Items...),
			Subtotal: c.Subtotal,
		}
	}
	out.Labor = append([]LaborLine(nil), b.Labor...)
	out.Equipment = append([]EquipmentLine(nil), b.Equipment...)
	out.Subcontractors = append([]SubcontractorLine(nil), b.Subcontractors...)
	return &out
}
