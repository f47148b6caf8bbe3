package rates

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// rateFile is the HCL schema of a rate file. Every section is optional; a
// section that is present replaces the built-in section as a whole.
//
//	default_regional = 1.0
//	region "Oakland, CA" { multiplier = 1.38 }
//	state "CA" { multiplier = 1.20 }
//	seasonal { winter = 1.15 spring = 1.0 summer = 1.05 fall = 1.02 }
//	trade "Electrical" { workers = 2 hours_per_sqft = 0.03 hourly_rate = 75 }
//	material_category "Foundation" {
//	  item "Concrete" { unit = "cy" per_sqft = 0.012 unit_cost = 150 }
//	}
//	equipment "Excavator" { type = "heavy" duration = 5 unit = "day" rate = 450 }
//	subcontractor "HVAC" { per_sqft = 8.5 materials_included = true }
//	permit "commercial" { per_sqft = 2.5 }
type rateFile struct {
	DefaultRegional  *float64 `hcl:"default_regional,optional"`
	InsurancePerSqft *float64 `hcl:"insurance_per_sqft,optional"`
	BondingRate      *float64 `hcl:"bonding_rate,optional"`
	OverheadPerSqft  *float64 `hcl:"overhead_per_sqft,optional"`

	Regions        []multiplierBlock    `hcl:"region,block"`
	States         []multiplierBlock    `hcl:"state,block"`
	Seasonal       *seasonalBlock       `hcl:"seasonal,block"`
	Trades         []tradeBlock         `hcl:"trade,block"`
	Categories     []categoryBlock      `hcl:"material_category,block"`
	Equipment      []equipmentBlock     `hcl:"equipment,block"`
	Subcontractors []subcontractorBlock `hcl:"subcontractor,block"`
	Permits        []permitBlock        `hcl:"permit,block"`
}

type multiplierBlock struct {
	Key        string  `hcl:"key,label"`
	Multiplier float64 `hcl:"multiplier"`
}

type seasonalBlock struct {
	Winter float64 `hcl:"winter"`
	Spring float64 `hcl:"spring"`
	Summer float64 `hcl:"summer"`
	Fall   float64 `hcl:"fall"`
}

type tradeBlock struct {
	Name         string  `hcl:"name,label"`
	Workers      int     `hcl:"workers"`
	HoursPerSqft float64 `hcl:"hours_per_sqft"`
	HourlyRate   float64 `hcl:"hourly_rate"`
}

type categoryBlock struct {
	Name  string      `hcl:"name,label"`
	Items []itemBlock `hcl:"item,block"`
}

type itemBlock struct {
	Name     string   `hcl:"name,label"`
	Unit     string   `hcl:"unit"`
	PerSqft  float64  `hcl:"per_sqft"`
	Fixed    *float64 `hcl:"fixed,optional"`
	UnitCost float64  `hcl:"unit_cost"`
}

type equipmentBlock struct {
	Name     string  `hcl:"name,label"`
	Type     string  `hcl:"type"`
	Duration int     `hcl:"duration"`
	Unit     string  `hcl:"unit"`
	Rate     float64 `hcl:"rate"`
}

type subcontractorBlock struct {
	Trade             string  `hcl:"trade,label"`
	Scope             *string `hcl:"scope,optional"`
	PerSqft           float64 `hcl:"per_sqft"`
	MaterialsIncluded *bool   `hcl:"materials_included,optional"`
}

type permitBlock struct {
	Category string  `hcl:"category,label"`
	PerSqft  float64 `hcl:"per_sqft"`
}

// LoadFile reads a rate file (.hcl, or .json in HCL's JSON syntax) and returns
// a validated table.
func LoadFile(path string) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read rate file", err)
	}
	return Parse(path, src)
}

// Parse decodes rate-file source. filename selects the syntax by extension.
func Parse(filename string, src []byte) (*Table, error) {
	var file rateFile
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return nil, errors.Config("failed to decode rate file "+filename, summarize(err))
	}

	table := file.apply(Default())
	table.Name = filename
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// summarize flattens HCL diagnostics into one error with line numbers
func summarize(err error) error {
	var diags hcl.Diagnostics
	if !stderrors.As(err, &diags) {
		return err
	}
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msgs = append(msgs, fmt.Sprintf("line %d: %s: %s", line, diag.Summary, diag.Detail))
	}
	if len(msgs) == 0 {
		return err
	}
	return stderrors.New(strings.Join(msgs, "; "))
}

func (f *rateFile) apply(t *Table) *Table {
	if f.DefaultRegional != nil {
		t.DefaultRegional = decimal.NewFromFloat(*f.DefaultRegional)
	}
	if f.InsurancePerSqft != nil {
		t.InsurancePerSqft = decimal.NewFromFloat(*f.InsurancePerSqft)
	}
	if f.BondingRate != nil {
		t.BondingRate = decimal.NewFromFloat(*f.BondingRate)
	}
	if f.OverheadPerSqft != nil {
		t.OverheadPerSqft = decimal.NewFromFloat(*f.OverheadPerSqft)
	}

	if len(f.Regions) > 0 {
		t.Regional = make(map[string]decimal.Decimal, len(f.Regions))
		for _, r := range f.Regions {
			t.Regional[r.Key] = decimal.NewFromFloat(r.Multiplier)
		}
	}
	if len(f.States) > 0 {
		t.States = make(map[string]decimal.Decimal, len(f.States))
		for _, s := range f.States {
			t.States[s.Key] = decimal.NewFromFloat(s.Multiplier)
		}
	}
	if f.Seasonal != nil {
		t.Seasonal = map[types.Season]decimal.Decimal{
			types.SeasonWinter: decimal.NewFromFloat(f.Seasonal.Winter),
			types.SeasonSpring: decimal.NewFromFloat(f.Seasonal.Spring),
			types.SeasonSummer: decimal.NewFromFloat(f.Seasonal.Summer),
			types.SeasonFall:   decimal.NewFromFloat(f.Seasonal.Fall),
		}
	}

	if len(f.Trades) > 0 {
		t.Trades = make([]Trade, 0, len(f.Trades))
		for _, tr := range f.Trades {
			t.Trades = append(t.Trades, Trade{
				Name:         tr.Name,
				Workers:      tr.Workers,
				HoursPerSqft: decimal.NewFromFloat(tr.HoursPerSqft),
				HourlyRate:   decimal.NewFromFloat(tr.HourlyRate),
			})
		}
	}

	if len(f.Categories) > 0 {
		t.MaterialCategories = make([]MaterialCategoryRate, 0, len(f.Categories))
		for _, c := range f.Categories {
			cat := MaterialCategoryRate{Name: c.Name}
			for _, it := range c.Items {
				fixed := decimal.Zero
				if it.Fixed != nil {
					fixed = decimal.NewFromFloat(*it.Fixed)
				}
				cat.Items = append(cat.Items, MaterialRate{
					Name:     it.Name,
					Unit:     it.Unit,
					PerSqft:  decimal.NewFromFloat(it.PerSqft),
					Fixed:    fixed,
					UnitCost: decimal.NewFromFloat(it.UnitCost),
				})
			}
			t.MaterialCategories = append(t.MaterialCategories, cat)
		}
	}

	if len(f.Equipment) > 0 {
		t.Equipment = make([]EquipmentRate, 0, len(f.Equipment))
		for _, e := range f.Equipment {
			t.Equipment = append(t.Equipment, EquipmentRate{
				Name:     e.Name,
				Type:     e.Type,
				Duration: e.Duration,
				Unit:     e.Unit,
				Rate:     decimal.NewFromFloat(e.Rate),
			})
		}
	}

	if len(f.Subcontractors) > 0 {
		t.Subcontractors = make([]SubcontractorRate, 0, len(f.Subcontractors))
		for _, s := range f.Subcontractors {
			sub := SubcontractorRate{
				Trade:             s.Trade,
				PerSqft:           decimal.NewFromFloat(s.PerSqft),
				MaterialsIncluded: true,
			}
			if s.Scope != nil {
				sub.Scope = *s.Scope
			}
			if s.MaterialsIncluded != nil {
				sub.MaterialsIncluded = *s.MaterialsIncluded
			}
			t.Subcontractors = append(t.Subcontractors, sub)
		}
	}

	if len(f.Permits) > 0 {
		t.Permits = make(map[types.Category]decimal.Decimal, len(f.Permits))
		for _, p := range f.Permits {
			t.Permits[types.Category(p.Category)] = decimal.NewFromFloat(p.PerSqft)
		}
	}

	return t
}
