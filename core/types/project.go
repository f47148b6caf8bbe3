package types

import (
	"strings"
	"time"
)

// Category is the building category
type Category string

const (
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
	CategoryIndustrial  Category = "industrial"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial:
		return true
	}
	return false
}

// Project is the caller's description of what to estimate. The engine only reads it.
type Project struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title,omitempty" yaml:"title,omitempty"`
	Category       Category       `json:"category" yaml:"category"`
	Subcategory    string         `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Specifications Specifications `json:"specifications" yaml:"specifications"`
	Location       Location       `json:"location" yaml:"location"`
	Timeline       Timeline       `json:"timeline" yaml:"timeline"`
}

// Specifications describes the building
type Specifications struct {
	// SquareFootage of zero means not provided
	SquareFootage       float64  `json:"square_footage,omitempty" yaml:"square_footage,omitempty"`
	Stories             int      `json:"stories,omitempty" yaml:"stories,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty" yaml:"special_requirements,omitempty"`
	GreenCertifications []string `json:"green_certifications,omitempty" yaml:"green_certifications,omitempty"`
}

// Location is the site
type Location struct {
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
}

// Key returns the "City, ST" form used by rate tables and comparables
func (l Location) Key() string {
	city := strings.TrimSpace(l.City)
	state := strings.TrimSpace(l.State)
	switch {
	case city == "":
		return state
	case state == "":
		return city
	}
	return city + ", " + state
}

// Timeline is the planned schedule
type Timeline struct {
	EstimatedStart         *time.Time `json:"estimated_start,omitempty" yaml:"estimated_start,omitempty"`
	EstimatedEnd           *time.Time `json:"estimated_end,omitempty" yaml:"estimated_end,omitempty"`
	WeatherContingencyDays int        `json:"weather_contingency_days,omitempty" yaml:"weather_contingency_days,omitempty"`
}

// DurationDays returns the planned duration and whether both dates are known
func (t Timeline) DurationDays() (int, bool) {
	if t.EstimatedStart == nil || t.EstimatedEnd == nil {
		return 0, false
	}
	return int(t.EstimatedEnd.Sub(*t.EstimatedStart).Hours() / 24), true
}

// InsightSource records where a requirement insight came from
type InsightSource string

const (
	InsightFromService  InsightSource = "service"
	InsightFromFallback InsightSource = "fallback"
	InsightFromStatic   InsightSource = "static"
)

// Insight is the qualitative analysis produced by the requirement-insight service
type Insight struct {
	Phases      []string      `json:"phases"`
	Materials   []string      `json:"materials"`
	Labor       []string      `json:"labor"`
	Challenges  []string      `json:"challenges"`
	Assumptions []string      `json:"assumptions"`
	Source      InsightSource `json:"source,omitempty"`
}
