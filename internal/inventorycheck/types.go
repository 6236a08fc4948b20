package inventorycheck

import (
	"math"
	"time"
)

const DefaultFuzzyMatchThreshold = 85

type Status string

const (
	StatusRecalled        Status = "Recalled"
	StatusInShortage      Status = "Currently in Shortage"
	StatusDiscontinuation Status = "Discontinuation"
	StatusResolved        Status = "Resolved"
	StatusLowStockOnly    Status = "Low Stock Only"
)

type Source string

const (
	SourceShortageFeed      Source = "shortage_db"
	SourceRecallFeed        Source = "recall_api"
	SourceInventoryAnalysis Source = "inventory_analysis"
)

type RecallClass string

const (
	RecallClassI   RecallClass = "Class I"
	RecallClassII  RecallClass = "Class II"
	RecallClassIII RecallClass = "Class III"
)

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// AlertLevel is the dashboard tier. AlertNone means the item needs no
// attention and is excluded from the report.
type AlertLevel string

const (
	AlertNone   AlertLevel = ""
	AlertRed    AlertLevel = "RED"
	AlertPurple AlertLevel = "PURPLE"
	AlertYellow AlertLevel = "YELLOW"
	AlertBlue   AlertLevel = "BLUE"
)

type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "no_match"
)

type InventoryRecord struct {
	DrugName             string  `json:"drug_name"`
	Stock                int     `json:"stock"`
	AverageDailyDispense float64 `json:"average_daily_dispense"`
}

// DaysOfSupply is stock divided by daily consumption, infinite when
// nothing is being dispensed.
func (r InventoryRecord) DaysOfSupply() float64 {
	if r.AverageDailyDispense > 0 {
		return float64(r.Stock) / r.AverageDailyDispense
	}
	return math.Inf(1)
}

type ShortageRow struct {
	GenericName string `json:"generic_name"`
	Status      string `json:"status"`
}

type RecallRow struct {
	DrugName       string `json:"drug_name"`
	Classification string `json:"classification"`
	Reason         string `json:"reason"`
}

type RegulatoryRecord struct {
	DrugName             string      `json:"drug_name"`
	Status               Status      `json:"status"`
	Source               Source      `json:"source"`
	RecallClassification RecallClass `json:"recall_classification,omitempty"`
	RecallReason         string      `json:"recall_reason,omitempty"`
}

type MatchResult struct {
	MatchedName string    `json:"matched_name,omitempty"`
	Confidence  int       `json:"confidence"`
	Type        MatchType `json:"match_type"`
}

// FlaggedItem is an inventory row that received a non-null alert level,
// carrying its match and regulatory context plus the derived fields.
type FlaggedItem struct {
	DrugName             string
	CurrentStock         int
	AverageDailyDispense float64
	DaysOfSupply         float64

	MatchedName     string
	MatchConfidence int
	MatchType       MatchType

	FlagStatus           Status
	FlagSource           Source
	RecallClassification RecallClass
	RecallReason         string

	AlertLevel              AlertLevel
	PriorityScore           int
	Severity                Severity
	RequiresImmediateAction bool
	HasFDAIssue             bool
}

type FormattedItem struct {
	ID                      int        `json:"id"`
	DrugName                string     `json:"drug_name"`
	AlertLevel              AlertLevel `json:"alert_level"`
	DaysOfSupply            *float64   `json:"days_of_supply"`
	CurrentStock            int        `json:"current_stock"`
	AverageDailyDispense    float64    `json:"average_daily_dispense"`
	FDAStatus               Status     `json:"fda_status"`
	FDAMatchedName          string     `json:"fda_matched_name"`
	MatchConfidence         *float64   `json:"match_confidence"`
	RecallClassification    *string    `json:"recall_classification"`
	RecallReason            *string    `json:"recall_reason"`
	RequiresImmediateAction bool       `json:"requires_immediate_action"`
	HasFDAIssue             bool       `json:"has_fda_issue"`
}

type Summary struct {
	TotalItemsChecked       int                `json:"total_items_checked"`
	ItemsRequiringAttention int                `json:"items_requiring_attention"`
	RecallItems             int                `json:"recall_items"`
	ShortageItems           int                `json:"shortage_items"`
	DiscontinuationItems    int                `json:"discontinuation_items"`
	LowStockItems           int                `json:"low_stock_items"`
	AlertBreakdown          map[AlertLevel]int `json:"alert_breakdown"`
	CriticalItems           int                `json:"critical_items"`
	AvgDaysSupply           float64            `json:"avg_days_supply"`
}

type Report struct {
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	Timestamp   string          `json:"timestamp"`
	Summary     Summary         `json:"summary"`
	Recalls     []FormattedItem `json:"recalls"`
	OtherAlerts []FormattedItem `json:"other_alerts"`
}

// Config carries the matching and classification knobs so tests can
// vary thresholds without shared package state.
type Config struct {
	FuzzyMatchThreshold int
	StatusPriority      map[Status]int
	AlertPriority       map[AlertLevel]int
	Clock               func() time.Time
}

func DefaultConfig() Config {
	return Config{
		FuzzyMatchThreshold: DefaultFuzzyMatchThreshold,
		StatusPriority: map[Status]int{
			StatusRecalled:        3,
			StatusInShortage:      2,
			StatusDiscontinuation: 1,
			StatusResolved:        0,
		},
		AlertPriority: map[AlertLevel]int{
			AlertRed:    4,
			AlertPurple: 3,
			AlertYellow: 2,
			AlertBlue:   1,
		},
		Clock: time.Now,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FuzzyMatchThreshold <= 0 {
		c.FuzzyMatchThreshold = def.FuzzyMatchThreshold
	}
	if c.StatusPriority == nil {
		c.StatusPriority = def.StatusPriority
	}
	if c.AlertPriority == nil {
		c.AlertPriority = def.AlertPriority
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	return c
}

func (c Config) statusPriority(status Status) int {
	return c.StatusPriority[status]
}

func (c Config) alertPriority(level AlertLevel) int {
	return c.AlertPriority[level]
}
