package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

// Recommendation is the action plan attached to one flagged item.
type Recommendation struct {
	DrugName         string                    `json:"drug_name"`
	AlertLevel       inventorycheck.AlertLevel `json:"alert_level"`
	RiskAssessment   string                    `json:"risk_assessment"`
	ImmediateActions []string                  `json:"immediate_actions"`
	Alternatives     []string                  `json:"alternatives"`
	Timeline         string                    `json:"timeline"`
	PriorityScore    int                       `json:"priority_score"`
}

var recallClassDescriptions = map[inventorycheck.RecallClass]string{
	inventorycheck.RecallClassI:   "Life-threatening situation, immediate action required",
	inventorycheck.RecallClassII:  "Temporary or reversible health consequences, prompt action needed",
	inventorycheck.RecallClassIII: "Remote possibility of adverse health consequences, monitor closely",
}

// Engine generates deterministic, rule-based recommendations per alert
// level. It never fails, which makes it the fallback layer under the
// LLM-backed advisor.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Recommend(item inventorycheck.FormattedItem) Recommendation {
	days := math.Inf(1)
	if item.DaysOfSupply != nil {
		days = *item.DaysOfSupply
	}
	classification := inventorycheck.RecallClass("")
	if item.RecallClassification != nil {
		classification = inventorycheck.RecallClass(*item.RecallClassification)
	}

	rec := Recommendation{
		DrugName:      item.DrugName,
		AlertLevel:    item.AlertLevel,
		PriorityScore: priorityScore(item.AlertLevel, classification, days),
	}

	switch item.AlertLevel {
	case inventorycheck.AlertRed:
		e.fillCritical(&rec, item, days, classification)
	case inventorycheck.AlertPurple:
		e.fillRecall(&rec, item, classification)
	case inventorycheck.AlertYellow:
		e.fillShortage(&rec, item, days)
	case inventorycheck.AlertBlue:
		e.fillMonitoring(&rec, days)
	default:
		e.fillManualReview(&rec, item)
	}
	return rec
}

func priorityScore(level inventorycheck.AlertLevel, classification inventorycheck.RecallClass, days float64) int {
	score := 5
	switch level {
	case inventorycheck.AlertRed:
		score += 3
	case inventorycheck.AlertPurple:
		score += 2
	case inventorycheck.AlertYellow:
		score++
	}
	switch classification {
	case inventorycheck.RecallClassI:
		score += 2
	case inventorycheck.RecallClassII:
		score++
	}
	if days <= 7 {
		score += 2
	} else if days <= 30 {
		score++
	}
	if score > 10 {
		return 10
	}
	if score < 1 {
		return 1
	}
	return score
}

func (e *Engine) fillCritical(rec *Recommendation, item inventorycheck.FormattedItem, days float64, classification inventorycheck.RecallClass) {
	rec.RiskAssessment = fmt.Sprintf("CRITICAL RISK: %s requires immediate attention due to %s. Current supply of %s may impact patient care.",
		item.DrugName, strings.ToLower(string(item.FDAStatus)), formatDays(days))

	rec.ImmediateActions = []string{
		"STOP dispensing immediately until further review",
		"Contact all patients who received this medication in the last 30 days",
		"Document all current inventory and lot numbers",
		"Coordinate with clinical team for patient safety assessment",
		"Report to pharmacy supervisor and compliance officer within 2 hours",
	}
	if strings.Contains(strings.ToLower(string(item.FDAStatus)), "shortage") {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Search for alternative suppliers immediately",
			"Identify therapeutic alternatives for new prescriptions",
			"Consider emergency drug procurement if clinically critical",
		)
	}
	if classification == inventorycheck.RecallClassI {
		rec.ImmediateActions = insertAt(rec.ImmediateActions, 1,
			"This is a Class I recall with life-threatening risk to patients")
	}
	rec.Alternatives = e.fallbackAlternatives(item.DrugName)
	rec.Timeline = "IMMEDIATE - all actions must be completed within 2-4 hours"
}

func (e *Engine) fillRecall(rec *Recommendation, item inventorycheck.FormattedItem, classification inventorycheck.RecallClass) {
	desc, ok := recallClassDescriptions[classification]
	if !ok {
		desc = "FDA recall"
	}
	rec.RiskAssessment = fmt.Sprintf("HIGH RISK: %s has been recalled by the FDA. %s. Current inventory should be quarantined.",
		item.DrugName, desc)

	rec.ImmediateActions = []string{
		"Quarantine all affected inventory immediately",
		"Check lot numbers against the FDA recall notice",
		"Stop all dispensing of affected lots",
		"Contact patients who received recalled lots",
		"Complete FDA recall response documentation",
	}
	switch classification {
	case inventorycheck.RecallClassI:
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Treat as medical emergency and contact patients within 24 hours",
			"Coordinate with healthcare providers for patient monitoring",
		)
		rec.Timeline = "URGENT - complete within 24 hours for a Class I recall"
	case inventorycheck.RecallClassII:
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Contact affected patients within 48-72 hours")
		rec.Timeline = "HIGH PRIORITY - complete within 48-72 hours"
	default:
		rec.Timeline = "HIGH PRIORITY - complete within 48-72 hours"
	}
	rec.Alternatives = e.fallbackAlternatives(item.DrugName)
}

func (e *Engine) fillShortage(rec *Recommendation, item inventorycheck.FormattedItem, days float64) {
	rec.RiskAssessment = fmt.Sprintf("MODERATE RISK: %s is experiencing supply challenges. Current %s supply requires proactive management.",
		item.DrugName, formatDays(days))

	rec.ImmediateActions = []string{
		"Audit current inventory levels and usage patterns",
		"Contact alternative suppliers for availability",
		"Identify suitable therapeutic alternatives",
		"Notify prescribers of potential supply constraints",
	}
	if days <= 14 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Implement conservative dispensing with 10-14 day supplies",
			"Expedite orders from alternative sources",
		)
	}
	if days <= 7 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Activate emergency procurement procedures",
			"Begin transitioning patients to alternatives",
		)
	}
	rec.Alternatives = e.fallbackAlternatives(item.DrugName)
	rec.Timeline = fmt.Sprintf("Within 7-10 days (current supply: %s)", formatDays(days))
}

func (e *Engine) fillMonitoring(rec *Recommendation, days float64) {
	rec.RiskAssessment = fmt.Sprintf("LOW RISK: %s is showing early warning signs. Proactive monitoring recommended.", rec.DrugName)
	rec.ImmediateActions = []string{
		"Monitor inventory levels more closely",
		"Review usage trends and reorder points",
		"Stay updated on FDA announcements for this medication",
	}
	if days <= 30 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"Consider increasing safety stock levels")
	}
	rec.Alternatives = []string{"Continue current management, no alternatives needed at this time"}
	rec.Timeline = "Monitor ongoing, review weekly"
}

func (e *Engine) fillManualReview(rec *Recommendation, item inventorycheck.FormattedItem) {
	rec.RiskAssessment = fmt.Sprintf("Unable to generate detailed risk assessment for %s. Manual review required.", item.DrugName)
	rec.ImmediateActions = []string{
		"Review drug status manually with pharmacy supervisor",
		"Check FDA databases for latest information",
		"Consult clinical pharmacist for guidance",
		"Document review and decisions made",
	}
	rec.Alternatives = []string{
		"Consult prescriber about alternative medications",
		"Contact clinical pharmacist for therapeutic alternatives",
	}
	rec.Timeline = "Within 24 hours, manual review required"
	rec.PriorityScore = 5
}

// fallbackAlternatives returns class-level suggestions when no LLM is
// available. Capped at four entries.
func (e *Engine) fallbackAlternatives(drugName string) []string {
	lower := strings.ToLower(drugName)
	var alts []string
	switch {
	case containsAny(lower, "acetaminophen", "tylenol", "paracetamol"):
		alts = []string{
			"Consider NSAIDs like ibuprofen for pain relief",
			"Consult with prescriber about alternative analgesics",
			"Generic acetaminophen from different manufacturers",
		}
	case containsAny(lower, "ibuprofen", "advil", "motrin"):
		alts = []string{
			"Naproxen for anti-inflammatory effects",
			"Acetaminophen for pain relief",
			"Consult prescriber about other NSAIDs",
		}
	case containsAny(lower, "amoxicillin", "penicillin"):
		alts = []string{
			"Cephalexin if not penicillin allergic",
			"Azithromycin for penicillin-allergic patients",
			"Consult prescriber for appropriate alternative antibiotic",
		}
	case containsAny(lower, "lisinopril", "ace inhibitor"):
		alts = []string{
			"Consider ARBs such as losartan or valsartan",
			"Other ACE inhibitors such as enalapril or ramipril",
			"Consult prescriber about therapeutic alternatives",
		}
	default:
		alts = []string{
			"Contact prescriber to discuss therapeutic alternatives",
			"Check for generic versions from different manufacturers",
			"Consider similar medications in the same therapeutic class",
			"Consult clinical pharmacist for alternative recommendations",
		}
	}
	if len(alts) > 4 {
		alts = alts[:4]
	}
	return alts
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func insertAt(s []string, i int, v string) []string {
	if i < 0 || i > len(s) {
		return append(s, v)
	}
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func formatDays(days float64) string {
	if math.IsInf(days, 1) {
		return "an unbounded number of days"
	}
	return fmt.Sprintf("%.1f days", days)
}
