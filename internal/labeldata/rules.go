package labeldata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet maps a jurisdiction name to the text of each region label. Values
// are literal display strings and may contain "\n" line breaks.
type RuleSet map[string]map[string]string

// Rules returns the label table of a jurisdiction.
func (rs RuleSet) Rules(jurisdiction string) (map[string]string, bool) {
	rules, ok := rs[jurisdiction]
	return rules, ok
}

// Lookup returns the text for a region label in a jurisdiction.
func (rs RuleSet) Lookup(jurisdiction, label string) (string, bool) {
	rules, ok := rs[jurisdiction]
	if !ok {
		return "", false
	}
	text, ok := rules[label]
	return text, ok
}

// Jurisdictions returns the jurisdiction names, sorted.
func (rs RuleSet) Jurisdictions() []string {
	out := make([]string, 0, len(rs))
	for name := range rs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadRuleSet reads a rule-set document from a file.
func LoadRuleSet(path string) (RuleSet, error) {
	// #nosec G304 -- rule path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return ParseRuleSet(data, path)
}

// ParseRuleSet decodes a rule-set document, a two-level object keyed by
// jurisdiction then region label, in JSON or YAML.
func ParseRuleSet(data []byte, source string) (RuleSet, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("labeldata: rule document %s is empty", source)
	}
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err == nil {
		return rs, nil
	}
	if err := yaml.Unmarshal(data, &rs); err == nil {
		return rs, nil
	}
	return nil, fmt.Errorf("labeldata: parse %s: invalid JSON or YAML rule document", source)
}

// SampleImages names the sample master labels shipped next to the binary.
var SampleImages = map[string]string{
	"Master Label Johnny Walker": "Master Label Johnny Walker.png",
	"Master Label VAT":           "Master Label VAT.png",
}

// DemoRules returns the demonstration rule set for Uttar Pradesh and
// Rajasthan. Each call returns a fresh copy.
func DemoRules() RuleSet {
	return RuleSet{
		"Uttar Pradesh": {
			"V_STATE_RESTRICTION_EN":  "FOR SALE IN UTTAR PRADESH ONLY",
			"V_STATE_RESTRICTION_REG": "उप में केवल बिक्री के लिए",
			"V_AGE_RESTR_EN":          "Not for sale to persons below 25 years of age.",
			"NOT_SOLD_IN":             "Not for sale in Bihar",
			"V_HEALTH_WARN_EN":        "CONSUMPTION OF ALCOHOL IS INJURIOUS TO HEALTH,\n BE SAFE-DON'T DRINK AND DRIVE.",
			"V_HEALTH_WARN_REG":       "शराब स्वास्थ्य के लिए हानिकारक है.",
			"IMPORT_LISC":             "1001245678",
			"Lisc_no":                 "1234567890",
			"V_StateLicense":          "UP. EXCISE REGD. NO. E AC-45/110W-106046",
		},
		"Rajasthan": {
			"V_STATE_RESTRICTION_EN":  "FOR SALE IN RAJASTHAN ONLY",
			"V_STATE_RESTRICTION_REG": "उप में केवल बिक्री के लिए",
			"V_AGE_RESTR_EN":          "Not for sale to persons below 21 years of age.",
			"NOT_SOLD_IN":             "Not for sale in Madhya Pradesh",
			"V_HEALTH_WARN_EN":        "CONSUMPTION OF ALCOHOL IS INJURIOUS TO HEALTH,\n BE SAFE-DON'T DRINK AND DRIVE.",
			"V_HEALTH_WARN_REG":       "शराब स्वास्थ्य के लिए हानिकारक है.",
			"IMPORT_LISC":             "1001234567",
			"Lisc_no":                 "1234567890",
			"V_StateLicense":          "RA. EXCISE REGD. NO. E AC-45/110W-10000",
		},
	}
}
