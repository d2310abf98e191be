package ledger

import (
	"fmt"
	"strings"
)

// CanonicalTopics is the fixed set of retirement readiness topics, in the
// order the monitors display them.
var CanonicalTopics = []string{
	"income_cash_flow",
	"healthcare_medicare",
	"housing_geography",
	"tax_efficiency_rmds",
	"longevity_inflation",
	"long_term_care",
	"lifestyle_purpose",
	"estate_planning",
}

// IsCanonicalTopic reports whether topic is one of the known topics.
func IsCanonicalTopic(topic string) bool {
	for _, t := range CanonicalTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// ValidateTopic returns a ValidationError naming the allowed set when topic
// is not canonical.
func ValidateTopic(topic string) error {
	if IsCanonicalTopic(topic) {
		return nil
	}
	return &ValidationError{
		Reason: fmt.Sprintf("invalid topic %q, expected one of: %s", topic, strings.Join(CanonicalTopics, ", ")),
	}
}
