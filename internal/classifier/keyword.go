package classifier

import (
	"context"
	"encoding/json"
	"strings"
)

// keywordRule maps a set of body substrings to an intent with a fixed
// confidence estimate. First match wins, so more specific phrases come
// before generic ones.
type keywordRule struct {
	intent     string
	confidence float64
	keywords   []string
}

var keywordRules = []keywordRule{
	{intent: "escalation", confidence: 0.9, keywords: []string{"manager", "supervisor", "escalat", "complain", "urgent"}},
	{intent: "not_interested", confidence: 0.8, keywords: []string{"not interested", "no thanks", "no thank", "don't need", "do not need"}},
	{intent: "refund_request", confidence: 0.8, keywords: []string{"refund", "money back"}},
	{intent: "cancel_request", confidence: 0.8, keywords: []string{"cancel"}},
	{intent: "interested", confidence: 0.75, keywords: []string{"interested", "price", "pricing", "details", "need details", "can you share"}},
}

// KeywordClassifier is a deterministic, offline classifier over a small
// keyword table. It exists so the pipeline runs without provider
// credentials; its confidences are estimates, not model output.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a KeywordClassifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify matches the body against the keyword table. A miss yields the
// "unknown" intent with zero confidence rather than an error.
func (c *KeywordClassifier) Classify(_ context.Context, in Input) (*Result, error) {
	body := strings.ToLower(in.Body)

	intent := "unknown"
	confidence := 0.0
	matched := ""

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(body, kw) {
				intent = rule.intent
				confidence = rule.confidence
				matched = kw
				break
			}
		}
		if matched != "" {
			break
		}
	}

	raw, _ := json.Marshal(map[string]interface{}{
		"classifier": "keyword",
		"intent":     intent,
		"confidence": confidence,
		"matched":    matched,
	})

	return &Result{
		Intent:     intent,
		Confidence: confidence,
		Raw:        raw,
	}, nil
}
