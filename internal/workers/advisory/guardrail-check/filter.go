// internal/workers/advisory/guardrail-check/filter.go
package guardrailcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "advisory-workers/internal/common/errors"
)

const MaxMessageRunes = 5000

// RiskWarning is appended to output that makes performance claims.
const RiskWarning = "\n\n**Important Risk Warning**: All investments carry inherent risks. " +
	"The statements above should not be interpreted as guarantees of future performance.\n"

// OutputSafeText replaces generated text that promotes disallowed activity.
const OutputSafeText = "I can't help with that request. I can help with legitimate investment strategies, " +
	"goal planning, budgeting and tax-efficient saving."

type blockedTopic struct {
	topic   string
	phrases []string
}

// Ordered: the first matching topic names the violation.
var blockedTopics = []blockedTopic{
	{"guaranteed returns", []string{"guaranteed return", "guaranteed returns", "guarantee returns"}},
	{"get rich quick", []string{"get rich quick", "rich quick"}},
	{"insider trading", []string{"insider trading", "insider tip", "insider information"}},
	{"pump and dump", []string{"pump and dump", "pump & dump", "pump n dump"}},
	{"ponzi", []string{"ponzi"}},
	{"pyramid scheme", []string{"pyramid scheme"}},
	{"money laundering", []string{"money laundering", "launder money", "launder my money", "launder cash"}},
	{"tax evasion", []string{"tax evasion", "evade tax", "evade taxes", "hide income from tax"}},
}

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`guarantee.*return`),
	regexp.MustCompile(`100%.*safe`),
	regexp.MustCompile(`can'?t lose`),
	regexp.MustCompile(`risk.?free.*profit`),
	regexp.MustCompile(`double.*money.*fast`),
}

// Output text promoting these is replaced outright; mentions that warn against them pass.
var promotionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(join|invest in|start|recruit for|buy into) (a |the )?(ponzi|pyramid) scheme`),
	regexp.MustCompile(`(use|act on|trade on) (this |the |an )?insider (tip|information)`),
	regexp.MustCompile(`(how to|you can|ways to) (evade|dodge) (tax|taxes)`),
	regexp.MustCompile(`(how to|you can|ways to) launder`),
	regexp.MustCompile(`(start|run|organi[sz]e) a pump (and|&) dump`),
}

// Sanitize strips markup brackets and NUL bytes and caps the message length.
func Sanitize(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', 0:
			return -1
		}
		return r
	}, message)
	cleaned = strings.TrimSpace(cleaned)
	if utf8.RuneCountInString(cleaned) > MaxMessageRunes {
		cleaned = string([]rune(cleaned)[:MaxMessageRunes])
	}
	return cleaned
}

// SafeTextFor is the fixed reply for a blocked topic.
func SafeTextFor(topic string) string {
	return fmt.Sprintf("I cannot provide advice on topics related to '%s'. "+
		"Please ask about legitimate investment strategies and financial planning.", topic)
}

// CheckInput sanitizes message and screens it. It returns the sanitized text, or
// a GUARDRAIL_VIOLATION error whose Message is the safe reply, or INVALID_INPUT
// for an empty message.
func CheckInput(message string) (string, error) {
	cleaned := Sanitize(message)
	if cleaned == "" {
		return "", apperrors.NewInvalidInputError("message", "message is empty")
	}

	lower := strings.ToLower(cleaned)
	for _, bt := range blockedTopics {
		for _, phrase := range bt.phrases {
			if strings.Contains(lower, phrase) {
				return "", apperrors.NewGuardrailViolationError(bt.topic, SafeTextFor(bt.topic))
			}
		}
	}
	return cleaned, nil
}

type Screening struct {
	Text        string `json:"text"`
	Replaced    bool   `json:"replaced"`
	RiskWarning bool   `json:"riskWarning"`
}

// ScreenOutput applies the output-side rules to generated or fallback text. The
// risk warning is appended here; the disclaimer is added later, after it.
func ScreenOutput(text string) Screening {
	lower := strings.ToLower(text)
	for _, p := range promotionPatterns {
		if p.MatchString(lower) {
			return Screening{Text: OutputSafeText, Replaced: true}
		}
	}
	for _, p := range sensitivePatterns {
		if p.MatchString(lower) {
			return Screening{Text: text + RiskWarning, RiskWarning: true}
		}
	}
	return Screening{Text: text}
}
