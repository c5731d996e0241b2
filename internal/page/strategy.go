package page

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// StrategyKind names one selector-resolution tactic.
type StrategyKind string

const (
	// StrategyCSS matches a plain CSS selector.
	StrategyCSS StrategyKind = "css"
	// StrategyAttrPrefix matches elements whose attribute starts with Match.
	StrategyAttrPrefix StrategyKind = "attr-prefix"
	// StrategyAttrContains matches elements whose attribute contains Match.
	StrategyAttrContains StrategyKind = "attr-contains"
	// StrategyTextRegex matches elements whose text satisfies Match.
	StrategyTextRegex StrategyKind = "text-regex"
	// StrategyStructural matches by a driver-defined structural probe.
	StrategyStructural StrategyKind = "structural"
)

// Strategy is one entry in an ordered selector fallback chain.
type Strategy struct {
	Kind      StrategyKind
	Attribute string // attr-prefix / attr-contains only
	Match     string
}

// Chain is an ordered list of strategies tried first-to-last.
type Chain []Strategy

// ExtractFirst evaluates the chain in order and returns the first successful
// extraction. A false result means every strategy came up empty; transport
// errors are swallowed into that same result since chain consumers always
// treat "cannot read" as "unknown".
func ExtractFirst(ctx context.Context, h Handle, chain Chain) (string, bool) {
	for _, strategy := range chain {
		text, ok, err := h.ExtractText(ctx, strategy)
		if err != nil || !ok {
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}

var countPattern = regexp.MustCompile(`\d+`)

// ParseParticipantCount pulls the participant total out of a counter label
// such as "12 people" or "(3)". A false result means no digits were found.
func ParseParticipantCount(text string) (int, bool) {
	match := countPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
