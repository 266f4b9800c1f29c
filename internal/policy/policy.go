// Package policy checks master passwords, recovery e-mail addresses and
// registration forms before an account is created.
package policy

import (
	"regexp"
	"unicode/utf8"
)

// MinLength is the minimum master password length in characters.
const MinLength = 12

// Rule is a single password requirement.
type Rule int

const (
	RuleMinLength Rule = iota + 1
	RuleUppercase
	RuleLowercase
	RuleDigit
	RuleSpecial
)

var ruleMessages = map[Rule]string{
	RuleMinLength: "password must be at least 12 characters long",
	RuleUppercase: "password must contain at least one uppercase letter",
	RuleLowercase: "password must contain at least one lowercase letter",
	RuleDigit:     "password must contain at least one digit",
	RuleSpecial:   "password must contain at least one special character",
}

func (r Rule) String() string {
	if m, ok := ruleMessages[r]; ok {
		return m
	}
	return "unknown rule"
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Validate returns every rule password violates, in a fixed order. An empty
// result means the password is acceptable. Letter and digit classes are
// ASCII; anything outside [A-Za-z0-9] counts as special.
func Validate(password string) []Rule {
	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			special = true
		}
	}

	violations := []Rule{}
	if utf8.RuneCountInString(password) < MinLength {
		violations = append(violations, RuleMinLength)
	}
	if !upper {
		violations = append(violations, RuleUppercase)
	}
	if !lower {
		violations = append(violations, RuleLowercase)
	}
	if !digit {
		violations = append(violations, RuleDigit)
	}
	if !special {
		violations = append(violations, RuleSpecial)
	}
	return violations
}

// ValidateEmail reports whether address looks like local@domain.tld.
func ValidateEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// Level is a coarse password strength rating for display.
type Level int

const (
	LevelNone Level = iota
	LevelVeryWeak
	LevelWeak
	LevelFair
	LevelGood
	LevelStrong
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelVeryWeak:
		return "very weak"
	case LevelWeak:
		return "weak"
	case LevelFair:
		return "fair"
	case LevelGood:
		return "good"
	case LevelStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// Strength rates password by how many rules it violates.
func Strength(password string) Level {
	if password == "" {
		return LevelNone
	}
	switch n := len(Validate(password)); {
	case n >= 4:
		return LevelVeryWeak
	case n == 3:
		return LevelWeak
	case n == 2:
		return LevelFair
	case n == 1:
		return LevelGood
	default:
		return LevelStrong
	}
}
