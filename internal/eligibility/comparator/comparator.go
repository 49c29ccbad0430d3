// Package comparator evaluates one IterationRule operator/comparator pair
// against one Person View attribute. It is a tagged union of operator
// kinds plus a single pure evaluator, with no runtime type lookup or
// operator registry.
package comparator

import (
	"strconv"
	"strings"
	"time"
)

// Operator is the tagged union of every comparator operator the Rule
// Config Model can declare. Values are the literal wire strings.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "!="
	OpGreaterThan        Operator = ">"
	OpLessThan           Operator = "<"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThanOrEqual    Operator = "<="

	OpContains        Operator = "contains"
	OpNotContains     Operator = "not_contains"
	OpStartsWith      Operator = "starts_with"
	OpNotStartsWith   Operator = "not_starts_with"
	OpEndsWith        Operator = "ends_with"

	OpIn           Operator = "in"
	OpNotIn        Operator = "not_in"
	OpMemberOf     Operator = "MemberOf"
	OpNotaMemberOf Operator = "NotaMemberOf"

	OpIsNull      Operator = "is_null"
	OpIsNotNull   Operator = "is_not_null"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
	OpIsTrue      Operator = "is_true"
	OpIsFalse     Operator = "is_false"

	OpBetween    Operator = "between"
	OpNotBetween Operator = "not_between"

	OpDateLE Operator = "D<="
	OpDateLT Operator = "D<"
	OpDateGE Operator = "D>="
	OpDateGT Operator = "D>"

	OpWeekLE Operator = "W<="
	OpWeekLT Operator = "W<"
	OpWeekGE Operator = "W>="
	OpWeekGT Operator = "W>"

	OpYearLE Operator = "Y<="
	OpYearLT Operator = "Y<"
	OpYearGE Operator = "Y>="
	OpYearGT Operator = "Y>"
)

// Known reports whether op is one of the operators this engine
// understands. Used by the config model to reject unknown operator codes.
func Known(op Operator) bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual,
		OpContains, OpNotContains, OpStartsWith, OpNotStartsWith, OpEndsWith,
		OpIn, OpNotIn, OpMemberOf, OpNotaMemberOf,
		OpIsNull, OpIsNotNull, OpIsEmpty, OpIsNotEmpty, OpIsTrue, OpIsFalse,
		OpBetween, OpNotBetween,
		OpDateLE, OpDateLT, OpDateGE, OpDateGT,
		OpWeekLE, OpWeekLT, OpWeekGE, OpWeekGT,
		OpYearLE, OpYearLT, OpYearGE, OpYearGT:
		return true
	default:
		return false
	}
}

// Attribute is the input the evaluator reads: the attribute's raw string
// value (Present=false when the Person View had no such attribute), plus
// the person's cohort set for MemberOf/NotaMemberOf.
type Attribute struct {
	Value   string
	Present bool
	Cohorts map[string]struct{}
}

const wireDateLayout = "20060102"

// stripNVL parses and removes a trailing "[[NVL:<literal>]]" suffix from a
// comparator string, returning the remaining comparator and, if present,
// the default literal to substitute for an absent attribute.
func stripNVL(comparator string) (rest string, nvl string, hasNVL bool) {
	const marker = "[[NVL:"
	idx := strings.Index(comparator, marker)
	if idx == -1 {
		return comparator, "", false
	}
	end := strings.Index(comparator[idx:], "]]")
	if end == -1 {
		return comparator, "", false
	}
	literal := comparator[idx+len(marker) : idx+end]
	rest = comparator[:idx] + comparator[idx+end+2:]
	return rest, literal, true
}

// Match evaluates one rule's (operator, comparator) pair against attr,
// relative to today (UTC calendar date). A comparator that fails to parse,
// or an absent attribute with no applicable NVL default, yields false —
// never an error. Presence operators (is_null/is_not_null/is_empty/
// is_not_empty) inspect Present directly and are evaluated before NVL
// substitution, since an NVL default would otherwise mask absence.
func Match(op Operator, comparator string, attr Attribute, today time.Time) bool {
	switch op {
	case OpIsNull:
		return !attr.Present
	case OpIsNotNull:
		return attr.Present
	case OpIsEmpty:
		return !attr.Present || attr.Value == ""
	case OpIsNotEmpty:
		return attr.Present && attr.Value != ""
	case OpIsTrue:
		return attr.Present && strings.EqualFold(attr.Value, "true")
	case OpIsFalse:
		return attr.Present && strings.EqualFold(attr.Value, "false")
	case OpMemberOf:
		return matchMemberOf(comparator, attr.Cohorts, false)
	case OpNotaMemberOf:
		return matchMemberOf(comparator, attr.Cohorts, true)
	}

	rest, nvl, hasNVL := stripNVL(comparator)
	value, present := attr.Value, attr.Present
	if !present {
		if !hasNVL {
			return false
		}
		value, present = nvl, true
	}

	switch op {
	case OpEqual:
		return matchOrdered(value, rest, present, func(c int) bool { return c == 0 })
	case OpNotEqual:
		return matchOrdered(value, rest, present, func(c int) bool { return c != 0 })
	case OpGreaterThan:
		return matchOrdered(value, rest, present, func(c int) bool { return c > 0 })
	case OpLessThan:
		return matchOrdered(value, rest, present, func(c int) bool { return c < 0 })
	case OpGreaterThanOrEqual:
		return matchOrdered(value, rest, present, func(c int) bool { return c >= 0 })
	case OpLessThanOrEqual:
		return matchOrdered(value, rest, present, func(c int) bool { return c <= 0 })
	case OpContains:
		return strings.Contains(value, rest)
	case OpNotContains:
		return !strings.Contains(value, rest)
	case OpStartsWith:
		return strings.HasPrefix(value, rest)
	case OpNotStartsWith:
		return !strings.HasPrefix(value, rest)
	case OpEndsWith:
		return strings.HasSuffix(value, rest)
	case OpIn:
		return matchIn(value, rest, true)
	case OpNotIn:
		return matchIn(value, rest, false)
	case OpBetween:
		return matchBetween(value, rest, true)
	case OpNotBetween:
		return matchBetween(value, rest, false)
	case OpDateLE, OpDateLT, OpDateGE, OpDateGT:
		return matchDateOffset(value, rest, today, op)
	case OpWeekLE, OpWeekLT, OpWeekGE, OpWeekGT:
		return matchWeekOffset(value, rest, today, op)
	case OpYearLE, OpYearLT, OpYearGE, OpYearGT:
		return matchYearOffset(value, rest, today, op)
	default:
		return false
	}
}

// matchOrdered compares value against comparator numerically when both
// parse as numbers, and falls back to lexical string comparison otherwise
// — the same opportunistic-parse rule the operator family description
// specifies for dates and numbers arriving as strings.
func matchOrdered(value, comparator string, present bool, accept func(cmp int) bool) bool {
	if !present {
		return false
	}
	if lv, lerr := strconv.ParseFloat(value, 64); lerr == nil {
		if rv, rerr := strconv.ParseFloat(comparator, 64); rerr == nil {
			switch {
			case lv < rv:
				return accept(-1)
			case lv > rv:
				return accept(1)
			default:
				return accept(0)
			}
		}
	}
	return accept(strings.Compare(value, comparator))
}

func matchIn(value, comparator string, wantMember bool) bool {
	for _, item := range strings.Split(comparator, ",") {
		if strings.TrimSpace(item) == value {
			return wantMember
		}
	}
	return !wantMember
}

func matchMemberOf(comparator string, cohorts map[string]struct{}, negate bool) bool {
	_, ok := cohorts[strings.TrimSpace(comparator)]
	if negate {
		return !ok
	}
	return ok
}

func matchBetween(value, comparator string, wantInside bool) bool {
	parts := strings.SplitN(comparator, ",", 2)
	if len(parts) != 2 {
		return false
	}
	lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	if lv, lerr := strconv.ParseFloat(value, 64); lerr == nil {
		if loV, loErr := strconv.ParseFloat(lo, 64); loErr == nil {
			if hiV, hiErr := strconv.ParseFloat(hi, 64); hiErr == nil {
				inside := lv >= loV && lv <= hiV
				if wantInside {
					return inside
				}
				return !inside
			}
		}
	}
	inside := value >= lo && value <= hi
	if wantInside {
		return inside
	}
	return !inside
}

func matchDateOffset(value, comparator string, today time.Time, op Operator) bool {
	attrDate, err := time.ParseInLocation(wireDateLayout, value, time.UTC)
	if err != nil {
		return false
	}
	offset, err := strconv.Atoi(strings.TrimSpace(comparator))
	if err != nil {
		return false
	}
	boundary := today.AddDate(0, 0, offset)
	return compareDates(attrDate, boundary, op)
}

func matchWeekOffset(value, comparator string, today time.Time, op Operator) bool {
	attrDate, err := time.ParseInLocation(wireDateLayout, value, time.UTC)
	if err != nil {
		return false
	}
	offset, err := strconv.Atoi(strings.TrimSpace(comparator))
	if err != nil {
		return false
	}
	boundary := today.AddDate(0, 0, offset*7)
	return compareDates(attrDate, boundary, op)
}

func matchYearOffset(value, comparator string, today time.Time, op Operator) bool {
	attrDate, err := time.ParseInLocation(wireDateLayout, value, time.UTC)
	if err != nil {
		return false
	}
	offset, err := strconv.Atoi(strings.TrimSpace(comparator))
	if err != nil {
		return false
	}
	boundary := today.AddDate(offset, 0, 0)
	return compareDates(attrDate, boundary, op)
}

// compareDates applies the `<=`/`<`/`>=`/`>` suffix shared by the D/W/Y
// operator families against attrDate and boundary.
func compareDates(attrDate, boundary time.Time, op Operator) bool {
	switch op {
	case OpDateLE, OpWeekLE, OpYearLE:
		return !attrDate.After(boundary)
	case OpDateLT, OpWeekLT, OpYearLT:
		return attrDate.Before(boundary)
	case OpDateGE, OpWeekGE, OpYearGE:
		return !attrDate.Before(boundary)
	case OpDateGT, OpWeekGT, OpYearGT:
		return attrDate.After(boundary)
	default:
		return false
	}
}
