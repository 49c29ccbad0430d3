package comparator

import (
	"testing"
	"time"
)

func today(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(wireDateLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

// TestS1_DateOfBirthYearOffset mirrors seed scenario S1: a person aged 60
// must not match a "DOB more than 75 years ago" suppression rule.
func TestS1_DateOfBirthYearOffset(t *testing.T) {
	tdy := today(t, "20250425")
	dob := "19650101" // 60 years old on 2025-04-25
	attr := Attribute{Value: dob, Present: true}
	if Match(OpYearLT, "-75", attr, tdy) {
		t.Fatal("expected a 60-year-old to not match Y< -75")
	}
}

func TestS2_ConjunctionRules(t *testing.T) {
	tdy := today(t, "20250425")
	dobAttr := Attribute{Value: "19510101", Present: true} // 74 on 2025-04-25
	if !Match(OpYearGT, "-75", dobAttr, tdy) {
		t.Fatal("expected 74-year-old to match Y> -75")
	}
	postcodeAttr := Attribute{Value: "SW19 2BH", Present: true}
	if !Match(OpStartsWith, "SW19", postcodeAttr, tdy) {
		t.Fatal("expected postcode to match starts_with SW19")
	}
	if Match(OpStartsWith, "NW1", postcodeAttr, tdy) {
		t.Fatal("expected postcode to not match starts_with NW1")
	}
}

func TestS3_TargetDateWindow(t *testing.T) {
	tdy := today(t, "20250101")
	matches := Attribute{Value: "20240601", Present: true}
	if !Match(OpDateGE, "-365", matches, tdy) {
		t.Fatal("expected 2024-06-01 to be within 365 days of 2025-01-01")
	}
	noMatch := Attribute{Value: "20230601", Present: true}
	if Match(OpDateGE, "-365", noMatch, tdy) {
		t.Fatal("expected 2023-06-01 to be outside 365 days of 2025-01-01")
	}
	missing := Attribute{Present: false}
	if Match(OpDateGE, "-365", missing, tdy) {
		t.Fatal("expected missing date attribute without NVL to not match")
	}
}

func TestNVLDefaultsAbsentAttribute(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Present: false}
	if !Match(OpEqual, "X[[NVL:X]]", attr, tdy) {
		t.Fatal("expected NVL default to satisfy the comparator")
	}
}

func TestNVLAbsentWithoutDefaultDoesNotMatch(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Present: false}
	if Match(OpEqual, "X", attr, tdy) {
		t.Fatal("expected absent attribute with no NVL to not match")
	}
}

func TestPresenceOperatorsIgnoreNVL(t *testing.T) {
	tdy := today(t, "20250425")
	absent := Attribute{Present: false}
	if !Match(OpIsNull, "[[NVL:anything]]", absent, tdy) {
		t.Fatal("expected is_null to see through to true absence, ignoring NVL")
	}
}

func TestMemberOf(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Cohorts: map[string]struct{}{"rsv_75_rolling": {}}}
	if !Match(OpMemberOf, "rsv_75_rolling", attr, tdy) {
		t.Fatal("expected MemberOf to match a present cohort")
	}
	if !Match(OpNotaMemberOf, "rsv_clinical", attr, tdy) {
		t.Fatal("expected NotaMemberOf to match an absent cohort")
	}
}

func TestInNotIn(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Value: "RSV", Present: true}
	if !Match(OpIn, "RSV,COVID", attr, tdy) {
		t.Fatal("expected 'in' to match a listed value")
	}
	if Match(OpNotIn, "RSV,COVID", attr, tdy) {
		t.Fatal("expected 'not_in' to reject a listed value")
	}
}

func TestBetweenNumeric(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Value: "50", Present: true}
	if !Match(OpBetween, "0,100", attr, tdy) {
		t.Fatal("expected 50 to be between 0 and 100")
	}
	if Match(OpNotBetween, "0,100", attr, tdy) {
		t.Fatal("expected not_between to fail when value is inside the range")
	}
}

func TestMalformedComparatorDoesNotMatch(t *testing.T) {
	tdy := today(t, "20250425")
	attr := Attribute{Value: "not-a-date", Present: true}
	if Match(OpDateGE, "-365", attr, tdy) {
		t.Fatal("expected unparseable date attribute to not match, not error")
	}
}

func TestKnown(t *testing.T) {
	if !Known(OpMemberOf) {
		t.Fatal("expected MemberOf to be a known operator")
	}
	if Known(Operator("bogus")) {
		t.Fatal("expected an unrecognized operator code to be unknown")
	}
}
