// Package person presents a person's raw attribute rows as typed,
// immutable lookups keyed by attribute level (PERSON, TARGET, COHORTS),
// the shape the Comparator Engine and Token Expander read from.
package person

// RowType identifies the kind of attribute row a Record carries.
type RowType string

const (
	RowTypePerson  RowType = "PERSON"
	RowTypeTarget  RowType = "TARGET"
	RowTypeCohorts RowType = "COHORTS"
)

// Record is one raw attribute row as delivered over the person rows
// interface: a type tag, an optional target tag (set only when
// Type == RowTypeTarget), and a bag of named attribute values.
type Record struct {
	Type       RowType
	TargetName string
	Attributes map[string]string
}

// Absent names the state of an attribute that is not present on the
// person. The View getters do not return it; they report absence through
// their boolean result, so a genuinely empty attribute value is never
// confused with a missing one.
const Absent = absentValue("")

type absentValue string

// View exposes typed getters over a person's rows. A View is built once
// per request from the raw Record list and is safe to read concurrently;
// nothing about it mutates after construction.
type View struct {
	person  map[string]string
	targets map[string]map[string]string
	cohorts map[string]struct{}
}

// New builds a View from the raw rows delivered for one person. Multiple
// PERSON rows merge (later rows win); multiple TARGET rows for the same
// target name merge the same way; COHORTS rows union their label sets.
func New(rows []Record) *View {
	v := &View{
		person:  map[string]string{},
		targets: map[string]map[string]string{},
		cohorts: map[string]struct{}{},
	}
	for _, row := range rows {
		switch row.Type {
		case RowTypePerson:
			for k, val := range row.Attributes {
				v.person[k] = val
			}
		case RowTypeTarget:
			bag, ok := v.targets[row.TargetName]
			if !ok {
				bag = map[string]string{}
				v.targets[row.TargetName] = bag
			}
			for k, val := range row.Attributes {
				bag[k] = val
			}
		case RowTypeCohorts:
			for label := range row.Attributes {
				v.cohorts[label] = struct{}{}
			}
		}
	}
	return v
}

// PersonAttr returns the named PERSON-level attribute value, and whether
// it is present. An absent attribute returns ("", false).
func (v *View) PersonAttr(name string) (string, bool) {
	val, ok := v.person[name]
	return val, ok
}

// TargetAttr returns the named attribute from the TARGET row identified
// by targetName, and whether it is present.
func (v *View) TargetAttr(targetName, name string) (string, bool) {
	bag, ok := v.targets[targetName]
	if !ok {
		return "", false
	}
	val, ok := bag[name]
	return val, ok
}

// Cohorts returns the set of cohort labels the person belongs to.
func (v *View) Cohorts() map[string]struct{} {
	return v.cohorts
}

// HasCohort reports whether the person belongs to the given cohort label.
func (v *View) HasCohort(label string) bool {
	_, ok := v.cohorts[label]
	return ok
}
