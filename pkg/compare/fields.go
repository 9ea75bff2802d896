package compare

import "strings"

// FieldKind selects the comparison rule for a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindWeight
	KindDiameter
	KindThickness
	KindGrade
	KindLegend
	KindReference
	KindDate
	KindDieAxis
	KindExact
)

var kindNames = map[FieldKind]string{
	KindText:      "text",
	KindWeight:    "weight",
	KindDiameter:  "diameter",
	KindThickness: "thickness",
	KindGrade:     "grade",
	KindLegend:    "legend",
	KindReference: "reference",
	KindDate:      "date",
	KindDieAxis:   "die_axis",
	KindExact:     "exact",
}

func (kind FieldKind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return "text"
}

// ParseKind reads a kind name as printed by String.
func ParseKind(name string) (FieldKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, true
		}
	}
	return KindText, false
}

// fieldKinds maps known field names to their kind.
var fieldKinds = map[string]FieldKind{
	"weight":          KindWeight,
	"weight_g":        KindWeight,
	"weight_grams":    KindWeight,
	"mass":            KindWeight,
	"diameter":        KindDiameter,
	"diameter_mm":     KindDiameter,
	"size":            KindDiameter,
	"thickness":       KindThickness,
	"thickness_mm":    KindThickness,
	"grade":           KindGrade,
	"condition":       KindGrade,
	"grade_text":      KindGrade,
	"legend":          KindLegend,
	"inscription":     KindLegend,
	"reference":       KindReference,
	"references":      KindReference,
	"catalog_ref":     KindReference,
	"catalog_refs":    KindReference,
	"citation":        KindReference,
	"citations":       KindReference,
	"date":            KindDate,
	"dates":           KindDate,
	"date_range":      KindDate,
	"year":            KindDate,
	"years":           KindDate,
	"issue_date":      KindDate,
	"die_axis":        KindDieAxis,
	"axis":            KindDieAxis,
	"orientation":     KindDieAxis,
	"cert_number":     KindExact,
	"certification":   KindExact,
	"slab_id":         KindExact,
	"inventory":       KindExact,
	"inventory_no":    KindExact,
	"accession":       KindExact,
	"accession_no":    KindExact,
	"lot_number":      KindExact,
	"external_id":     KindExact,
	"catalog_type_id": KindExact,
}

// KindForField returns the comparison kind for a field name. Names are
// matched case-insensitively with spaces and hyphens read as underscores;
// unknown names fall back to a few suffix rules and then to KindText.
func KindForField(field string) FieldKind {
	name := strings.ToLower(strings.TrimSpace(field))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	if kind, ok := fieldKinds[name]; ok {
		return kind
	}
	switch {
	case strings.Contains(name, "legend"), strings.Contains(name, "inscription"):
		return KindLegend
	case strings.Contains(name, "die_axis"):
		return KindDieAxis
	case strings.HasSuffix(name, "_reference"), strings.HasSuffix(name, "_references"):
		return KindReference
	case strings.HasPrefix(name, "cert"):
		return KindExact
	case strings.HasPrefix(name, "weight"):
		return KindWeight
	case strings.HasPrefix(name, "diameter"):
		return KindDiameter
	case strings.HasPrefix(name, "thickness"):
		return KindThickness
	case strings.HasSuffix(name, "_grade"):
		return KindGrade
	case strings.HasSuffix(name, "_date"), strings.HasPrefix(name, "date_"):
		return KindDate
	}
	return KindText
}
