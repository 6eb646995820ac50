package terms

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategorySymptom      Category = "SYMPTOM"
	CategoryCondition    Category = "CONDITION"
	CategoryMedication   Category = "MEDICATION"
	CategoryVitalSigns   Category = "VITAL_SIGNS"
	CategoryLabValues    Category = "LAB_VALUES"
	CategoryAnatomy      Category = "ANATOMY"
	CategoryProcedure    Category = "PROCEDURE"
	CategoryAllergy      Category = "ALLERGY"
	CategoryAdverseEvent Category = "ADVERSE_EVENT"
	CategoryClinical     Category = "CLINICAL"
	CategoryFinding      Category = "FINDING"
	CategorySpecialty    Category = "SPECIALTY"
)

var allCategories = []Category{
	CategorySymptom,
	CategoryCondition,
	CategoryMedication,
	CategoryVitalSigns,
	CategoryLabValues,
	CategoryAnatomy,
	CategoryProcedure,
	CategoryAllergy,
	CategoryAdverseEvent,
	CategoryClinical,
	CategoryFinding,
	CategorySpecialty,
}

func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
