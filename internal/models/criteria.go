package models

// Criterion is one of the four named sub-aspects a place category can be
// rated on instead of a single star rating.
type Criterion struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var criteriaByType = map[string][]Criterion{
	"pharmacy": {
		{Key: "assortment", Label: "Assortment"},
		{Key: "prices", Label: "Prices"},
		{Key: "service", Label: "Service"},
		{Key: "accessibility", Label: "Accessibility"},
	},
	"health_center": {
		{Key: "quality", Label: "Service quality"},
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
		{Key: "convenience", Label: "Convenience"},
	},
	"hospital": {
		{Key: "treatment", Label: "Quality of care"},
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
		{Key: "conditions", Label: "Facilities"},
	},
	"dentist": {
		{Key: "treatment", Label: "Quality of care"},
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
		{Key: "painless", Label: "Painless treatment"},
	},
	"lab": {
		{Key: "accuracy", Label: "Test accuracy"},
		{Key: "speed", Label: "Turnaround"},
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
	},
	"clinic": {
		{Key: "quality", Label: "Service quality"},
		{Key: "queues", Label: "Queues"},
		{Key: "staff", Label: "Staff"},
		{Key: "convenience", Label: "Convenience"},
	},
	"healthy_food": {
		{Key: "food_quality", Label: "Food quality"},
		{Key: "prices", Label: "Prices"},
		{Key: "assortment", Label: "Assortment"},
		{Key: "service", Label: "Service"},
	},
	"alcohol": {
		{Key: "assortment", Label: "Assortment"},
		{Key: "prices", Label: "Prices"},
		{Key: "service", Label: "Service"},
		{Key: "accessibility", Label: "Accessibility"},
	},
	"gym": {
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
		{Key: "prices", Label: "Prices"},
		{Key: "convenience", Label: "Convenience"},
	},
	"other_med": {
		{Key: "quality", Label: "Service quality"},
		{Key: "equipment", Label: "Equipment"},
		{Key: "staff", Label: "Staff"},
		{Key: "convenience", Label: "Convenience"},
	},
}

// CriteriaForType returns the four rating criteria for a place category.
// Unknown categories fall back to the generic medical set.
func CriteriaForType(placeType string) []Criterion {
	if c, ok := criteriaByType[placeType]; ok {
		return c
	}
	return criteriaByType["other_med"]
}
