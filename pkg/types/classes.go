package types

import "sort"

// Record class names accepted by the console.
const (
	ClassBaseModel = "BaseModel"
	ClassUser      = "User"
	ClassState     = "State"
	ClassCity      = "City"
	ClassAmenity   = "Amenity"
	ClassPlace     = "Place"
	ClassReview    = "Review"
)

// registeredClasses is the set of recognized class names.
var registeredClasses = map[string]bool{
	ClassBaseModel: true,
	ClassUser:      true,
	ClassState:     true,
	ClassCity:      true,
	ClassAmenity:   true,
	ClassPlace:     true,
	ClassReview:    true,
}

// IsClass reports whether name is a registered record class.
func IsClass(name string) bool {
	return registeredClasses[name]
}

// ClassNames returns the registered class names in sorted order.
func ClassNames() []string {
	names := make([]string, 0, len(registeredClasses))
	for name := range registeredClasses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
