// Package validation holds the field-level rules shared by the customer and
// order models and by the controllers.
//
// Checks run on a shared go-playground validator with a few custom tags for
// the name, phone, postal-code and mailbox patterns. Every function is free of
// I/O and safe to call from any goroutine. Single-field checks return a bool;
// the aggregate validators ValidateCustomer and ValidateOrder return the
// ordered list of human-readable violations, where an empty list means the
// input is valid.
//
// Bounds are passed explicitly. The package exports the default ones
// (NameLength, CityLength, AddressLength, AmountRange, WeightRange, VolumeRange):
//
//	if !validation.IsValidName(input, validation.NameLength) {
//	    // reject
//	}
package validation
