// Package kernel provides core domain primitives shared by the customer and
// order models.
//
// The package includes:
//   - Date: a calendar-day value object used for creation, order and delivery dates,
//     with day arithmetic and portable storage/JSON encodings
//
// Values are immutable and safe for concurrent use.
package kernel
