// Package customer provides the Customer entity of the logistics core.
//
// The package includes:
//   - Customer: a client record with single-field validated setters, change
//     listeners and whole-record validation before persistence
//   - Status: the closed set of account states (Active, Inactive, Suspended)
//   - SearchCriteria and Sort: the filter and ordering rules shared by the
//     repositories and the controllers
//
// Persistence lives behind ports.CustomerRepository; a Customer carries its
// identity (UnsavedID until the first save) but no connection.
package customer
