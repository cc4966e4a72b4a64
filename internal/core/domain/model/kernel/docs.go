// Package kernel provides the identifier shared by every aggregate of the storefront.
//
// UUID wraps github.com/google/uuid and refuses the nil value, so an identifier
// that was never constructed fails Validate instead of reaching the database.
package kernel
