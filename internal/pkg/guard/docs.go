// Package guard provides ConstructorGuard, a marker that lets commands, queries and
// value objects reject zero-value instances that bypassed their constructors.
package guard
