// Package types defines the record model, the class registry, the Store
// interface, configuration, and the standard errors for the hbnb console.
package types
