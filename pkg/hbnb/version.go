// Package hbnb holds build metadata for the hbnb console.
package hbnb

// Version is the released version of the hbnb console.
const Version = "0.1.0"
