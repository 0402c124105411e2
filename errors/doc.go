// Package errors is documented in taxonomy.go.
package errors
