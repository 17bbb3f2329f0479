// Package memory provides process-local implementations of the repository
// ports. They back STORE_DRIVER=memory and the HTTP tests; data is lost on
// restart.
package memory
