// Package progress tracks how far a bulk operation has come. The tracker
// travels in the context so the worker pool can report without knowing who
// is listening.
package progress
