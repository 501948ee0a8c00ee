// Package approval implements the approval state machine of content items.
//
// Every command loads the item inside its critical section, validates the
// transition against the model transition table, applies versions,
// comments, assignments and the audit entry to a private copy and saves it
// once. Notifications produced by a command are delivered after the item
// lock is released.
package approval
