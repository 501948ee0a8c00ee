// Package policy holds the reminder and escalation cadence applied to
// overdue items.
package policy
