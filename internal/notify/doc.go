// Package notify delivers outbound webhook notifications when a new call
// sheet has been filed.
package notify
