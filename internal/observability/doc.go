// Package observability records what the client did in a JSON Lines event
// log and derives metrics and reminders from it on demand.
package observability
