// Package feed implements the unified task materialization and lifecycle
// engine: source readers that project heterogeneous business records
// (manual tasks, diagnostics, rentals, payments, appointments, CNAM bons,
// sales) into one normalized Task shape, an aggregator that fans out to
// the readers for a time window and merges their results into a single
// ordered feed with summary statistics, and a lifecycle controller that
// applies per-type completion and notes-edit rules.
//
// Aggregation is read-only and stateless; derived statuses (including the
// OVERDUE overlay) are recomputed against the caller's clock on every
// request and must never be cached.
package feed
