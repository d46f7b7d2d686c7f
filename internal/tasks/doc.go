// Package tasks implements the long-running club100 operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [Importer.Import] : batch import of free-text and URL lines
//     - URL lines become songs directly, titled by the rest of the line
//     - Other lines are resolved through the [Resolver], taking the first result
//     - All lines run concurrently; optional rate limit via golang.org/x/time/rate
//     - Outcomes are sorted back into input order after a full join
//
//  2. [Generator.Generate] : render submission
//     - Looks up the optional auto-effect in the worker catalog
//     - Injects it after every song without touching the live timeline
//     - Submits to the worker and records a [models.RenderJob]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a slow or absent reader never stalls an import.
// Import steps advance in completion order, not input order.
package tasks
