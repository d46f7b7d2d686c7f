// Package models defines the timeline entities exchanged between the CLI, the resolver and the audio worker.
//
// The package contains two categories of types:
//
// 1. Timeline values: plain structs serialized to the worker as JSON
//   - [Song] : a resolved video reference with optional start offset
//   - [Snippet] : a spoken interlude, either text-to-speech or an uploaded clip
//   - [Effect] : a short sound from the worker's catalog
//   - [TrackItem] : tagged union of the three above, the unit of a timeline
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [RenderJob] : a submitted render and its download reference
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
