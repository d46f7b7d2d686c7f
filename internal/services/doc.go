// Package services defines the [Provider] interface for song search backends and implements it for the
// YouTube Data API and the self-hosted audio worker.
//
// # Provider Interface
//
// The resolver races two providers; each returns candidate songs for a free-text query.
//
// # YouTube Data API Implementation
//
// [YouTubeProvider] calls search.list with part=snippet, type=video and five results.
// It authenticates with an API key, or with an OAuth2 access token through [oauth2.StaticTokenSource].
// Quota exhaustion (reason quotaExceeded and friends) is classified as [shared.ErrProviderQuotaExceeded].
//
// # Worker Implementation
//
// [WorkerClient] wraps the worker's JSON routes:
//   - POST /ytsearch : scraper-backed search, used by [WorkerProvider]
//   - GET /effects, GET /effects/{id}/data : effect catalog
//   - POST /generate, GET /download/{jobId}, GET /jobs : rendering
//   - POST /cache/clear : drop downloaded audio
//
// # Decoding
//
// Each provider validates raw items through an explicit decode step ([DecodeYouTubeItem], [DecodeWorkerSong])
// returning [Decoded]. Invalid items are dropped, never surfaced as errors.
//
// # Error Handling
//
// Providers use typed errors from shared package:
//   - [shared.ErrProviderUnavailable] : provider not configured
//   - [shared.ErrProviderQuotaExceeded] : API quota spent; wraps ErrProviderUnavailable
//   - [shared.ErrProviderRequestFailed] : transport failure or non-2xx response
//   - [shared.ErrRenderSubmissionFailed] : POST /generate failed
package services
