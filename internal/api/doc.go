// Package api implements the slotlogic REST API.
//
// # Architecture
//
//	┌──────────┐     ┌─────────────┐     ┌──────────────┐
//	│  Client  │────▶│ chi router  │────▶│ preset.Store │
//	└──────────┘     │ middleware  │     │  + Registry  │
//	                 └─────────────┘     └──────┬───────┘
//	                                            │ writes
//	                                            ▼
//	                                     configured Sink
//	                                (sqlite / mqtt / influx)
//
// # Endpoints
//
//	GET  /api/v1/health                                  server status
//	GET  /api/v1/presets                                 list loaded presets
//	GET  /api/v1/presets/{slug}                          preset with tree + bindings
//	GET  /api/v1/presets/{slug}/slots/{label}            resolve a slot
//	PUT  /api/v1/presets/{slug}/slots/{label}            typed write
//	POST /api/v1/presets/{slug}/slots/{label}/randomize  random draw
//	POST /api/v1/presets/{slug}/apply                    batch apply
//	GET  /api/v1/presets/{slug}/values                   persisted sink state
//
// # Error Mapping
//
// Unknown presets and slots map to 404. Validation failures (non-finite
// values, bad colour arity, kind mismatches) map to 400 with the wrapped
// error message. Everything else is a 500 with a generic message.
//
// # Middleware
//
// Every request passes through request-ID generation, structured request
// logging, panic recovery, CORS, and a 1 MB body size limit.
package api
