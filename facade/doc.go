// Package facade sits between the MCP tool layer and the Kaggle platform
// client. It turns raw client results into JSON-safe payloads, caches
// expensive list/search calls with per-read TTLs, validates request
// parameters, and folds every upstream failure into a small, stable error
// taxonomy. Operations never return Go errors to their callers: each one is
// total and yields a success or error envelope.
package facade
