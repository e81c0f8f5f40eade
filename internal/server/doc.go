// Package server hosts astlens viewers over HTTP.
//
// Each browser tab owns a session: a viewer.Viewer drawing onto an SVG
// surface. The page forwards pointer, wheel and resize events to the
// session and swaps in the new frame whenever the response says a redraw
// happened.
//
// # Routes
//
//	GET    /                                  viewer page
//	GET    /healthz                           {"status":"ok","sessions":n}
//	GET    /api/analysis                      preloaded document, 204 if none
//	POST   /api/sessions                      analysis JSON → session state
//	GET    /api/sessions/{id}                 session state
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/frame.svg       current frame
//	POST   /api/sessions/{id}/events          interact.Event → state
//	POST   /api/sessions/{id}/commands/{cmd}  fit, zoom-in, zoom-out
//	POST   /api/sessions/{id}/resize          {"width","height","pixelRatio"}
//	GET    /api/sessions/{id}/export/{format} current view as svg, png, pdf, ...
//
// Requests on one session are serialized by the session's mutex; sessions
// share nothing but the artifact cache, where each one has its own key
// prefix. Idle sessions expire after Config.SessionTTL.
//
// Errors are JSON {"error", "code"} with the status derived from the
// pkg/errors code: INVALID_* is 400, *NOT_FOUND is 404.
package server
