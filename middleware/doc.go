// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware holds the HTTP plumbing shared by the VoteMeMaybe
handlers: request logging, CORS and JSON encoding.

# Request Logging

Every route in the router is wrapped:

	mux.HandleFunc("POST /proposals/{id}/votes", middleware.WithLogging(voteHandler.CastVote))

Each request gets an X-Request-ID (a client-supplied one is kept) that is
echoed in the response and attached to both log records. The completion
record carries the status and byte count; 5xx responses, such as a 502 when
both the contract and the database refused a vote, log at warn.

# CORS

The server wraps the whole mux:

	handler := middleware.CORS(cfg.CORSOrigins)(mux)

With no configured origins any browser origin may call the API. Otherwise
only the listed origins get CORS headers and other preflights are answered
403. Only GET, POST and OPTIONS are advertised since the API has no other
methods.

# JSON

Request bodies hold one JSON value of at most MaxBodyBytes:

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil { ... }

Larger bodies fail with ErrBodyTooLarge. Responses go through JSONResponse,
errors through ErrorResponse, which writes a models.ErrorResponse.

# Client Address

GetClientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
the connection's address. It is logged, never trusted for identity; votes
are keyed by wallet address.
*/
package middleware
