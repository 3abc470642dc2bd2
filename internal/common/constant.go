// Package common contains shared constants, sentinel errors and the typed
// error used across the Fintab server layers.
package common

// SessionCookieName is the cookie that carries the session token on every
// browser request.
const SessionCookieName = "session_id"

// ClearedSessionCookieValue replaces the token when the cookie is cleared.
const ClearedSessionCookieValue = "invalid"

// ProductionEnvironment enables secure-only cookies.
const ProductionEnvironment = "production"
