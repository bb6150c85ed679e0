// Package common contains shared constants and sentinel errors used across
// pdftranslator client components.
package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName tags every outbound request so backend logs can be
// correlated with client logs.
const RequestIDHeaderName = "X-Request-ID"

// BearerPrefix is prepended to tokens in the Authorization header.
const BearerPrefix = "Bearer "
