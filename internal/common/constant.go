// Package common contains shared constants and sentinel errors used across
// paylink components.
package common

// AuthorizationHeaderName is the HTTP header carrying the caller's bearer
// token on inbound requests.
const AuthorizationHeaderName = "Authorization"
