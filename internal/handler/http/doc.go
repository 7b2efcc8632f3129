// Package http implements the REST surface of the blind relay.
//
// The relay stores opaque zero-knowledge payloads per owner. Every blob
// route requires a bearer token whose subject names the owner; the relay
// never sees a key or a plaintext. Tracing, access logging, authentication
// and body limits are handled here before requests reach the service layer.
package http
