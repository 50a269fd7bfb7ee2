// Package model holds the tracker's domain entities and the request and
// response payloads exchanged over HTTP.
package model
