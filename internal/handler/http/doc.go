// Package http implements the HTTP transport layer of the application.
//
// It wires the chi routes of the secret API and the demo user API, decodes
// request bodies and maps service and store errors onto status codes.
// Request tracing, access logging, compression and timeouts are handled by
// middleware before requests reach the service layer.
package http
