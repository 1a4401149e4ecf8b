// Package utils holds small helpers shared by the transport and storage
// layers: JSON responses, the resty client wrapper and id generation.
package utils
