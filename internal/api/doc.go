// Package api holds the wire DTOs and request-facing services shared by the
// HTTP surface and the IPC socket.
package api
