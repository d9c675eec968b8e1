// Package entities defines the data model shared by policies and hosts:
// admission requests, validation responses, JSON Patch operations,
// capability payloads and the records exchanged across the sandbox boundary.
//
// Types here serve dual purpose: domain entities AND wire format DTOs.
// Admission documents use JSON field names; capability and log payloads
// reuse the same names through the CBOR envelope.
package entities
