// Package httpsender delivers statementq records to an HTTP collection endpoint.
//
// Each record is POSTed as the request body with Content-Type application/json and the
// session token in the x-authentication header. Any 2xx response acknowledges the
// record; everything else is returned as a *StatusError carrying the "message" field of
// the JSON error body when there is one.
package httpsender
