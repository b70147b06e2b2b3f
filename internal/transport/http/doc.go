// Package http implements the HTTP presentation boundary of the report.
//
// Handlers stay thin: they parse and validate the request, call the report
// service (one fresh pass per request) and render the result. Successful
// JSON responses use the envelope
//
//	{"status": "success", "data": ..., "count": ...}
//
// and every failure is an RFC 7807 problem document written by the shared
// error handler. Tables are also available as CSV, the whole report as an
// xlsx workbook and every chart as a PNG image.
package http
