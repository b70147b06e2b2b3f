// Package app wires the report server: configuration, logging, telemetry,
// services, the chi router and the HTTP server lifecycle.
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /api/report                 full report of a fresh pass
//	GET  /api/report/{section}       one section, ?format=json|csv
//	GET  /api/report/dsd             DSD table and access chart, ?district=...&none=1
//	POST /api/report/dsd/filter      DSD table for {"districts": [...]}
//	GET  /api/report/charts/{chart}  chart series, or PNG with a .png suffix
//	GET  /api/report/export.xlsx     every table as one workbook
//	GET  /maps/                      map images found on disk
//	GET  /maps/{file}                static map images
//	GET  /ws/dsd                     live district filter over WebSocket
//	GET  /metrics                    Prometheus
//
// The WebSocket route sits outside the middleware group because the
// logging and compression writers cannot be hijacked.
//
// # Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Stop
// notifies WebSocket clients, drains the server within
// ServerConfig.ShutdownTimeout and flushes telemetry.
package app
