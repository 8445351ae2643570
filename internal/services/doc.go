// Package services holds the session layer between the HTTP transport and
// the drilling-data pipeline. DatasetService owns the mutable per-session
// state and keeps the derived quality report and decimated points consistent
// with every mutation.
package services
