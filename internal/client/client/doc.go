// Package client talks to the gridplanner server.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by client services: authentication, Ping,
//     containers, single-row item writes, shares, comments and object
//     storage URLs.
//  2. GRPCClient, a gRPC implementation that attaches the access token to
//     every call, refreshes an expired token once and retries, and maps
//     status codes onto the sentinel errors of package common.
//  3. InitDatabase and RunMigrations for the local SQLite mirror.
//
// GRPCClient satisfies the Data Store interfaces of the reconcile, snapshot
// and autosave packages, so the same connection drives every grid flow.
package client
