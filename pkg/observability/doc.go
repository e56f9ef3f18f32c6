/*
Package observability provides tools for monitoring sitepass.

It includes Prometheus collectors for conversation transitions, induction
classifications, window checks and record store operations, plus lifecycle
hooks that feed them and write audit log lines.
*/
package observability
