/*
Package observability records tool call metrics and structured call logs.

Tools instruments every MCP tool handler through a middleware: a call
counter labelled by tool and outcome, a latency histogram, and one log line per
call carrying a call_id so a caller can match request and response in the
logs. Outcomes are "success", "error" (a failure reported to the caller as
text) and "fault" (a protocol-level error).
*/
package observability
