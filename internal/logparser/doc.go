// Package logparser turns a raw superstep log into an initially-active node
// set and an ordered list of messages.
//
// # Format
//
// The log is line oriented and otherwise unstructured. A line is classified
// only by the marker it contains:
//
//	... Initial nodes,1,2,7
//	... Message Passed,1,3,0
//
// Everything after the marker (minus one leading comma) is the payload.
// Lines without a marker are ignored, so arbitrary log noise is fine.
//
// # Error Handling
//
// Malformed records never abort a load. Each one is reported as a
// *ParseError warning and skipped, so a single bad field costs exactly one
// record. Only I/O failures and context cancellation are returned as errors.
package logparser
