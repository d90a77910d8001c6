// Package builtin provides the functions check files can call inside
// {{...}} placeholders.
//
// Available functions:
//   - now(): current UTC time in RFC 3339
//   - date(layout): current UTC date, "2006-01-02" by default
//   - timestamp(): current Unix timestamp
//   - urlEncode(value), urlDecode(value): query escaping
//   - base64(value): base64 encoding, e.g. for a basic auth header
//   - lower(value), upper(value), trim(value)
//   - runId(): a UUID that stays the same for the whole run
package builtin
