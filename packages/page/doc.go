// Package page loads the HTML pages that checks run against.
//
// A source is either an http(s) URL, fetched with a colly collector, or a
// path to a local HTML fixture. Optional features:
//   - Default headers, cookies and user agent for authenticated admin pages
//   - Proxy and TLS verification settings
//   - A shared rate limit across concurrent loads
//   - A gjson path that pulls the HTML out of a JSON envelope
package page
