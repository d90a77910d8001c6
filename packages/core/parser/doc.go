// Package parser reads adminspec check files.
//
// A check file is YAML. It names a set of pages (a URL or a local HTML
// fixture each) and the checks to run against every page:
//
//	name: Admin smoke
//	variables:
//	  baseUrl: http://localhost:8000
//	pages:
//	  - name: dashboard
//	    source: "{{baseUrl}}/admin/dashboard"
//	    checks:
//	      - menuExists
//	      - menuItemExists: Reports
//	      - menuItemInGroupExists: { item: Reports, group: Analytics }
//
// Files are validated in two passes: the embedded JSON Schema checks the
// structure, then the Kinds table checks that every check names a known
// kind with its required arguments. All problems are collected and
// returned together in a *ValidationError.
package parser
