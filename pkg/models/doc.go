// Package models holds the Metal Archives records and the rules that decode
// them from raw page payloads.
//
// Two payload families exist. The AJAX list endpoints answer with a
// DataTables envelope:
//
//	{"error": "", "iTotalRecords": 1234, "iTotalDisplayRecords": 1234,
//	 "sEcho": 1, "aaData": [["<a href=\"...\">Band</a>", "..."], ...]}
//
// whose cells are small HTML fragments. The news pages are plain HTML.
// Each entity kind pairs its decode rule with the URL template used to
// request its pages; see the *Kind types.
package models
