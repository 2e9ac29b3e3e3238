// Package http implements the HTTP handlers of the sourcing report service.
// Handlers stay thin: they parse the request, call the report or health
// service and format the response.
//
// # Routes
//
//	GET    /                                   upload page
//	POST   /upload                             create a session from both workbooks
//	GET    /dashboard/{sessionID}              server-rendered dashboard
//	POST   /api/sessions                       create an empty session
//	GET    /api/sessions/{id}                  session files and missing kinds
//	DELETE /api/sessions/{id}
//	PUT    /api/sessions/{id}/files/{kind}     multipart field "file"
//	GET    /api/sessions/{id}/filters
//	GET    /api/sessions/{id}/dashboard        selection in the query string
//	POST   /api/sessions/{id}/dashboard        selection as JSON
//	GET    /api/sessions/{id}/exports/{view}   ?format=xlsx|csv
//	POST   /api/client-log
//
// # Selections
//
// A selection is read from the repeated query keys "orgs" and "months".
// An absent key means every observed value; a key present with only empty
// values ("orgs=") selects nothing:
//
//	/dashboard/abc?orgs=Phoenix+Contact+-+GPN&months=January&months=March
//
// # Error Handling
//
// Errors are written as RFC 7807 problem documents by the shared
// errors.ErrorHandler. Pages show loader errors on the upload form instead.
package http
