// Package server exposes style documents and their layer groups over HTTP.
//
// # Routes
//
//	GET    /healthz
//	GET    /styles
//	GET    /styles/{name}
//	PUT    /styles/{name}
//	DELETE /styles/{name}
//	GET    /styles/{name}/groups
//	GET    /styles/{name}/groups/{group}
//	POST   /styles/{name}/groups/{group}           {"layers": [...], "before": ""}
//	POST   /styles/{name}/groups/{group}/layers    {"layer": {...}, "before": ""}
//	PUT    /styles/{name}/groups/{group}/position  {"before": ""}
//	DELETE /styles/{name}/groups/{group}
//	PUT    /styles/{name}/layers/{layer}/group     {"group": "roads"}
//	DELETE /styles/{name}/layers/{layer}/group/{group}
//	GET    /styles/{name}/render.dot
//	GET    /styles/{name}/render.svg
//
// Mutations respond with {"changed": bool, "document": {...}} and only save
// when something changed. Responses carry the document revision in the ETag
// header; sending it back in If-Match makes a request fail with 409 if the
// document changed in between. Layers submitted without an ID get a random
// one.
//
// Errors are JSON objects {"code": "...", "error": "..."} whose HTTP status
// follows the code: invalid input is 400, missing documents, groups or
// layers are 404, conflicts are 409 and an unreachable store is 503.
package server
