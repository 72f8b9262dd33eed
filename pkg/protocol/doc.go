// Package protocol implements the JSON envelope spoken over stdin/stdout.
//
// A request carries the entry path and a virtual map of source files; the
// response carries the rendered document and, in separated-assets mode, the
// named CSS/JS assets. One-shot mode reads a single request from the full
// input; daemon mode processes one request per line and answers each with
// one response line, surviving malformed lines with an error response.
//
// # Request
//
//	{
//	  "entry_path": "pages/index.van",
//	  "files": {"pages/index.van": "<template>...</template>"},
//	  "mock_data_json": "{\"title\": \"Home\"}",
//	  "asset_prefix": "/app/assets",
//	  "debug": false,
//	  "file_origins": {"pages/index.van": "src/pages/index.van"}
//	}
//
// # Response
//
//	{"ok": true, "html": "<html>...</html>", "assets": {"van-1a2b3c4d.css": "..."}}
//	{"ok": false, "error": "component not found: card.van"}
package protocol
