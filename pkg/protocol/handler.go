package protocol

import (
	"github.com/van-dev/van/internal/project"
	"github.com/van-dev/van/pkg/compiler"
)

// Handler turns one request into one response. It never returns an error:
// failures become {ok: false} responses so a daemon keeps serving.
type Handler func(*Request) *Response

// Compile is the standard handler: run the compiler pipeline, then
// interpolate mock data into the rendered document when provided.
func Compile(req *Request) *Response {
	res, err := compiler.Compile(req.EntryPath, req.Files, compiler.Options{
		AssetPrefix: req.AssetPrefix,
		Debug:       req.Debug,
		FileOrigins: req.FileOrigins,
	})
	if err != nil {
		return ErrorResponse(err)
	}

	html := res.HTML
	if req.MockDataJSON != "" {
		data, err := project.ParseMockJSON(req.MockDataJSON)
		if err != nil {
			return ErrorResponse(err)
		}
		html = project.InterpolateMock(html, data)
	}

	return &Response{OK: true, HTML: html, Assets: res.Assets}
}
