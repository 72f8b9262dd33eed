package protocol

import (
	"encoding/json"

	verrors "github.com/van-dev/van/internal/errors"
)

// Request is one compile job.
type Request struct {
	// EntryPath is the page entry inside Files.
	EntryPath string `json:"entry_path"`

	// Files maps POSIX-style paths to source contents.
	Files map[string]string `json:"files"`

	// MockDataJSON, when set, is a JSON object interpolated into resolved
	// placeholders after rendering.
	MockDataJSON string `json:"mock_data_json,omitempty"`

	// AssetPrefix switches the response to separated assets linked under
	// this URL prefix.
	AssetPrefix string `json:"asset_prefix,omitempty"`

	// Debug adds component and slot boundary comments to the HTML.
	Debug bool `json:"debug,omitempty"`

	// FileOrigins labels files in debug comments.
	FileOrigins map[string]string `json:"file_origins,omitempty"`
}

// Response is the result of one compile job.
type Response struct {
	OK     bool              `json:"ok"`
	HTML   string            `json:"html,omitempty"`
	Assets map[string]string `json:"assets,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// DecodeRequest parses and validates one request document.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, verrors.Wrap(verrors.CategoryEnvelope, err, "invalid request")
	}
	if req.EntryPath == "" {
		return nil, verrors.New(verrors.CategoryEnvelope, "missing entry_path")
	}
	if len(req.Files) == 0 {
		return nil, verrors.New(verrors.CategoryEnvelope, "missing files")
	}
	return &req, nil
}

// ErrorResponse wraps an error into a failed response.
func ErrorResponse(err error) *Response {
	return &Response{Error: err.Error()}
}
