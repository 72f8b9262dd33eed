package protocol

import (
	"bufio"
	"encoding/json"
	"io"

	verrors "github.com/van-dev/van/internal/errors"
)

// RunOnce reads one request from the entire input and writes one response.
// Decode failures are reported as a response, not an error; the returned
// error covers I/O only.
func RunOnce(r io.Reader, w io.Writer, handle Handler) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxRequestBytes+1))
	if err != nil {
		return verrors.Wrap(verrors.CategoryEnvelope, err, "reading request")
	}
	if len(data) > MaxRequestBytes {
		return writeResponse(w, ErrorResponse(verrors.New(verrors.CategoryEnvelope, "request exceeds %d bytes", MaxRequestBytes)))
	}

	req, err := DecodeRequest(data)
	if err != nil {
		return writeResponse(w, ErrorResponse(err))
	}
	return writeResponse(w, handle(req))
}

// RunDaemon processes one request per input line until EOF, answering each
// with exactly one response line. A malformed or oversized line yields an
// error response and the loop continues; only I/O failures stop it.
func RunDaemon(r io.Reader, w io.Writer, handle Handler) error {
	in := bufio.NewReaderSize(r, scanBufferBytes)
	out := bufio.NewWriter(w)

	for {
		line, tooLong, err := readLine(in)
		if err != nil && err != io.EOF {
			return verrors.Wrap(verrors.CategoryEnvelope, err, "reading requests")
		}
		atEOF := err == io.EOF

		var resp *Response
		switch {
		case tooLong:
			resp = ErrorResponse(verrors.New(verrors.CategoryEnvelope, "request line exceeds %d bytes", MaxRequestBytes))
		case len(trimSpaceBytes(line)) > 0:
			req, derr := DecodeRequest(trimSpaceBytes(line))
			if derr != nil {
				resp = ErrorResponse(derr)
			} else {
				resp = handle(req)
			}
		}

		if resp != nil {
			if werr := writeResponse(out, resp); werr != nil {
				return werr
			}
			if werr := out.Flush(); werr != nil {
				return verrors.Wrap(verrors.CategoryEnvelope, werr, "writing response")
			}
		}
		if atEOF {
			return nil
		}
	}
}

// readLine reads one newline-terminated line, bounded by MaxRequestBytes.
// An over-long line is discarded up to its newline and reported via
// tooLong, so the stream stays synchronized for the next request.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, e := br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > MaxRequestBytes {
				line = nil
				tooLong = true
			}
		}
		switch e {
		case nil:
			return line, tooLong, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			return line, tooLong, io.EOF
		default:
			return nil, tooLong, e
		}
	}
}

func writeResponse(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return verrors.Wrap(verrors.CategoryEnvelope, err, "encoding response")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return verrors.Wrap(verrors.CategoryEnvelope, err, "writing response")
	}
	return nil
}

func trimSpaceBytes(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r' || b[start] == '\n') {
		start++
	}
	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r' || b[end-1] == '\n') {
		end--
	}
	return b[start:end]
}
