package http

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
)

func TestEnsureStatusOK(t *testing.T) {
	tests := []struct {
		status  int
		wantErr string
	}{
		{status: http.StatusOK},
		{status: http.StatusNoContent, wantErr: "unexpected status code: 204 No Content"},
		{status: http.StatusNotFound, wantErr: "unexpected status code: 404 Not Found"},
		{status: http.StatusBadGateway, wantErr: "unexpected status code: 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := EnsureStatusOK(&http.Response{StatusCode: tt.status})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("EnsureStatusOK() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("EnsureStatusOK() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

// trackingReadCloser records whether Close was called
type trackingReadCloser struct {
	*bytes.Reader
	closed bool
}

func (trc *trackingReadCloser) Close() error {
	trc.closed = true
	return nil
}

func TestDecodeJSONResponse_ClosesBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "success", status: http.StatusOK, body: `[{"id": "post"}]`},
		{name: "bad status", status: http.StatusInternalServerError, body: `oops`},
		{name: "bad json", status: http.StatusOK, body: `[{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &trackingReadCloser{Reader: bytes.NewReader([]byte(tt.body))}

			var target []map[string]any
			_ = DecodeJSONResponse(&http.Response{StatusCode: tt.status, Body: tracker}, &target)

			if !tracker.closed {
				t.Error("DecodeJSONResponse() should always close the response body")
			}
		})
	}
}
