package wrapper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogdesk/search-service/shared"
)

func TestNewHTTPResponse(t *testing.T) {
	type Data struct {
		ID string `json:"id"`
	}

	tests := []struct {
		name string
		code int
		params []interface{}
		want *HTTPResponse
	}{
		{
			name: "Testcase #1: response data list with meta",
			code: http.StatusOK,
			params: []interface{}{
				[]Data{{ID: "post-42"}},
				shared.NewMeta(1, 10, 1),
			},
			want: &HTTPResponse{
				Success: true, Code: 200, Message: "Fetch all data",
				Meta: shared.NewMeta(1, 10, 1),
				Data: []Data{{ID: "post-42"}},
			},
		},
		{
			name:   "Testcase #2: error response",
			code:   http.StatusBadRequest,
			params: []interface{}{errors.New("limit out of range")},
			want: &HTTPResponse{
				Success: false, Code: 400, Message: "Fetch all data",
				Errors: map[string]string{"detail": "limit out of range"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHTTPResponse(tt.code, "Fetch all data", tt.params...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPResponseJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.NoError(t, NewHTTPResponse(http.StatusOK, "ok").JSON(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}
