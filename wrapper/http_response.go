package wrapper

import (
	"encoding/json"
	"net/http"

	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
)

// HTTPResponse default http response format
type HTTPResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// NewHTTPResponse for create common response
func NewHTTPResponse(code int, message string, params ...interface{}) *HTTPResponse {
	commonResponse := new(HTTPResponse)

	for _, param := range params {
		switch val := param.(type) {
		case *shared.Meta, shared.Meta:
			commonResponse.Meta = val
		case helper.MultiError:
			commonResponse.Errors = val.ToMap()
		case error:
			commonResponse.Errors = helper.NewMultiError().Append("detail", val).ToMap()
		default:
			commonResponse.Data = param
		}
	}

	if code < http.StatusBadRequest {
		commonResponse.Success = true
	}
	commonResponse.Code = code
	commonResponse.Message = message
	return commonResponse
}

// JSON for set http JSON response (Content-Type: application/json)
func (resp *HTTPResponse) JSON(w http.ResponseWriter) error {
	w.Header().Set(helper.HeaderContentType, helper.HeaderMIMEApplicationJSON)
	w.WriteHeader(resp.Code)
	return json.NewEncoder(w).Encode(resp)
}
