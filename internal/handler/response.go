package handler

import (
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/gin-gonic/gin"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// writeProto writes m in its canonical JSON form.
func writeProto(c *gin.Context, status int, m proto.Message) {
	data, err := protojson.Marshal(m)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Failed to encode response", err.Error())
		return
	}
	c.Data(status, "application/json", data)
}

// writeConnectError translates a service error to an HTTP error response.
func writeConnectError(c *gin.Context, err error) {
	code := connect.CodeUnknown
	msg := err.Error()
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		code = cerr.Code()
		msg = cerr.Message()
	}
	writeError(c, httpStatus(code), strings.ToUpper(code.String()), msg, "")
}

func httpStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeFailedPrecondition:
		return http.StatusUnprocessableEntity
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented
	case connect.CodeCanceled:
		return 499
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
