// Package handler exposes the query service and the loaded schema as a
// plain JSON API:
//
//	GET  /api/healthz
//	GET  /api/tables
//	GET  /api/tables/:table
//	POST /api/query/:table/:method           compile and run
//	POST /api/query/:table/:method/compile   compile only
//
// Query bodies use the same fields as the RPC request minus table and
// method, which come from the path.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Runner compiles, and optionally executes, one request message.
type Runner interface {
	Run(ctx context.Context, msg *structpb.Struct, execute bool) (*structpb.Struct, error)
}

// Query handles the query endpoints.
type Query struct {
	runner Runner
}

func NewQuery(runner Runner) Query {
	return Query{runner: runner}
}

// Compile handles POST /:table/:method/compile
func (q Query) Compile(c *gin.Context) {
	q.run(c, false)
}

// Execute handles POST /:table/:method
func (q Query) Execute(c *gin.Context) {
	q.run(c, true)
}

func (q Query) run(c *gin.Context, execute bool) {
	msg, err := readBody(c.Request)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object", err.Error())
		return
	}
	msg.Fields["table"] = structpb.NewStringValue(c.Param("table"))
	msg.Fields["method"] = structpb.NewStringValue(c.Param("method"))

	out, err := q.runner.Run(c.Request.Context(), msg, execute)
	if err != nil {
		writeConnectError(c, err)
		return
	}
	writeProto(c, http.StatusOK, out)
}

func readBody(r *http.Request) (*structpb.Struct, error) {
	msg := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return msg, nil
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	if msg.Fields == nil {
		msg.Fields = map[string]*structpb.Value{}
	}
	return msg, nil
}

// Mount handlers to router group.
func (q Query) Mount(router *gin.RouterGroup) {
	router.POST("/:table/:method", q.Execute)
	router.POST("/:table/:method/compile", q.Compile)
}
