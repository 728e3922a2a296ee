// Package rpc serves the scoped JSON-RPC surface. Every call carries a
// bearer token; each method requires exactly one scope from the grant.
package rpc

import (
	"encoding/json"

	dErrors "scp-gateway/pkg/domain-errors"
)

// Version is the only accepted jsonrpc member value.
const Version = "2.0"

// Error numbers carried in the error envelope.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeUnauthorized   = -32001
	CodeForbiddenScope = -32003
	CodeNotFound       = -32004
)

// Request is an inbound call. ID is kept raw so it is echoed unchanged.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the envelope returned for every call, success or failure.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the error member of a failed Response.
type ErrorObject struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func success(id json.RawMessage, result any) Response {
	if result == nil {
		result = json.RawMessage("null")
	}
	return Response{JSONRPC: Version, ID: normalizeID(id), Result: result}
}

func failure(id json.RawMessage, obj *ErrorObject) Response {
	return Response{JSONRPC: Version, ID: normalizeID(id), Error: obj}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

// errorObject maps a tagged error onto its envelope number. Only the code
// decides the number; internal failures never carry their detail.
func errorObject(err error) *ErrorObject {
	de, _ := dErrors.As(err)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized, dErrors.CodeMalformedToken,
		dErrors.CodeInvalidSignature, dErrors.CodeTokenExpired:
		return &ErrorObject{Code: CodeUnauthorized, Message: "unauthorized"}
	case dErrors.CodeMethodNotFound:
		return &ErrorObject{Code: CodeMethodNotFound, Message: "method_not_found"}
	case dErrors.CodeForbiddenScope:
		obj := &ErrorObject{Code: CodeForbiddenScope, Message: "forbidden_scope"}
		if de != nil && de.Data != nil {
			obj.Data = de.Data
		}
		return obj
	case dErrors.CodeInvalidParams, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		obj := &ErrorObject{Code: CodeInvalidParams, Message: "invalid_params"}
		if de != nil && de.Message != "" {
			obj.Data = map[string]any{"detail": de.Message}
		}
		return obj
	case dErrors.CodeInvalidRequest:
		return &ErrorObject{Code: CodeInvalidRequest, Message: "invalid_request"}
	case dErrors.CodeNotFound:
		return &ErrorObject{Code: CodeNotFound, Message: "not_found"}
	default:
		return &ErrorObject{Code: CodeInternal, Message: "internal_error"}
	}
}
