package facade

// Response is the envelope every facade operation returns. Exactly one of
// the two shapes is produced:
//
//	success: {"status": "success", ...operation payload}
//	error:   {"error": message, "error_type": kind}
type Response map[string]any

// Success wraps an operation payload in a success envelope.
func Success(payload map[string]any) Response {
	resp := Response{"status": "success"}
	for k, v := range payload {
		resp[k] = v
	}
	return resp
}

// Failure builds an error envelope for the given kind and message.
func Failure(kind Kind, message string) Response {
	return Response{
		"error":      message,
		"error_type": string(kind),
	}
}

// IsError reports whether the envelope carries an error.
func (r Response) IsError() bool {
	_, ok := r["error"]
	return ok
}

// ErrorMessage returns the error message, or empty for success envelopes.
func (r Response) ErrorMessage() string {
	if msg, ok := r["error"].(string); ok {
		return msg
	}
	return ""
}

// ErrorKind returns the error_type, or empty for success envelopes.
func (r Response) ErrorKind() Kind {
	if kind, ok := r["error_type"].(string); ok {
		return Kind(kind)
	}
	return ""
}
