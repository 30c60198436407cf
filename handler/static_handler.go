package handler

import "strconv"

// NewStaticHandler serves content that is fixed for the life of the process.
func NewStaticHandler(content []byte, contentType string, status int) Handler {
	return &staticHandler{content, contentType, status}
}

type staticHandler struct {
	content     []byte
	contentType string
	status      int
}

func (h *staticHandler) Handle(i Input) (int, error) {
	i.Response.Header().Set("Content-Type", h.contentType)
	i.Response.Header().Set("Content-Length", strconv.Itoa(len(h.content)))
	i.Response.WriteHeader(h.status)
	_, err := i.Response.Write(h.content)
	return h.status, err
}
