package handler

// NewErrorHandler always fails with status and err, for routes that are
// switched off by configuration.
func NewErrorHandler(status int, err error) Handler {
	return &errorHandler{status, err}
}

type errorHandler struct {
	status int
	err    error
}

func (h *errorHandler) Handle(Input) (int, error) {
	return h.status, h.err
}
