package errx

import "net/http"

// WrapCollaborator maps a failed external collaborator call (model, search
// index) to the unified AppError type. The wrapped message is safe to log
// but must not be surfaced to the end user verbatim.
func WrapCollaborator(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, CollaboratorUnavailableMessage)
}

// WrapMalformed marks collaborator output that could not be decoded into the
// expected structure. Callers recover from it via a documented fallback
// value rather than propagating it.
func WrapMalformed(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, MalformedOutputMessage)
}
