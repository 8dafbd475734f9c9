package webservices

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/simon04/OpenCartonaut/mapcss"
)

type syntaxErrorResponse struct {
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Context string `json:"context,omitempty"`
}

// writeStyleError reports MapCSS syntax errors as 400 with their position, and anything else as a 500.
func writeStyleError(w http.ResponseWriter, r *http.Request, logger *logpkg.Logger, err error) {
	var syntaxErr *mapcss.SyntaxError
	if errors.As(errorsx.Cause(err), &syntaxErr) {
		logger.Debug("rejected MapCSS: %s", syntaxErr)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, syntaxErrorResponse{
			Message: syntaxErr.Message,
			Offset:  syntaxErr.Offset,
			Line:    syntaxErr.Line,
			Column:  syntaxErr.Column,
			Context: syntaxErr.Context,
		})
		return
	}

	errorsx.HTTPJSONError(w, logger, errorsx.Wrap(err), http.StatusInternalServerError)
}
