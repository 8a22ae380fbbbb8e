package transport

import (
	"errors"
	"net/http"
	"strconv"

	"ski-shop-inventory/internal/middleware"
)

// Paging defaults shared by the list endpoints.
const (
	defaultPage = 0
	defaultSize = 20
)

// queryInt parses an integer query parameter, returning def when the
// parameter is absent or not a number.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// pageAndSize parses the page/size parameters, clamping to page>=0, size>=1.
func pageAndSize(r *http.Request) (page, size int) {
	page = queryInt(r, "page", defaultPage)
	size = queryInt(r, "size", defaultSize)
	if page < 0 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultSize
	}
	return page, size
}

// respondRequestError maps a DecodeAndValidate failure to its status code:
// 422 for an undecodable body, 400 for field validation failures.
func respondRequestError(w http.ResponseWriter, err error) {
	if errors.Is(err, middleware.ErrMalformedBody) {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request")
}
