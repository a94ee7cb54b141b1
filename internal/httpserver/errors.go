package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vegshop/internal/domain"
	"vegshop/internal/service/cart"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Item      string `json:"item,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Got       string `json:"got,omitempty"`
	Requested string `json:"requested,omitempty"`
	Available string `json:"available,omitempty"`
	State     string `json:"state,omitempty"`
}

var errorStatus = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrMalformedQuantity, http.StatusBadRequest, "malformed_quantity"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrInvalidPhone, http.StatusBadRequest, "invalid_phone"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{domain.ErrUnitMismatch, http.StatusUnprocessableEntity, "unit_mismatch"},
	{domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{domain.ErrDuplicateItem, http.StatusConflict, "duplicate_item"},
	{cart.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress"},
	{domain.ErrUnknownItem, http.StatusNotFound, "unknown_item"},
	{domain.ErrUnknownLine, http.StatusNotFound, "unknown_line"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrPersistence, http.StatusInternalServerError, "persistence_failure"},
}

func classify(err error) (int, errorBody) {
	body := errorBody{Error: "internal", Message: err.Error()}
	status := http.StatusInternalServerError
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			status, body.Error = e.status, e.code
			break
		}
	}

	var mismatch *domain.UnitMismatchError
	if errors.As(err, &mismatch) {
		body.Item = mismatch.Item
		body.Expected = unitLabel(mismatch.Expected)
		body.Got = unitLabel(mismatch.Got)
	}
	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		body.Item = short.Item
		body.Requested = domain.FormatQuantity(short.Requested)
		body.Available = domain.FormatQuantity(short.Available)
	}
	if status == http.StatusInternalServerError {
		body.Message = http.StatusText(status)
	}
	return status, body
}

func writeError(c *gin.Context, err error) {
	status, body := classify(err)
	_ = c.Error(err)
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_input", Message: msg})
}

func unitLabel(u domain.Unit) string {
	if u == domain.UnitUnspecified {
		return "unspecified"
	}
	return string(u)
}
