package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"milk-backend/services"
	"milk-backend/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service error kinds onto HTTP statuses. Unknown
// errors are 500 with the message passed through.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateAccount):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrMissingPassword),
		errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}
	utils.RespondWithError(c, status, err.Error())
}

// looseString accepts a JSON string, number or boolean. Older frontends send
// guest counts and similar fields either way.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = ""
	case string:
		*s = looseString(v)
	case json.Number:
		*s = looseString(v.String())
	case bool:
		*s = looseString(strconv.FormatBool(v))
	default:
		return fmt.Errorf("unsupported value %s", b)
	}
	return nil
}
