package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

var ErrEmptyBody = errors.New("request body is empty")

// ParamsFromBody decodes the JSON body into T, rejecting unknown fields and
// trailing data.
func ParamsFromBody[T any](c *gin.Context) (T, error) {
	var params T

	if c.Request.Body == nil {
		return params, ErrEmptyBody
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			return params, ErrEmptyBody
		}
		return params, err
	}

	if decoder.More() {
		return params, fmt.Errorf("unexpected data after JSON body")
	}

	return params, nil
}
