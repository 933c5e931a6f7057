// Package response writes the insights API envelope.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

// Meta is the free-form metadata block, e.g. source and processing_time_ms.
type Meta map[string]interface{}

// Envelope is the body of every JSON response. Exactly one of Data or Error
// is set.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
	Meta  Meta             `json:"meta,omitempty"`
}

// JSON writes data with status. The first non-empty meta is attached.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	write(c, status, Envelope{Data: data, Meta: firstMeta(meta)})
}

// Created writes data with 201.
func Created(c *gin.Context, data interface{}, meta ...map[string]interface{}) {
	JSON(c, http.StatusCreated, data, meta...)
}

// Error writes err using the status of its *appErrors.Error, or 500 when the
// chain carries none.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

// Insights are per-student data; intermediaries must not keep them.
func write(c *gin.Context, status int, body Envelope) {
	h := c.Writer.Header()
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	c.JSON(status, body)
}

func firstMeta(meta []map[string]interface{}) Meta {
	for _, m := range meta {
		if len(m) > 0 {
			return Meta(m)
		}
	}
	return nil
}
