package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an HTTP aware application error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap returns a copy of base carrying err, leaving the shared value untouched.
func Wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

var (
	ErrBadRequest     = New(http.StatusBadRequest, "Requête invalide", nil)
	ErrNotFound       = New(http.StatusNotFound, "Ressource introuvable", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Erreur interne du serveur", nil)
)

// ErrorMiddleware renders the last error attached with c.Error when the
// handler did not write a response itself.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var appErr *Error
		if !stderrors.As(c.Errors.Last().Err, &appErr) {
			appErr = Wrap(ErrInternalServer, c.Errors.Last().Err)
		}
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
	}
}

// NotFound is the engine's NoRoute handler.
func NotFound(c *gin.Context) {
	_ = c.Error(ErrNotFound)
}
