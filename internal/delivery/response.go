package delivery

import (
	"errors"
	"net/http"

	"catalog_service/internal/domain"

	"github.com/gin-gonic/gin"
)

// Feedback levels understood by the storefront.
const (
	LevelError   = "error"
	LevelSuccess = "success"
	LevelInfo    = "info"
)

type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func ErrorMessage(text string) Message   { return Message{Level: LevelError, Text: text} }
func SuccessMessage(text string) Message { return Message{Level: LevelSuccess, Text: text} }
func InfoMessage(text string) Message    { return Message{Level: LevelInfo, Text: text} }

type Response struct {
	Status   string      `json:"Status"`
	Message  string      `json:"Message"`
	Data     interface{} `json:"Data,omitempty"`
	Messages []Message   `json:"Messages,omitempty"`
	Redirect string      `json:"Redirect,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}, messages ...Message) {
	c.JSON(statusCode, Response{
		Status:   "Success",
		Message:  message,
		Data:     data,
		Messages: messages,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string, messages ...Message) {

	c.JSON(statusCode, Response{
		Status:   "Fail",
		Message:  message,
		Messages: messages,
	})
}

// FormErrorResponse re-renders a form with its field errors.
func FormErrorResponse(c *gin.Context, message string, data interface{}, messages ...Message) {
	c.JSON(http.StatusBadRequest, Response{
		Status:   "Fail",
		Message:  message,
		Data:     data,
		Messages: messages,
	})
}

// RedirectResponse sends the client on to location with 303 See Other; the
// feedback messages travel in the body.
func RedirectResponse(c *gin.Context, location string, messages ...Message) {
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, Response{
		Status:   "Redirect",
		Message:  "See " + location,
		Messages: messages,
		Redirect: location,
	})
}

func mapErrorToStatus(err error) int {
	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthorizationError
		notFoundErr   *domain.NotFoundError
	)
	switch {
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// clientMessage hides internal failures from the client.
func clientMessage(err error) string {
	if mapErrorToStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
