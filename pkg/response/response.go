package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the envelope every endpoint returns. Code mirrors the HTTP
// status so clients reading only the payload still see the outcome.
type Body struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, data, "")
}

func Error(c *gin.Context, status int, msg string) {
	write(c, status, nil, msg)
}

func write(c *gin.Context, status int, data interface{}, msg string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Body{Code: status, Data: data, Msg: msg})
}
