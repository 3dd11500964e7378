package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Protected greets callers admitted by the static basic gate.
func Protected(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the protected route!")
}
