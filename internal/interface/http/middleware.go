package httpservice

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	requestIdHeader = "X-Request-Id"
	callerIdHeader  = "X-Caller-Id"
	requestIdKey    = "request_id"
)

func requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIdHeader)
		if len(id) <= 0 {
			id = uuid.New().String()
		}
		c.Set(requestIdKey, id)
		c.Header(requestIdHeader, id)

		c.Next()

		log.WithFields(log.Fields{
			"request_id": id,
			"status":     c.Writer.Status(),
		}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}

// caller returns the identity the request acts on behalf of. Authentication
// of the identity is left to the gateway in front of the daemon.
func caller(c *gin.Context) string {
	return c.GetHeader(callerIdHeader)
}
