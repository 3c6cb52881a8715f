package edge

import "github.com/gin-gonic/gin"

// Middleware applies the viewer-request and viewer-response rules to a gin
// request, rewriting the URL path in place before the next handler runs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := ViewerRequest(Request{
			Method: c.Request.Method,
			URI:    c.Request.URL.Path,
		})
		c.Request.URL.Path = req.URI

		resp := ViewerResponse(req, Response{Headers: Headers{}})
		for name, h := range resp.Headers {
			c.Header(name, h.Value)
		}
		c.Next()
	}
}
