package edge

import "maps"

// Header is a single header value in the CloudFront Functions event model.
type Header struct {
	Value string `json:"value"`
}

// Headers are keyed by lower-case header name.
type Headers map[string]Header

type Viewer struct {
	IP string `json:"ip"`
}

type Context struct {
	DistributionDomainName string `json:"distributionDomainName,omitempty"`
	DistributionID         string `json:"distributionId,omitempty"`
	EventType              string `json:"eventType"`
	RequestID              string `json:"requestId,omitempty"`
}

type Request struct {
	Method      string            `json:"method"`
	URI         string            `json:"uri"`
	Querystring map[string]Header `json:"querystring"`
	Headers     Headers           `json:"headers"`
	Cookies     map[string]Header `json:"cookies"`
}

type Response struct {
	StatusCode        int               `json:"statusCode"`
	StatusDescription string            `json:"statusDescription,omitempty"`
	Headers           Headers           `json:"headers"`
	Cookies           map[string]Header `json:"cookies"`
}

// Event is the object CloudFront passes to a function handler.
type Event struct {
	Version  string    `json:"version"`
	Context  Context   `json:"context"`
	Viewer   Viewer    `json:"viewer"`
	Request  Request   `json:"request"`
	Response *Response `json:"response,omitempty"`
}

const (
	EventViewerRequest  = "viewer-request"
	EventViewerResponse = "viewer-response"
)

// NewRequestEvent builds a viewer-request event for a GET of uri.
func NewRequestEvent(uri string) Event {
	return Event{
		Version: "1.0",
		Context: Context{EventType: EventViewerRequest},
		Viewer:  Viewer{IP: "198.51.100.1"},
		Request: Request{
			Method:      "GET",
			URI:         uri,
			Querystring: map[string]Header{},
			Headers:     Headers{},
			Cookies:     map[string]Header{},
		},
	}
}

// NewResponseEvent builds a viewer-response event for a 200 response to uri.
func NewResponseEvent(uri string) Event {
	ev := NewRequestEvent(uri)
	ev.Context.EventType = EventViewerResponse
	ev.Response = &Response{
		StatusCode:        200,
		StatusDescription: "OK",
		Headers:           Headers{},
		Cookies:           map[string]Header{},
	}
	return ev
}

// ViewerRequest returns req with its URI rewritten onto the index document.
func ViewerRequest(req Request) Request {
	req.URI = RewriteURI(req.URI)
	return req
}

// ViewerResponse returns resp with the cache-control header chosen for req.
func ViewerResponse(req Request, resp Response) Response {
	headers := make(Headers, len(resp.Headers)+1)
	maps.Copy(headers, resp.Headers)
	headers[CacheControlHeader] = Header{Value: CacheControl(req.URI)}
	resp.Headers = headers
	return resp
}
