package model

// Header is a single HTTP header sent with a probe.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request describes one probe against a target endpoint.
type Request struct {
	TargetURL string
	Payload   string
	Headers   []Header
}

// Response holds the outcome of a completed HTTP exchange.
type Response struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// CodeDocument is the JSON body posted to the target.
type CodeDocument struct {
	Code string `json:"code"`
}
