package dto

// Res is the error body returned by the auth middleware.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// AjaxResponse is the {success, data} envelope every AJAX action answers with.
type AjaxResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorData struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type NonceResponse struct {
	Action    string `json:"action"`
	Nonce     string `json:"nonce"`
	ExpiresIn int    `json:"expires_in"`
}

type LoadMoreEpisodesResponse struct {
	Episodes interface{} `json:"episodes"`
	HTML     string      `json:"html"`
	Offset   int         `json:"next_offset"`
}
