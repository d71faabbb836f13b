package types

// PDFRequest is the editor pane export payload. HTML is the rich-text
// content as rendered by the client editor; Title is an optional
// document title used when the HTML itself carries none.
type PDFRequest struct {
	HTML  string `json:"html"`
	Title string `json:"title,omitempty"`
}
