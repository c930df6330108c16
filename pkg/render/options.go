package render

// RenderOptions carry per-request data that is not part of the form state.
type RenderOptions struct {
	// MethodAction is the URL the method selector posts to.
	MethodAction string
	// SubmitAction is the URL the identifier form posts to.
	SubmitAction string
	// StylesheetURL is linked from HTML output when set.
	StylesheetURL string
}

// DefaultOptions matches the routes served by the web surface.
func DefaultOptions() RenderOptions {
	return RenderOptions{
		MethodAction:  "/method",
		SubmitAction:  "/recommend",
		StylesheetURL: "/assets/recoform.css",
	}
}
