package domain

// Visit is the request metadata captured when a short link is opened.
// It is resolved into a Click by the recorder.
type Visit struct {
	LinkID    int64
	IP        string
	UserAgent string
}
