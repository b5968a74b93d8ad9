package domain

// LinkForm is what a user submits from the creation dialog.
type LinkForm struct {
	Title     string `json:"title" validate:"required"`
	LongURL   string `json:"longUrl" validate:"required,url,web_url"`
	CustomURL string `json:"customUrl"`
}

// LinkDraft is a prefilled form plus whether the dialog should open on load.
type LinkDraft struct {
	Form LinkForm `json:"form"`
	Open bool     `json:"open"`
}

// CreationState is a step of the link creation flow.
type CreationState int

const (
	StateIdle CreationState = iota
	StateValidating
	StateRenderingCode
	StateUploading
	StateDone
	StateFailed
)

func (s CreationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRenderingCode:
		return "rendering_code"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
