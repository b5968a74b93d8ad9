package creation

import (
	"context"
	"net/url"
	"strings"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/core/validation"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
	"go.uber.org/zap"
)

// CodeSize is the edge length in pixels of generated QR images.
const CodeSize = 250

// DraftParam is the query parameter that opens the dialog with a prefilled URL.
const DraftParam = "createNew"

var formMessages = validation.Messages{
	"title.required":   "Title is required",
	"longUrl.required": "Long URL is required",
	"longUrl.url":      "Must be a valid URL",
	"longUrl.web_url":  "Must be a valid URL",
}

// Flow drives a submitted form through validation, QR rendering and upload.
type Flow struct {
	links    ports.LinkService
	renderer ports.CodeRenderer
	logger   *zap.Logger
}

func NewFlow(links ports.LinkService, renderer ports.CodeRenderer, logger *zap.Logger) *Flow {
	return &Flow{links: links, renderer: renderer, logger: logger.Named("creation")}
}

// Submit validates form, renders its QR code and creates the link. observe,
// if non-nil, is called on every state transition.
func (f *Flow) Submit(ctx context.Context, userID string, form domain.LinkForm, observe func(domain.CreationState)) (*domain.Link, error) {
	step := func(s domain.CreationState) {
		if observe != nil {
			observe(s)
		}
	}
	fail := func(err error) (*domain.Link, error) {
		step(domain.StateFailed)
		return nil, err
	}

	step(domain.StateIdle)
	form.Title = strings.TrimSpace(form.Title)
	form.LongURL = strings.TrimSpace(form.LongURL)
	form.CustomURL = strings.TrimSpace(form.CustomURL)

	step(domain.StateValidating)
	if err := validation.Struct(form, formMessages); err != nil {
		return fail(err)
	}

	step(domain.StateRenderingCode)
	png, err := f.renderer.Render(form.LongURL, CodeSize)
	if err != nil || len(png) == 0 {
		f.logger.Warn("qr render failed", zap.String("url", form.LongURL), zap.Error(err))
		return fail(domain.NewError(domain.KindRender, "QR Code failed to render. Please try again.", err))
	}

	step(domain.StateUploading)
	link, err := f.links.Create(ctx, domain.NewLink{
		Title:     form.Title,
		LongURL:   form.LongURL,
		CustomURL: form.CustomURL,
		UserID:    userID,
	}, png)
	if err != nil {
		return fail(err)
	}

	step(domain.StateDone)
	return link, nil
}

// DraftFromQuery prefills the form from ?createNew=<url>.
func (f *Flow) DraftFromQuery(q url.Values) domain.LinkDraft {
	long := strings.TrimSpace(q.Get(DraftParam))
	if long == "" {
		return domain.LinkDraft{}
	}
	return domain.LinkDraft{Form: domain.LinkForm{LongURL: long}, Open: true}
}

var _ ports.CreationFlow = (*Flow)(nil)
