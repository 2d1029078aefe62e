package cms

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/esscera_store/internal/util"
)

var ErrInvalidContent = errors.New("invalid content")

type Key struct {
	Page    string
	Section string
}

// Image is a hosted image referenced from a document.
type Image struct {
	URL      string
	PublicID string
}

type Document interface {
	Images() []Image
}

type HeroSlide struct {
	Title     string `json:"title" validate:"required,max=200"`
	Highlight string `json:"highlight,omitempty" validate:"max=200"`
	Subtitle  string `json:"subtitle,omitempty" validate:"max=500"`
	Image     string `json:"image,omitempty"`
	PublicID  string `json:"publicId,omitempty"`
}

type HeroSection struct {
	Slides []HeroSlide `json:"slides" validate:"dive"`
}

func (h *HeroSection) Images() []Image {
	var out []Image
	for _, s := range h.Slides {
		if s.Image != "" || s.PublicID != "" {
			out = append(out, Image{URL: s.Image, PublicID: s.PublicID})
		}
	}
	return out
}

type StorySection struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image,omitempty"`
	PublicID    string `json:"publicId,omitempty"`
}

func (s *StorySection) Images() []Image {
	if s.Image == "" && s.PublicID == "" {
		return nil
	}
	return []Image{{URL: s.Image, PublicID: s.PublicID}}
}

type ContactSection struct {
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

func (*ContactSection) Images() []Image { return nil }

// Opaque holds payloads for keys without a registered schema.
type Opaque struct {
	Raw Payload
}

func (o *Opaque) Images() []Image {
	var v any
	if err := json.Unmarshal(o.Raw, &v); err != nil {
		return nil
	}
	var out []Image
	walkImages(v, &out)
	return out
}

func walkImages(v any, out *[]Image) {
	switch t := v.(type) {
	case map[string]any:
		img, _ := t["image"].(string)
		pid, _ := t["publicId"].(string)
		if img != "" || pid != "" {
			*out = append(*out, Image{URL: img, PublicID: pid})
		}
		for k, child := range t {
			if k == "image" || k == "publicId" {
				continue
			}
			walkImages(child, out)
		}
	case []any:
		for _, child := range t {
			walkImages(child, out)
		}
	}
}

var registry = map[Key]func() Document{
	{Page: "home", Section: "hero"}:      func() Document { return &HeroSection{} },
	{Page: "about", Section: "story"}:    func() Document { return &StorySection{} },
	{Page: "footer", Section: "contact"}: func() Document { return &ContactSection{} },
}

func Known(page, section string) bool {
	_, ok := registry[Key{Page: page, Section: section}]
	return ok
}

// Decode parses raw against the schema registered for (page, section).
// Unknown keys only need to be valid JSON.
func Decode(page, section string, raw Payload) (Document, error) {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, fmt.Errorf("%w: content must be valid JSON", ErrInvalidContent)
	}

	ctor, ok := registry[Key{Page: page, Section: section}]
	if !ok {
		return &Opaque{Raw: raw}, nil
	}

	doc := ctor()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidContent, page, section, err)
	}
	if err := util.Validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %s", ErrInvalidContent, page, section, util.ValidationMessage(err))
	}
	return doc, nil
}

// ImagesOf lists hosted images referenced by a stored payload. Payloads
// that no longer match their schema are walked generically.
func ImagesOf(page, section string, raw Payload) []Image {
	doc, err := Decode(page, section, raw)
	if err != nil {
		if !json.Valid(raw) {
			return nil
		}
		doc = &Opaque{Raw: raw}
	}
	return doc.Images()
}
