// Package carousel holds the client-side editing state for a generated
// carousel: the ordered slides, the selected slide and the last status
// message shown to the user.
package carousel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// Deck errors. Their text is shown to users as-is.
var (
	ErrFieldsRequired = errors.New("All slide fields are required.") //nolint:staticcheck // user-facing text
	ErrNoSelection    = errors.New("Select a slide first.")          //nolint:staticcheck // user-facing text
	ErrSlideNotFound  = errors.New("slide not found")
)

// Status messages.
const (
	MsgOrderUpdated = "Slide order updated."
	MsgSlideSaved   = "Slide saved."
)

// SlideEdit holds the editable fields of a slide.
type SlideEdit struct {
	Headline string
	Body     string
	CTA      string
	ImageURL string
}

// Deck is the editable state of one carousel. A Deck is not safe for
// concurrent use.
type Deck struct {
	slides      []domain.Slide
	selectedID  string
	meta        domain.GenerationMeta
	status      string
	statusError bool
}

// NewDeck returns an empty deck.
func NewDeck() *Deck {
	return &Deck{}
}

// Load replaces the deck's contents with a generation result and selects the
// first slide.
func (d *Deck) Load(result *domain.GenerationResult) {
	d.slides = nil
	d.selectedID = ""
	d.meta = domain.GenerationMeta{}
	if result == nil {
		d.setStatus("", false)
		return
	}

	d.slides = append([]domain.Slide(nil), result.Slides...)
	d.meta = result.Meta
	if len(d.slides) > 0 {
		d.selectedID = d.slides[0].ID
	}
	d.setStatus(fmt.Sprintf("Generated %d slides for “%s”.", len(d.slides), d.meta.Topic), false)
}

// Select makes the slide with the given id the selected slide.
func (d *Deck) Select(id string) error {
	if d.index(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrSlideNotFound)
	}
	d.selectedID = id
	return nil
}

// Selected returns a copy of the selected slide.
func (d *Deck) Selected() (domain.Slide, bool) {
	i := d.index(d.selectedID)
	if i < 0 {
		return domain.Slide{}, false
	}
	return d.slides[i], true
}

// Move removes the source slide and inserts it at the target's original
// index. Equal or unknown ids leave the order and status unchanged.
func (d *Deck) Move(sourceID, targetID string) {
	if sourceID == "" || sourceID == targetID {
		return
	}
	from, to := d.index(sourceID), d.index(targetID)
	if from < 0 || to < 0 {
		return
	}

	moved := d.slides[from]
	d.slides = append(d.slides[:from], d.slides[from+1:]...)
	d.slides = append(d.slides[:to], append([]domain.Slide{moved}, d.slides[to:]...)...)
	d.setStatus(MsgOrderUpdated, false)
}

// Edit replaces the editable fields of a slide. Every field must be non-empty
// after trimming, otherwise nothing changes and ErrFieldsRequired is returned.
func (d *Deck) Edit(id string, edit SlideEdit) error {
	i := d.index(id)
	if i < 0 {
		d.setStatus(ErrNoSelection.Error(), true)
		return ErrNoSelection
	}

	edit = SlideEdit{
		Headline: strings.TrimSpace(edit.Headline),
		Body:     strings.TrimSpace(edit.Body),
		CTA:      strings.TrimSpace(edit.CTA),
		ImageURL: strings.TrimSpace(edit.ImageURL),
	}
	if edit.Headline == "" || edit.Body == "" || edit.CTA == "" || edit.ImageURL == "" {
		d.setStatus(ErrFieldsRequired.Error(), true)
		return ErrFieldsRequired
	}

	s := &d.slides[i]
	s.Headline = edit.Headline
	s.Body = edit.Body
	s.CTA = edit.CTA
	s.ImageURL = edit.ImageURL
	d.setStatus(MsgSlideSaved, false)
	return nil
}

// Slides returns a copy of the slides in display order.
func (d *Deck) Slides() []domain.Slide {
	return append([]domain.Slide(nil), d.slides...)
}

// Meta returns the metadata of the loaded result.
func (d *Deck) Meta() domain.GenerationMeta {
	return d.meta
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.slides)
}

// Status returns the last status message and whether it reports an error.
func (d *Deck) Status() (string, bool) {
	return d.status, d.statusError
}

// SetStatus records a status message produced outside the deck, such as an
// export result.
func (d *Deck) SetStatus(msg string, isError bool) {
	d.setStatus(msg, isError)
}

// Render writes the deck as numbered text, marking the selected slide.
// It is the only way deck state is presented.
func (d *Deck) Render(w io.Writer) error {
	var b strings.Builder

	if d.meta.Topic != "" {
		fmt.Fprintf(&b, "%s (%s, %s)\n", d.meta.Topic, d.meta.Tone, d.meta.ImageStyle)
	}
	if len(d.slides) == 0 {
		b.WriteString("No slides yet.\n")
	}
	for i, s := range d.slides {
		marker := " "
		if s.ID == d.selectedID {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %2d. %s\n", marker, i+1, s.Headline)
		fmt.Fprintf(&b, "      %s\n", s.Body)
		fmt.Fprintf(&b, "      CTA: %s\n", s.CTA)
		fmt.Fprintf(&b, "      Image: %s\n", s.ImageURL)
	}
	if d.status != "" {
		prefix := "Status"
		if d.statusError {
			prefix = "Error"
		}
		fmt.Fprintf(&b, "%s: %s\n", prefix, d.status)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (d *Deck) index(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range d.slides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (d *Deck) setStatus(msg string, isError bool) {
	d.status = msg
	d.statusError = isError
}
