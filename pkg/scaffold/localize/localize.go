package localize

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/toyz/scaffold/pkg/scaffold/model"
)

// Message keys used by the generated controller and views
const (
	MsgSaved         = "Scaffold.Saved"
	MsgDeleted       = "Scaffold.Deleted"
	MsgConflict      = "Scaffold.Conflict"
	MsgNotFound      = "Scaffold.NotFound"
	MsgCreate        = "Scaffold.Create"
	MsgEdit          = "Scaffold.Edit"
	MsgDelete        = "Scaffold.Delete"
	MsgDetails       = "Scaffold.Details"
	MsgSave          = "Scaffold.Save"
	MsgBack          = "Scaffold.Back"
	MsgConfirmDelete = "Scaffold.ConfirmDelete"
	MsgEmpty         = "Scaffold.Empty"
)

var defaults = map[string]map[string]string{
	"en": {
		MsgSaved:         "Saved.",
		MsgDeleted:       "Deleted.",
		MsgConflict:      "The record was changed or removed by someone else. Please retry, or contact your administrator if the problem persists.",
		MsgNotFound:      "The requested record does not exist.",
		MsgCreate:        "Create new",
		MsgEdit:          "Edit",
		MsgDelete:        "Delete",
		MsgDetails:       "Details",
		MsgSave:          "Save",
		MsgBack:          "Back to list",
		MsgConfirmDelete: "Are you sure you want to delete this record?",
		MsgEmpty:         "No records.",
	},
	"de": {
		MsgSaved:         "Gespeichert.",
		MsgDeleted:       "Gelöscht.",
		MsgConflict:      "Der Datensatz wurde von jemand anderem geändert oder entfernt. Bitte versuchen Sie es erneut oder wenden Sie sich an Ihren Administrator.",
		MsgNotFound:      "Der angeforderte Datensatz existiert nicht.",
		MsgCreate:        "Neu anlegen",
		MsgEdit:          "Bearbeiten",
		MsgDelete:        "Löschen",
		MsgDetails:       "Details",
		MsgSave:          "Speichern",
		MsgBack:          "Zurück zur Liste",
		MsgConfirmDelete: "Möchten Sie diesen Datensatz wirklich löschen?",
		MsgEmpty:         "Keine Datensätze.",
	},
}

// Localizer resolves captions and messages for a request's Accept-Language
type Localizer struct {
	fallback language.Tag
	cat      *catalog.Builder

	mu      sync.RWMutex
	matcher language.Matcher
	tags    []language.Tag
}

// New creates a localizer with the built-in English and German messages.
// fallback is used when no requested language is supported.
func New(fallback language.Tag) *Localizer {
	l := &Localizer{
		fallback: fallback,
		cat:      catalog.NewBuilder(catalog.Fallback(fallback)),
	}
	for lang, msgs := range defaults {
		tag := language.MustParse(lang)
		for key, msg := range msgs {
			// built-in messages contain no format verbs
			_ = l.cat.SetString(tag, key, msg)
		}
	}
	l.rebuild()
	return l
}

// Parse creates a localizer for a fallback language name such as "en"
func Parse(fallback string) (*Localizer, error) {
	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", fallback, err)
	}
	return New(tag), nil
}

// Set adds or replaces a translation. Captions use the key "<Model>.<Property>".
func (l *Localizer) Set(tag language.Tag, key, msg string) error {
	if err := l.cat.SetString(tag, key, msg); err != nil {
		return err
	}
	l.rebuild()
	return nil
}

func (l *Localizer) rebuild() {
	tags := []language.Tag{l.fallback}
	for _, t := range l.cat.Languages() {
		if t != l.fallback {
			tags = append(tags, t)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tags = tags
	l.matcher = language.NewMatcher(tags)
}

// Match returns the supported language that best fits an Accept-Language header
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	l.mu.RLock()
	defer l.mu.RUnlock()

	requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(requested) == 0 {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(requested...)
	if conf == language.No {
		return l.fallback
	}
	return l.tags[idx]
}

// Printer returns a printer for an Accept-Language header
func (l *Localizer) Printer(acceptLanguage string) *Printer {
	tag := l.Match(acceptLanguage)
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(l.cat))}
}

// Printer formats messages in one language
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// Language returns the printer's language
func (p *Printer) Language() language.Tag {
	return p.tag
}

// T returns the message for key, or key when it has no translation
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(message.Key(key, key), args...)
}

// Text returns the message for key, or fallback when it has no translation
func (p *Printer) Text(key, fallback string) string {
	return p.p.Sprintf(message.Key(key, fallback))
}

// Caption implements model.CaptionFunc over the "<Model>.<Property>" keys
func (p *Printer) Caption(modelName, property, fallback string) string {
	return p.Text(modelName+"."+property, fallback)
}

var _ model.CaptionFunc = (*Printer)(nil).Caption
