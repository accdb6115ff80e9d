package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/calc"
	"github.com/xaenox/offline-assistant/internal/classifier"
	"github.com/xaenox/offline-assistant/internal/metrics"
	"github.com/xaenox/offline-assistant/internal/models"
)

type TemplateInput struct {
	Result models.IntentResult
	// OwnerID scopes persisted reminders and notes.
	OwnerID string
}

// Respond answers a classified utterance.
func (e *Engine) Respond(ctx context.Context, in TemplateInput) (reply string) {
	res := in.Result
	lang := res.Language
	defer e.recoverTo(&reply, lang, "template")

	b := BankFor(lang)
	switch res.Intent {
	case models.IntentTime:
		return e.formatTime(lang)
	case models.IntentDate:
		return e.formatDate(lang)
	case models.IntentCalculate:
		return e.calculate(res.OriginalText, lang)
	case models.IntentReminderSet:
		return e.setReminder(ctx, in)
	case models.IntentReminderList:
		return e.listReminders(ctx, in.OwnerID, lang)
	case models.IntentNoteCreate:
		return e.createNote(ctx, in)
	case models.IntentNoteList:
		return e.listNotes(ctx, in.OwnerID, lang)
	case models.IntentTranslate:
		return e.translate(res, lang)
	}

	if options := b.Intents[res.Intent]; len(options) > 0 {
		return e.pick(options)
	}
	return e.pick(b.Intents[models.IntentUnknown])
}

func (e *Engine) calculate(text string, lang models.Language) string {
	m := BankFor(lang).Messages
	identity, err := calc.Evaluate(text)
	switch {
	case errors.Is(err, calc.ErrDivisionByZero):
		e.metrics.Failure(metrics.FailureDivisionByZero)
		return m.DivideByZero
	case errors.Is(err, calc.ErrOverflow):
		e.metrics.Failure(metrics.FailureOverflow)
		return m.CalcTooLarge
	case err != nil:
		e.logger.Debug("Could not evaluate expression", zap.Error(err), zap.String("text", text))
		e.metrics.Failure(metrics.FailureParse)
		return m.CalcError
	}
	return fmt.Sprintf(m.CalcResult, identity)
}

func (e *Engine) setReminder(ctx context.Context, in TemplateInput) string {
	res := in.Result
	m := BankFor(res.Language).Messages

	content := res.Entity(classifier.EntityContent)
	if content == "" {
		content = strings.TrimSpace(res.OriginalText)
	}

	now := e.now()
	trigger, ok := classifier.ResolveTime(res.Entity(classifier.EntityTime), now)
	if !ok {
		trigger = now.Add(DefaultReminderDelay)
	}

	reminder := &models.Reminder{
		OwnerID:   in.OwnerID,
		Content:   content,
		CreatedAt: now,
		TriggerAt: trigger,
	}
	if err := e.store.InsertReminder(ctx, reminder); err != nil {
		return e.persistenceFailure(res.Language, "insert reminder", err)
	}
	e.logger.Info("Reminder created",
		zap.String("reminder_id", reminder.ID),
		zap.String("owner_id", in.OwnerID),
		zap.Time("trigger_at", trigger))

	items, err := e.reminderContents(ctx, in.OwnerID)
	if err != nil {
		return e.persistenceFailure(res.Language, "list reminders", err)
	}
	return fmt.Sprintf(m.ReminderSet, content) + "\n\n" + bulleted(m.RemindersHeader, items)
}

func (e *Engine) listReminders(ctx context.Context, ownerID string, lang models.Language) string {
	m := BankFor(lang).Messages
	items, err := e.reminderContents(ctx, ownerID)
	if err != nil {
		return e.persistenceFailure(lang, "list reminders", err)
	}
	if len(items) == 0 {
		return m.NoReminders
	}
	return bulleted(m.RemindersHeader, items)
}

func (e *Engine) reminderContents(ctx context.Context, ownerID string) ([]string, error) {
	reminders, err := e.store.ListReminders(ctx, ownerID, e.listLimit)
	if err != nil {
		return nil, err
	}
	items := make([]string, len(reminders))
	for i, r := range reminders {
		items[i] = r.Content
	}
	return items, nil
}

func (e *Engine) createNote(ctx context.Context, in TemplateInput) string {
	res := in.Result
	m := BankFor(res.Language).Messages

	content := res.Entity(classifier.EntityContent)
	if content == "" {
		content = strings.TrimSpace(res.OriginalText)
	}

	note := &models.Note{
		OwnerID:   in.OwnerID,
		Content:   content,
		Category:  models.GeneralNote,
		CreatedAt: e.now(),
	}
	if err := e.store.InsertNote(ctx, note); err != nil {
		return e.persistenceFailure(res.Language, "insert note", err)
	}
	e.logger.Info("Note created",
		zap.String("note_id", note.ID),
		zap.String("owner_id", in.OwnerID))

	items, err := e.noteContents(ctx, in.OwnerID)
	if err != nil {
		return e.persistenceFailure(res.Language, "list notes", err)
	}
	return fmt.Sprintf(m.NoteSaved, content) + "\n\n" + bulleted(m.NotesHeader, items)
}

func (e *Engine) listNotes(ctx context.Context, ownerID string, lang models.Language) string {
	m := BankFor(lang).Messages
	items, err := e.noteContents(ctx, ownerID)
	if err != nil {
		return e.persistenceFailure(lang, "list notes", err)
	}
	if len(items) == 0 {
		return m.NoNotes
	}
	return bulleted(m.NotesHeader, items)
}

func (e *Engine) noteContents(ctx context.Context, ownerID string) ([]string, error) {
	notes, err := e.store.ListNotes(ctx, ownerID, e.listLimit)
	if err != nil {
		return nil, err
	}
	items := make([]string, len(notes))
	for i, n := range notes {
		items[i] = n.Content
	}
	return items, nil
}

func (e *Engine) translate(res models.IntentResult, lang models.Language) string {
	m := BankFor(lang).Messages
	text := res.Entity(classifier.EntityText)
	if text == "" {
		return m.TranslateMissing
	}
	if target := res.Entity(classifier.EntityTargetLanguage); target != "" {
		return fmt.Sprintf(m.TranslateOfflineTo, text, target)
	}
	return fmt.Sprintf(m.TranslateOffline, text)
}

func (e *Engine) persistenceFailure(lang models.Language, op string, err error) string {
	e.logger.Error("Persistence failed", zap.String("op", op), zap.Error(err))
	e.metrics.Failure(metrics.FailurePersistence)
	return e.apology(lang)
}
