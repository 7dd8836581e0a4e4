package services

import (
	"context"
	"fmt"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/forms"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/repositories"
	"backoffice-console/pkg/validation"

	"go.uber.org/zap"
)

type FormServiceInterface interface {
	Open(ctx context.Context, actor *authz.Actor, resourceKey, recordID string, record map[string]any, preset map[string][]registry.Option) (*forms.RenderedForm, error)
	Get(ctx context.Context, actor *authz.Actor, formID string) (*forms.RenderedForm, error)
	SetField(ctx context.Context, actor *authz.Actor, formID, name string, value any) (*forms.RenderedForm, error)
	Submit(ctx context.Context, actor *authz.Actor, formID string) error
	SubmitValues(ctx context.Context, actor *authz.Actor, resourceKey, recordID string, values map[string]any) error
	Discard(ctx context.Context, actor *authz.Actor, formID string) error
}

type FormService struct {
	registry registry.RegistryInterface
	entities EntityServiceInterface
	loader   forms.OptionLoader
	sessions repositories.SessionRepositoryInterface
	validate *validation.CustomValidator
	logger   *zap.Logger

	// locks сериализуют чтение-изменение-запись одной формы внутри процесса
	locks *keyedLock
}

func NewFormService(
	reg registry.RegistryInterface,
	entities EntityServiceInterface,
	loader forms.OptionLoader,
	sessions repositories.SessionRepositoryInterface,
	validate *validation.CustomValidator,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		registry: reg,
		entities: entities,
		loader:   loader,
		sessions: sessions,
		validate: validate,
		logger:   logger.Named("form_service"),
		locks:    newKeyedLock(),
	}
}

func formKey(actor *authz.Actor, formID string) string {
	return fmt.Sprintf("form:%s:%s", actor.UserID(), formID)
}

func (s *FormService) lock(formID string) func() {
	return s.locks.Lock(formID)
}

func (s *FormService) load(ctx context.Context, actor *authz.Actor, formID string) (*forms.Form, *registry.ResourceDescriptor, error) {
	var f forms.Form
	if err := s.sessions.Load(ctx, formKey(actor, formID), &f); err != nil {
		return nil, nil, err
	}
	desc, err := s.registry.Get(f.ResourceKey)
	if err != nil {
		return nil, nil, err
	}
	return &f, desc, nil
}

func formAction(recordID string) authz.Action {
	if recordID != "" {
		return authz.ActionUpdate
	}
	return authz.ActionCreate
}

// Open открывает форму добавления (recordID пуст) или редактирования. preset - заранее
// загруженные варианты полей (например, записи родительской вкладки).
func (s *FormService) Open(ctx context.Context, actor *authz.Actor, resourceKey, recordID string, record map[string]any, preset map[string][]registry.Option) (*forms.RenderedForm, error) {
	desc, err := s.registry.Get(resourceKey)
	if err != nil {
		return nil, err
	}
	if record != nil && recordID == "" {
		recordID = registry.RecordID(record)
	}
	if err := authz.Require(actor, desc, formAction(recordID)); err != nil {
		return nil, err
	}

	if recordID != "" && record == nil {
		record, err = s.entities.Find(ctx, actor, desc, recordID)
		if err != nil {
			return nil, err
		}
	}

	f := forms.NewForm(desc, record)
	for name, opts := range preset {
		field, ok := desc.Field(name)
		if !ok || field.DependsOn != "" {
			continue
		}
		f.Options[name] = append([]registry.Option{}, opts...)
	}

	if err := forms.Resolve(ctx, desc, f, s.loader); err != nil {
		s.logger.Warn("Не все варианты формы загружены", zap.String("resource", desc.Key), zap.Error(err))
	}

	if err := s.sessions.Save(ctx, formKey(actor, f.ID), f); err != nil {
		return nil, err
	}

	rendered := forms.RenderForm(desc, f)
	return &rendered, nil
}

func (s *FormService) Get(ctx context.Context, actor *authz.Actor, formID string) (*forms.RenderedForm, error) {
	f, desc, err := s.load(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	rendered := forms.RenderForm(desc, f)
	return &rendered, nil
}

// SetField меняет значение и догружает варианты зависимых полей. Запросы идут вне
// блокировки; ответ применяется, только если поколение поля не изменилось.
func (s *FormService) SetField(ctx context.Context, actor *authz.Actor, formID, name string, value any) (*forms.RenderedForm, error) {
	unlock := s.lock(formID)
	f, desc, err := s.load(ctx, actor, formID)
	if err != nil {
		unlock()
		return nil, err
	}

	// ошибка приведения остаётся на поле формы; остальные ошибки возвращаются сразу
	if err := f.Set(desc, name, value); err != nil && f.Errors[name] == "" {
		unlock()
		return nil, err
	}

	var tickets []forms.FetchTicket
	for _, field := range desc.Fields {
		if !f.NeedsFetch(desc, field.Name) {
			continue
		}
		if ticket, ok := f.BeginFetch(desc, field.Name); ok {
			tickets = append(tickets, ticket)
		}
	}
	err = s.sessions.Save(ctx, formKey(actor, formID), f)
	unlock()
	if err != nil {
		return nil, err
	}

	for _, ticket := range tickets {
		opts, loadErr := s.loader.LoadOptions(ctx, desc.Key, ticket.Endpoint)
		if err := s.applyFetch(ctx, actor, formID, ticket, opts, loadErr); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, actor, formID)
}

func (s *FormService) applyFetch(ctx context.Context, actor *authz.Actor, formID string, ticket forms.FetchTicket, opts []registry.Option, loadErr error) error {
	unlock := s.lock(formID)
	defer unlock()

	f, desc, err := s.load(ctx, actor, formID)
	if err != nil {
		return err
	}

	var applied bool
	if loadErr != nil {
		applied = f.FailFetch(desc, ticket)
		s.logger.Warn("Варианты поля не загружены",
			zap.String("resource", desc.Key), zap.String("field", ticket.Field), zap.Error(loadErr))
	} else {
		applied = f.ApplyFetch(desc, ticket, opts)
	}
	if !applied {
		s.logger.Debug("Устаревший ответ отброшен",
			zap.String("field", ticket.Field), zap.Uint64("generation", ticket.Generation))
		return nil
	}
	return s.sessions.Save(ctx, formKey(actor, formID), f)
}

// Submit проверяет форму и отправляет её. При ошибке удалённого API форма остаётся
// открытой со всеми значениями; при успехе сессия формы удаляется.
func (s *FormService) Submit(ctx context.Context, actor *authz.Actor, formID string) error {
	unlock := s.lock(formID)
	defer unlock()

	f, desc, err := s.load(ctx, actor, formID)
	if err != nil {
		return err
	}
	if err := authz.Require(actor, desc, formAction(f.RecordID)); err != nil {
		return err
	}

	if err := forms.Validate(desc, f, s.validate); err != nil {
		if saveErr := s.sessions.Save(ctx, formKey(actor, formID), f); saveErr != nil {
			s.logger.Error("Не удалось сохранить ошибки формы", zap.Error(saveErr))
		}
		return err
	}

	if f.IsEdit() {
		err = s.entities.Update(ctx, actor, desc, f.RecordID, f.Values)
	} else {
		err = s.entities.Create(ctx, actor, desc, f.Values)
	}
	if err != nil {
		return err
	}

	return s.sessions.Delete(ctx, formKey(actor, formID))
}

// SubmitValues проверяет и отправляет значения без открытой формы. Проверка та же, что
// у формы, но без сети: варианты выбора не загружаются, принадлежность списку не проверяется.
func (s *FormService) SubmitValues(ctx context.Context, actor *authz.Actor, resourceKey, recordID string, values map[string]any) error {
	desc, err := s.registry.Get(resourceKey)
	if err != nil {
		return err
	}
	if err := authz.Require(actor, desc, formAction(recordID)); err != nil {
		return err
	}

	f := forms.NewForm(desc, nil)
	f.RecordID = recordID
	for _, field := range parentsFirst(desc) {
		raw, ok := values[field.Name]
		if !ok {
			continue
		}
		if err := f.Set(desc, field.Name, raw); err != nil && f.Errors[field.Name] == "" {
			return err
		}
	}
	if err := forms.Validate(desc, f, s.validate); err != nil {
		return err
	}

	if f.IsEdit() {
		return s.entities.Update(ctx, actor, desc, recordID, f.Values)
	}
	return s.entities.Create(ctx, actor, desc, f.Values)
}

// parentsFirst - поля в порядке, при котором родитель задаётся раньше зависимого
// (иначе установка родителя сбросила бы уже заданное значение).
func parentsFirst(desc *registry.ResourceDescriptor) []registry.FieldDescriptor {
	placed := make(map[string]bool, len(desc.Fields))
	out := make([]registry.FieldDescriptor, 0, len(desc.Fields))
	for len(out) < len(desc.Fields) {
		progress := false
		for _, field := range desc.Fields {
			if placed[field.Name] || (field.DependsOn != "" && !placed[field.DependsOn]) {
				continue
			}
			placed[field.Name] = true
			out = append(out, field)
			progress = true
		}
		if !progress {
			break
		}
	}
	return out
}

func (s *FormService) Discard(ctx context.Context, actor *authz.Actor, formID string) error {
	if formID == "" {
		return nil
	}
	unlock := s.lock(formID)
	defer unlock()
	return s.sessions.Delete(ctx, formKey(actor, formID))
}
