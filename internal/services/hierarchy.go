package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/forms"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/repositories"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/utils"

	"go.uber.org/zap"
)

// maxParentPages - сколько страниц родительской вкладки грузится под выпадающий список.
const maxParentPages = 20

// TabState - состояние экрана составного ресурса: ровно одна активная вкладка.
type TabState struct {
	Composite  string `json:"composite"`
	Active     string `json:"active"`
	OpenFormID string `json:"open_form_id,omitempty"`
	// ForeignKey/ForeignOptions - записи родительской вкладки для выпадающего списка.
	ForeignKey     string            `json:"foreign_key,omitempty"`
	ForeignOptions []registry.Option `json:"foreign_options,omitempty"`
}

type TabInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Allowed bool   `json:"allowed"`
}

type TabView struct {
	State        TabState  `json:"state"`
	Tabs         []TabInfo `json:"tabs"`
	Table        TableView `json:"table"`
	OptionsError string    `json:"options_error,omitempty"`
}

type HierarchyServiceInterface interface {
	Open(ctx context.Context, actor *authz.Actor, key string) (*TabView, error)
	Select(ctx context.Context, actor *authz.Actor, key, tab string) (*TabView, error)
	OpenForm(ctx context.Context, actor *authz.Actor, key, recordID string) (*forms.RenderedForm, error)
}

type HierarchyService struct {
	registry registry.RegistryInterface
	entities EntityServiceInterface
	forms    FormServiceInterface
	sessions repositories.SessionRepositoryInterface
	logger   *zap.Logger
}

func NewHierarchyService(
	reg registry.RegistryInterface,
	entities EntityServiceInterface,
	formService FormServiceInterface,
	sessions repositories.SessionRepositoryInterface,
	logger *zap.Logger,
) HierarchyServiceInterface {
	return &HierarchyService{
		registry: reg,
		entities: entities,
		forms:    formService,
		sessions: sessions,
		logger:   logger.Named("hierarchy_service"),
	}
}

func tabKey(actor *authz.Actor, composite string) string {
	return fmt.Sprintf("tab:%s:%s", actor.UserID(), composite)
}

func (s *HierarchyService) composite(actor *authz.Actor, key string) (*registry.Composite, error) {
	c, err := s.registry.GetComposite(key)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(actor, c, authz.ActionView); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *HierarchyService) loadState(ctx context.Context, actor *authz.Actor, key string) (*TabState, error) {
	var state TabState
	err := s.sessions.Load(ctx, tabKey(actor, key), &state)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Open восстанавливает активную вкладку или выбирает первую доступную актору.
func (s *HierarchyService) Open(ctx context.Context, actor *authz.Actor, key string) (*TabView, error) {
	c, err := s.composite(actor, key)
	if err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, actor, key)
	if err != nil {
		return nil, err
	}
	if state != nil {
		if t, ok := c.Tab(state.Active); ok && authz.CanPerform(actor, t.Resource, authz.ActionView) {
			return s.Select(ctx, actor, key, state.Active)
		}
	}

	for _, t := range c.Tabs {
		if authz.CanPerform(actor, t.Resource, authz.ActionView) {
			return s.Select(ctx, actor, key, t.Name)
		}
	}
	return nil, &apperrors.AuthorizationError{Resource: key, Permission: c.Tabs[0].Resource.PermissionFor(authz.ActionView)}
}

// Select переключает вкладку: проверяет право, грузит первую страницу и записи
// родительской вкладки. Открытая форма прежней вкладки отбрасывается без сохранения.
// При ошибке загрузки таблицы прежнее состояние не меняется.
func (s *HierarchyService) Select(ctx context.Context, actor *authz.Actor, key, tab string) (*TabView, error) {
	c, err := s.composite(actor, key)
	if err != nil {
		return nil, err
	}
	t, ok := c.Tab(tab)
	if !ok {
		s.logger.Error("Неизвестная вкладка", zap.String("resource", key), zap.String("tab", tab), zap.Bool("defect", true))
		return nil, apperrors.NewConfigurationError(key, "вкладка '%s' не объявлена", tab)
	}
	if err := authz.Require(actor, t.Resource, authz.ActionView); err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		page       *PaginatedResult
		pageErr    error
		foreign    []registry.Option
		foreignErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		page, pageErr = s.entities.List(ctx, actor, t.Resource, 1, utils.DefaultPageSize, nil)
	}()
	if t.DependsOnTab != "" {
		parent, _ := c.Tab(t.DependsOnTab)
		wg.Add(1)
		go func() {
			defer wg.Done()
			var (
				records   []map[string]any
				truncated bool
			)
			records, truncated, foreignErr = collectPages(ctx, s.entities, actor, parent.Resource, nil, maxParentPages)
			if foreignErr != nil {
				return
			}
			if truncated {
				// неполный список не годится для проверки выбора: форма загрузит варианты сама
				s.logger.Warn("Записей родительской вкладки больше лимита",
					zap.String("tab", t.Name), zap.String("parent", t.DependsOnTab), zap.Int("loaded", len(records)))
				return
			}
			foreign = forms.ToOptions(records)
		}()
	}
	wg.Wait()

	if pageErr != nil {
		return nil, pageErr
	}

	previous, err := s.loadState(ctx, actor, key)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.OpenFormID != "" {
		if err := s.forms.Discard(ctx, actor, previous.OpenFormID); err != nil {
			s.logger.Warn("Форма прежней вкладки не удалена", zap.String("form", previous.OpenFormID), zap.Error(err))
		}
	}

	state := TabState{Composite: key, Active: t.Name}
	view := &TabView{Table: s.entities.Rows(actor, t.Resource, page)}
	if t.DependsOnTab != "" {
		state.ForeignKey = t.ForeignKey
		if foreignErr != nil {
			view.OptionsError = foreignErr.Error()
			s.logger.Warn("Записи родительской вкладки не загружены",
				zap.String("tab", t.Name), zap.String("parent", t.DependsOnTab), zap.Error(foreignErr))
		} else {
			state.ForeignOptions = foreign
		}
	}

	if err := s.sessions.Save(ctx, tabKey(actor, key), state); err != nil {
		return nil, err
	}

	view.State = state
	view.Tabs = tabInfos(actor, c)
	return view, nil
}

func tabInfos(actor *authz.Actor, c *registry.Composite) []TabInfo {
	out := make([]TabInfo, 0, len(c.Tabs))
	for _, t := range c.Tabs {
		out = append(out, TabInfo{
			Name:    t.Name,
			Label:   t.Label,
			Allowed: authz.CanPerform(actor, t.Resource, authz.ActionView),
		})
	}
	return out
}

// OpenForm открывает форму на активной вкладке, заменяя уже открытую.
func (s *HierarchyService) OpenForm(ctx context.Context, actor *authz.Actor, key, recordID string) (*forms.RenderedForm, error) {
	c, err := s.composite(actor, key)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, actor, key)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("вкладка не выбрана: %w", apperrors.ErrSessionNotFound)
	}
	t, ok := c.Tab(state.Active)
	if !ok {
		return nil, apperrors.NewConfigurationError(key, "вкладка '%s' не объявлена", state.Active)
	}

	var preset map[string][]registry.Option
	if state.ForeignKey != "" && state.ForeignOptions != nil {
		preset = map[string][]registry.Option{state.ForeignKey: state.ForeignOptions}
	}

	rendered, err := s.forms.Open(ctx, actor, t.Resource.Key, recordID, nil, preset)
	if err != nil {
		return nil, err
	}

	if state.OpenFormID != "" {
		if err := s.forms.Discard(ctx, actor, state.OpenFormID); err != nil {
			s.logger.Warn("Прежняя форма не удалена", zap.String("form", state.OpenFormID), zap.Error(err))
		}
	}
	state.OpenFormID = rendered.ID
	if err := s.sessions.Save(ctx, tabKey(actor, key), state); err != nil {
		return nil, err
	}
	return rendered, nil
}
