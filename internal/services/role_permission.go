package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/events"
	"backoffice-console/internal/repositories"
	"backoffice-console/internal/transport"
	apperrors "backoffice-console/pkg/errors"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	RolesEndpoint       = "/role"
	PermissionsEndpoint = "/permission"

	roleEditorScreen = "role-permissions"

	OperationSave   = "save"
	OperationRevoke = "revoke"
)

func rolePermissionsEndpoint(role string) string {
	return fmt.Sprintf("/permission/role/%s/permissions", url.PathEscape(role))
}

// Permission - запись каталога прав.
type Permission struct {
	Code        string      `json:"code"`
	Description null.String `json:"description"`
}

// Selection - рабочий набор редактора: код -> описание (null - без описания).
type Selection map[string]null.String

func catalogEntry(catalog []Permission, code string) (Permission, bool) {
	for _, p := range catalog {
		if p.Code == code {
			return p, true
		}
	}
	return Permission{}, false
}

// Toggle добавляет код с описанием из каталога или убирает его. Неизвестный код - ошибка.
func (s Selection) Toggle(code string, catalog []Permission) error {
	if _, ok := s[code]; ok {
		delete(s, code)
		return nil
	}
	p, ok := catalogEntry(catalog, code)
	if !ok {
		return fmt.Errorf("код '%s' отсутствует в каталоге: %w", code, apperrors.ErrBadRequest)
	}
	s[code] = p.Description
	return nil
}

// SetDescription меняет описание только у выбранного кода.
func (s Selection) SetDescription(code, text string) error {
	if _, ok := s[code]; !ok {
		return fmt.Errorf("код '%s' не выбран: %w", code, apperrors.ErrBadRequest)
	}
	if strings.TrimSpace(text) == "" {
		s[code] = null.String{}
		return nil
	}
	s[code] = null.StringFrom(text)
	return nil
}

// SelectAll выбирает весь каталог; уже заданные описания сохраняются.
func (s Selection) SelectAll(catalog []Permission) {
	for _, p := range catalog {
		if _, ok := s[p.Code]; !ok {
			s[p.Code] = p.Description
		}
	}
}

func (s Selection) ClearAll() {
	for code := range s {
		delete(s, code)
	}
}

type PermissionAssignment struct {
	Permission  string      `json:"permission"`
	Description null.String `json:"description"`
}

// Entries - содержимое выбора по возрастанию кода.
func (s Selection) Entries() []PermissionAssignment {
	out := make([]PermissionAssignment, 0, len(s))
	for code, desc := range s {
		out = append(out, PermissionAssignment{Permission: code, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Permission < out[j].Permission })
	return out
}

func (s Selection) Codes() []string {
	codes := make([]string, 0, len(s))
	for _, e := range s.Entries() {
		codes = append(codes, e.Permission)
	}
	return codes
}

// EditorState - сессия редактора прав одного оператора.
type EditorState struct {
	Selection Selection    `json:"selection"`
	Catalog   []Permission `json:"catalog"`
}

// EditorScreen - экран редактора. Ошибка каждой половины загрузки отдаётся отдельно.
type EditorScreen struct {
	Roles        []string               `json:"roles"`
	RolesError   string                 `json:"roles_error,omitempty"`
	Catalog      []Permission           `json:"catalog"`
	CatalogError string                 `json:"catalog_error,omitempty"`
	Selection    []PermissionAssignment `json:"selection"`
}

type RoleResult struct {
	Role string `json:"role"`
	OK   bool   `json:"ok"`
	Err  error  `json:"-"`
}

func (r RoleResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Role  string `json:"role"`
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}{Role: r.Role, OK: r.OK}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// BatchResult - итог пакетной операции, по записи на роль в порядке запроса.
type BatchResult struct {
	Operation   string       `json:"operation"`
	Results     []RoleResult `json:"results"`
	FullReplace bool         `json:"full_replace"`
}

// Err - nil при полном успехе, иначе PartialBatchError с итогом по каждой роли.
func (b BatchResult) Err() error {
	units := make([]apperrors.UnitResult, 0, len(b.Results))
	failed := false
	for _, r := range b.Results {
		u := apperrors.UnitResult{Unit: r.Role, OK: r.OK}
		if r.Err != nil {
			u.Err = r.Err.Error()
		}
		if !r.OK {
			failed = true
		}
		units = append(units, u)
	}
	if !failed {
		return nil
	}
	return &apperrors.PartialBatchError{Units: units}
}

type RolePermissionServiceInterface interface {
	LoadScreen(ctx context.Context, actor *authz.Actor) (*EditorScreen, error)
	Toggle(ctx context.Context, actor *authz.Actor, code string) (*EditorState, error)
	SetDescription(ctx context.Context, actor *authz.Actor, code, text string) (*EditorState, error)
	SelectAll(ctx context.Context, actor *authz.Actor) (*EditorState, error)
	ClearAll(ctx context.Context, actor *authz.Actor) (*EditorState, error)
	Save(ctx context.Context, actor *authz.Actor, roles []string) (*BatchResult, error)
	Revoke(ctx context.Context, actor *authz.Actor, roles []string) (*BatchResult, error)
}

type RolePermissionService struct {
	transport   transport.Transport
	sessions    repositories.SessionRepositoryInterface
	bus         Publisher
	concurrency int
	logger      *zap.Logger

	locks *keyedLock
}

func NewRolePermissionService(
	t transport.Transport,
	sessions repositories.SessionRepositoryInterface,
	bus Publisher,
	concurrency int,
	logger *zap.Logger,
) RolePermissionServiceInterface {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RolePermissionService{
		transport:   t,
		sessions:    sessions,
		bus:         bus,
		concurrency: concurrency,
		logger:      logger.Named("role_permission_service"),
		locks:       newKeyedLock(),
	}
}

func editorKey(actor *authz.Actor) string {
	return fmt.Sprintf("editor:%s", actor.UserID())
}

func (s *RolePermissionService) authorize(actor *authz.Actor) error {
	if err := authz.RequireCode(actor, roleEditorScreen, authz.RolePermissionsManage); err != nil {
		s.logger.Debug("Редактор прав недоступен", zap.String("userID", actor.UserID()))
		return err
	}
	return nil
}

func (s *RolePermissionService) lock(actor *authz.Actor) func() {
	return s.locks.Lock(actor.UserID())
}

func (s *RolePermissionService) loadState(ctx context.Context, actor *authz.Actor) (*EditorState, error) {
	state := &EditorState{}
	err := s.sessions.Load(ctx, editorKey(actor), state)
	if err != nil && !errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, err
	}
	if state.Selection == nil {
		state.Selection = Selection{}
	}
	return state, nil
}

func (s *RolePermissionService) fetchRoles(ctx context.Context) ([]string, error) {
	resp, err := s.transport.Do(ctx, transport.Request{Method: http.MethodGet, URL: RolesEndpoint, Resource: roleEditorScreen})
	if err != nil {
		return nil, err
	}
	items, err := transport.DecodeList(resp)
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item["name"].(string); ok && name != "" {
			roles = append(roles, name)
		}
	}
	return roles, nil
}

func (s *RolePermissionService) fetchCatalog(ctx context.Context) ([]Permission, error) {
	resp, err := s.transport.Do(ctx, transport.Request{Method: http.MethodGet, URL: PermissionsEndpoint, Resource: roleEditorScreen})
	if err != nil {
		return nil, err
	}
	items, err := transport.DecodeList(resp)
	if err != nil {
		return nil, err
	}
	catalog := make([]Permission, 0, len(items))
	for _, item := range items {
		code, _ := item["code"].(string)
		if code == "" {
			code, _ = item["name"].(string)
		}
		if code == "" {
			continue
		}
		p := Permission{Code: code}
		if desc, ok := item["description"].(string); ok && desc != "" {
			p.Description = null.StringFrom(desc)
		}
		catalog = append(catalog, p)
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Code < catalog[j].Code })
	return catalog, nil
}

// LoadScreen грузит роли и каталог параллельно. Провал одной половины не отменяет другую.
func (s *RolePermissionService) LoadScreen(ctx context.Context, actor *authz.Actor) (*EditorScreen, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		roles      []string
		rolesErr   error
		catalog    []Permission
		catalogErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		roles, rolesErr = s.fetchRoles(ctx)
	}()
	go func() {
		defer wg.Done()
		catalog, catalogErr = s.fetchCatalog(ctx)
	}()
	wg.Wait()

	unlock := s.lock(actor)
	defer unlock()

	state, err := s.loadState(ctx, actor)
	if err != nil {
		return nil, err
	}

	screen := &EditorScreen{Roles: roles, Catalog: state.Catalog}
	if rolesErr != nil {
		screen.Roles = []string{}
		screen.RolesError = rolesErr.Error()
		s.logger.Warn("Роли не загружены", zap.Error(rolesErr))
	}
	if catalogErr != nil {
		screen.CatalogError = catalogErr.Error()
		s.logger.Warn("Каталог прав не загружен", zap.Error(catalogErr))
	} else {
		state.Catalog = catalog
		screen.Catalog = catalog
		if err := s.sessions.Save(ctx, editorKey(actor), state); err != nil {
			return nil, err
		}
	}
	if screen.Catalog == nil {
		screen.Catalog = []Permission{}
	}
	screen.Selection = state.Selection.Entries()
	return screen, nil
}

func (s *RolePermissionService) mutate(ctx context.Context, actor *authz.Actor, fn func(*EditorState) error) (*EditorState, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	unlock := s.lock(actor)
	defer unlock()

	state, err := s.loadState(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, editorKey(actor), state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *RolePermissionService) Toggle(ctx context.Context, actor *authz.Actor, code string) (*EditorState, error) {
	return s.mutate(ctx, actor, func(st *EditorState) error {
		return st.Selection.Toggle(code, st.Catalog)
	})
}

func (s *RolePermissionService) SetDescription(ctx context.Context, actor *authz.Actor, code, text string) (*EditorState, error) {
	return s.mutate(ctx, actor, func(st *EditorState) error {
		return st.Selection.SetDescription(code, text)
	})
}

func (s *RolePermissionService) SelectAll(ctx context.Context, actor *authz.Actor) (*EditorState, error) {
	return s.mutate(ctx, actor, func(st *EditorState) error {
		st.Selection.SelectAll(st.Catalog)
		return nil
	})
}

func (s *RolePermissionService) ClearAll(ctx context.Context, actor *authz.Actor) (*EditorState, error) {
	return s.mutate(ctx, actor, func(st *EditorState) error {
		st.Selection.ClearAll()
		return nil
	})
}

// Save заменяет весь набор прав каждой роли текущим выбором (не слияние).
// Роли обрабатываются независимо, транзакции между ролями нет.
func (s *RolePermissionService) Save(ctx context.Context, actor *authz.Actor, roles []string) (*BatchResult, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	roles, err := normalizeRoles(roles)
	if err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, actor)
	if err != nil {
		return nil, err
	}
	body := map[string]any{"permissionsWithDescriptions": state.Selection.Entries()}
	codes := state.Selection.Codes()

	result := s.fanOut(ctx, OperationSave, roles, func(ctx context.Context, role string) error {
		_, err := s.transport.Do(ctx, transport.Request{
			Method:   http.MethodPut,
			URL:      rolePermissionsEndpoint(role),
			Body:     body,
			Resource: roleEditorScreen,
		})
		return err
	})
	result.FullReplace = true
	s.announce(ctx, actor, result, codes)
	return result, nil
}

// Revoke снимает с каждой роли все права.
func (s *RolePermissionService) Revoke(ctx context.Context, actor *authz.Actor, roles []string) (*BatchResult, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	roles, err := normalizeRoles(roles)
	if err != nil {
		return nil, err
	}

	result := s.fanOut(ctx, OperationRevoke, roles, func(ctx context.Context, role string) error {
		_, err := s.transport.Do(ctx, transport.Request{
			Method:   http.MethodDelete,
			URL:      rolePermissionsEndpoint(role),
			Resource: roleEditorScreen,
		})
		return err
	})
	s.announce(ctx, actor, result, nil)
	return result, nil
}

func normalizeRoles(roles []string) ([]string, error) {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, &apperrors.ValidationError{Fields: map[string]string{"roles": "не выбрана ни одна роль"}}
	}
	return out, nil
}

// fanOut - ошибка одной роли не останавливает остальные, поэтому горутины всегда возвращают nil.
func (s *RolePermissionService) fanOut(ctx context.Context, operation string, roles []string, call func(ctx context.Context, role string) error) *BatchResult {
	results := make([]RoleResult, len(roles))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, role := range roles {
		g.Go(func() error {
			err := call(ctx, role)
			results[i] = RoleResult{Role: role, OK: err == nil, Err: err}
			if err != nil {
				s.logger.Error("Операция над ролью не выполнена",
					zap.String("operation", operation), zap.String("role", role), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return &BatchResult{Operation: operation, Results: results}
}

func (s *RolePermissionService) announce(ctx context.Context, actor *authz.Actor, result *BatchResult, codes []string) {
	if s.bus == nil {
		return
	}
	now := time.Now().UTC()
	for _, r := range result.Results {
		e := events.RolePermissionsAppliedEvent{
			ActorID:    actor.UserID(),
			Role:       r.Role,
			Operation:  result.Operation,
			Codes:      codes,
			OccurredAt: now,
		}
		if r.Err != nil {
			e.Err = r.Err.Error()
		}
		s.bus.Publish(ctx, e)
	}
}
