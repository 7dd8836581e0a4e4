// Файл: internal/services/entity.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/events"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/transport"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/eventbus"
	"backoffice-console/pkg/utils"

	"go.uber.org/zap"
)

const PaginationHeader = "pagination"

// Publisher - шина событий (nil-значение допустимо: события тогда не публикуются).
type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type PaginatedResult struct {
	Items      []map[string]any `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalItems int              `json:"total_items"`
	// TotalKnown - итог взят из заголовка пагинации, а не из длины страницы.
	TotalKnown bool `json:"-"`
}

type paginationMeta struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
}

type Row struct {
	ID      string         `json:"id"`
	Cells   map[string]any `json:"cells"`
	Actions []authz.Action `json:"actions"`
}

// TableView - строки таблицы ресурса: по одной на запись, колонка действий последней.
type TableView struct {
	Columns    []registry.ColumnDescriptor `json:"columns"`
	Rows       []Row                       `json:"rows"`
	Page       int                         `json:"page"`
	PageSize   int                         `json:"page_size"`
	TotalItems int                         `json:"total_items"`
}

type EntityServiceInterface interface {
	List(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, page, pageSize int, filters map[string]string) (*PaginatedResult, error)
	Find(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string) (map[string]any, error)
	Create(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, values map[string]any) error
	Update(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string, values map[string]any) error
	Remove(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string, confirmed bool) error
	Rows(actor *authz.Actor, desc *registry.ResourceDescriptor, result *PaginatedResult) TableView
}

type EntityService struct {
	transport transport.Transport
	bus       Publisher
	logger    *zap.Logger
}

func NewEntityService(t transport.Transport, bus Publisher, logger *zap.Logger) EntityServiceInterface {
	return &EntityService{
		transport: t,
		bus:       bus,
		logger:    logger.Named("entity_service"),
	}
}

// authorize - отказ в доступе не является сбоем системы и пишется только в debug.
func (s *EntityService) authorize(actor *authz.Actor, desc *registry.ResourceDescriptor, action authz.Action) error {
	if err := authz.Require(actor, desc, action); err != nil {
		s.logger.Debug("Действие запрещено",
			zap.String("resource", desc.Key),
			zap.String("action", string(action)),
			zap.String("userID", actor.UserID()),
		)
		return err
	}
	return nil
}

func (s *EntityService) List(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, page, pageSize int, filters map[string]string) (*PaginatedResult, error) {
	if err := s.authorize(actor, desc, authz.ActionView); err != nil {
		return nil, err
	}
	page, pageSize = utils.NormalizePage(page, pageSize)

	query := url.Values{}
	query.Set("PageNumber", strconv.Itoa(page))
	query.Set("PageSize", strconv.Itoa(pageSize))
	if desc.Searchable {
		for key, value := range searchFilters(desc, filters) {
			query.Set(key, value)
		}
	}

	resp, err := s.transport.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		URL:      desc.ListEndpoint,
		Query:    query,
		Resource: desc.Key,
	})
	if err != nil {
		return nil, err
	}

	items, err := transport.DecodeList(resp)
	if err != nil {
		s.logger.Error("Неожиданный формат списка", zap.String("resource", desc.Key), zap.Error(err))
		return nil, &apperrors.TransportError{
			Resource:   desc.Key,
			Method:     http.MethodGet,
			URL:        desc.ListEndpoint,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	result := &PaginatedResult{Items: items, Page: page, PageSize: pageSize, TotalItems: len(items)}
	if raw := resp.Headers.Get(PaginationHeader); raw != "" {
		var meta paginationMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			s.logger.Warn("Заголовок пагинации не разобран, итог по длине списка",
				zap.String("resource", desc.Key), zap.String("header", raw), zap.Error(err))
		} else {
			result.TotalItems = meta.TotalItems
			result.TotalKnown = true
			if meta.CurrentPage > 0 {
				result.Page = meta.CurrentPage
			}
			if meta.ItemsPerPage > 0 {
				result.PageSize = meta.ItemsPerPage
			}
		}
	}
	return result, nil
}

// collectPages читает список страницами по MaxPageSize до конца или до maxPages.
// truncated == true, если лимит страниц исчерпан раньше, чем записи.
func collectPages(ctx context.Context, entities EntityServiceInterface, actor *authz.Actor, desc *registry.ResourceDescriptor, filters map[string]string, maxPages int) (items []map[string]any, truncated bool, err error) {
	items = []map[string]any{}
	for page := 1; page <= maxPages; page++ {
		result, err := entities.List(ctx, actor, desc, page, utils.MaxPageSize, filters)
		if err != nil {
			return nil, false, err
		}
		items = append(items, result.Items...)
		if len(result.Items) == 0 || len(result.Items) < result.PageSize {
			return items, false, nil
		}
		if result.TotalKnown && len(items) >= result.TotalItems {
			return items, false, nil
		}
	}
	return items, true, nil
}

// searchFilters оставляет только объявленные ресурсом ключи поиска (без учёта регистра).
func searchFilters(desc *registry.ResourceDescriptor, filters map[string]string) map[string]string {
	out := make(map[string]string)
	for key, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for _, allowed := range desc.SearchKeys {
			if strings.EqualFold(key, allowed) {
				out[allowed] = value
				break
			}
		}
	}
	return out
}

// Find читает одну запись для формы редактирования.
func (s *EntityService) Find(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string) (map[string]any, error) {
	if err := s.authorize(actor, desc, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrBadRequest
	}

	resp, err := s.transport.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		URL:      desc.UpdateEndpointFor(url.PathEscape(id)),
		Resource: desc.Key,
	})
	if err != nil {
		var remoteErr *apperrors.TransportError
		if errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", desc.Key, id, apperrors.ErrNotFound)
		}
		return nil, err
	}

	var record map[string]any
	if err := json.Unmarshal(resp.Data, &record); err != nil || record == nil {
		return nil, fmt.Errorf("%s/%s: %w", desc.Key, id, apperrors.ErrNotFound)
	}
	return record, nil
}

func (s *EntityService) Create(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, values map[string]any) error {
	if err := s.authorize(actor, desc, authz.ActionCreate); err != nil {
		return err
	}
	payload, err := desc.Payload(values, "")
	if err != nil {
		return &apperrors.ValidationError{Fields: map[string]string{"form": err.Error()}}
	}

	_, err = s.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		URL:      desc.CreateEndpoint,
		Body:     payload,
		Resource: desc.Key,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Запись создана", zap.String("resource", desc.Key), zap.String("userID", actor.UserID()))
	s.publish(ctx, actor, desc, authz.ActionCreate, "")
	return nil
}

func (s *EntityService) Update(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string, values map[string]any) error {
	if err := s.authorize(actor, desc, authz.ActionUpdate); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrBadRequest
	}
	payload, err := desc.Payload(values, id)
	if err != nil {
		return &apperrors.ValidationError{Fields: map[string]string{"form": err.Error()}}
	}

	_, err = s.transport.Do(ctx, transport.Request{
		Method:   http.MethodPut,
		URL:      desc.UpdateEndpointFor(url.PathEscape(id)),
		Body:     payload,
		Resource: desc.Key,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Запись обновлена", zap.String("resource", desc.Key), zap.String("id", id))
	s.publish(ctx, actor, desc, authz.ActionUpdate, id)
	return nil
}

// Remove требует подтверждения. Способ передачи id задаёт дескриптор: в пути или в теле.
func (s *EntityService) Remove(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, id string, confirmed bool) error {
	if err := s.authorize(actor, desc, authz.ActionDelete); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrBadRequest
	}
	if !confirmed {
		return apperrors.ErrConfirmationRequired
	}

	req := transport.Request{Method: http.MethodDelete, Resource: desc.Key}
	switch desc.DeleteMode {
	case registry.DeleteByBody:
		req.URL = desc.DeleteEndpointFor(id)
		req.Body = map[string]any{desc.DeleteBodyKey: wireID(id)}
	default:
		req.URL = desc.DeleteEndpointFor(url.PathEscape(id))
	}

	if _, err := s.transport.Do(ctx, req); err != nil {
		return err
	}

	s.logger.Info("Запись удалена", zap.String("resource", desc.Key), zap.String("id", id))
	s.publish(ctx, actor, desc, authz.ActionDelete, id)
	return nil
}

func wireID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func (s *EntityService) publish(ctx context.Context, actor *authz.Actor, desc *registry.ResourceDescriptor, action authz.Action, id string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.ResourceMutatedEvent{
		ActorID:    actor.UserID(),
		Resource:   desc.Key,
		Action:     string(action),
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
	})
}

// Rows строит по строке на запись. В колонке действий - только разрешённые актору.
func (s *EntityService) Rows(actor *authz.Actor, desc *registry.ResourceDescriptor, result *PaginatedResult) TableView {
	columns := desc.TableColumns()

	var actions []authz.Action
	for _, a := range []authz.Action{authz.ActionUpdate, authz.ActionDelete} {
		if authz.CanPerform(actor, desc, a) {
			actions = append(actions, a)
		}
	}
	if actions == nil {
		actions = []authz.Action{}
	}
	columns[len(columns)-1].Actions = actions

	view := TableView{Columns: columns, Rows: make([]Row, 0)}
	if result == nil {
		return view
	}
	view.Page, view.PageSize, view.TotalItems = result.Page, result.PageSize, result.TotalItems

	for _, item := range result.Items {
		row := Row{
			ID:      registry.RecordID(item),
			Cells:   make(map[string]any, len(columns)),
			Actions: actions,
		}
		for _, col := range columns {
			if col.DataKey == registry.ActionsColumnKey {
				continue
			}
			row.Cells[col.DataKey] = renderCell(col, item[col.DataKey])
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func renderCell(col registry.ColumnDescriptor, raw any) any {
	if raw == nil {
		return nil
	}
	switch col.Render {
	case registry.RenderDate:
		if t, err := registry.ParseCalendarDate(raw); err == nil {
			return t.Format(registry.DateLayout)
		}
	case registry.RenderBool:
		if v, ok := raw.(bool); ok {
			if v {
				return "Yes"
			}
			return "No"
		}
	case registry.RenderOption:
		return registry.OptionValue(raw)
	}
	return raw
}
