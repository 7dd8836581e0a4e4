package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Request - логический запрос к удалённому API.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   any
	// Resource - ключ ресурса для адресных уведомлений об ошибке.
	Resource string
}

type Response struct {
	StatusCode int
	Data       json.RawMessage
	Headers    http.Header
}

// Transport - коллаборатор HTTP: аутентифицированные GET/POST/PUT/DELETE.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

type RestyTransport struct {
	client *resty.Client
	logger *zap.Logger
}

// New - повторов нет: ни одна операция движка не повторяется автоматически.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *RestyTransport {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RestyTransport{
		client: client,
		logger: logger.Named("transport"),
	}
}

func (t *RestyTransport) Do(ctx context.Context, req Request) (*Response, error) {
	r := t.client.R().SetContext(ctx)
	if token := utils.GetBearerTokenFromCtx(ctx); token != "" {
		r.SetAuthToken(token)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		t.logger.Error("Сбой запроса к удалённому API",
			zap.String("resource", req.Resource),
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Error(err),
		)
		return nil, &apperrors.TransportError{
			Resource: req.Resource,
			Method:   req.Method,
			URL:      req.URL,
			Err:      err,
		}
	}

	if resp.IsError() {
		msg := remoteMessage(resp.Body())
		t.logger.Error("Удалённый API вернул ошибку",
			zap.String("resource", req.Resource),
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", msg),
		)
		return nil, &apperrors.TransportError{
			Resource:   req.Resource,
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: resp.StatusCode(),
			Message:    msg,
		}
	}

	t.logger.Debug("Запрос к удалённому API выполнен",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode()),
	)

	return &Response{
		StatusCode: resp.StatusCode(),
		Data:       json.RawMessage(resp.Body()),
		Headers:    resp.Header(),
	}, nil
}

// remoteMessage вытаскивает текст ошибки из тела ответа, если он там есть.
func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, s := range []string{parsed.Message, parsed.Title, parsed.Error} {
			if s != "" {
				return s
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return "пустой ответ"
	}
	return text
}

// DecodeList разбирает массив записей; пустое тело - пустой список.
func DecodeList(resp *Response) ([]map[string]any, error) {
	if resp == nil || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return []map[string]any{}, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		return nil, fmt.Errorf("ожидался массив записей: %w", err)
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items, nil
}
