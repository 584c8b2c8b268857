package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Spok95/supply-bot/internal/infra/metrics"
	"github.com/google/uuid"
)

// BasePath: префикс REST-API склада.
const BasePath = "/api/inventory"

// ErrUnexpectedFormat: ответ пришёл с 2xx, но конверт не тот (success=false или data не той формы).
var ErrUnexpectedFormat = errors.New("response not in expected format")

// HTTPError: ответ бэкенда со статусом не 2xx.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

// RejectedError: 2xx, но success=false с сообщением. Текст ошибки равен сообщению бэкенда,
// errors.Is(err, ErrUnexpectedFormat) при этом остаётся истинным.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Is(target error) bool { return target == ErrUnexpectedFormat }

// envelope {success, message, data}
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	metrics    *metrics.Metrics
}

func New(baseURL string, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + BasePath,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		metrics:    m,
	}
}

// call выполняет запрос, отдаёт тело успешного ответа в decode и пишет метрику.
// Любая ошибка логируется здесь с контекстом запроса и возвращается наверх.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body any, decode func([]byte) error) (err error) {
	started := time.Now()
	reqID := uuid.NewString()
	defer func() {
		c.metrics.ObserveRequest(op, started, err)
		if err != nil {
			c.log.Error("backend request failed",
				"op", op, "method", method, "path", path, "request_id", reqID, "err", err)
		}
	}()

	raw, status, err := c.do(ctx, method, path, query, body, reqID)
	if err != nil {
		return err
	}
	c.log.Debug("backend request", "op", op, "path", path, "status", status, "request_id", reqID)
	if decode == nil {
		return nil
	}
	return decode(raw)
}

// do: сам HTTP-обмен. body сериализуется в JSON, nil означает запрос без тела.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, reqID string) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, statusError(resp, raw)
	}
	return raw, resp.StatusCode, nil
}

// statusError берёт message из JSON-тела, иначе "Error <code>: <text>".
func statusError(resp *http.Response, raw []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	var body struct {
		Message string `json:"message"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil && body.Message != "" {
		e.Message = body.Message
		return e
	}
	e.Message = fmt.Sprintf("Error %d: %s", resp.StatusCode, e.Status)
	return e
}

// unwrap проверяет конверт и раскладывает data в out.
func unwrap(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}
	if !env.Success {
		if env.Message != "" {
			return &RejectedError{Message: env.Message}
		}
		return ErrUnexpectedFormat
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrUnexpectedFormat
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}
	return nil
}

// unwrapVoid для операций без data. Пустое тело или тело без конверта тоже успех,
// явный success=false, нет.
func unwrapVoid(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Success == nil || *env.Success {
		return nil
	}
	if env.Message != "" {
		return &RejectedError{Message: env.Message}
	}
	return ErrUnexpectedFormat
}
