package spotify

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// maxErrorBody ограничивает размер тела ошибки, сохраняемого для LookupFailedError
const maxErrorBody = 4096

// tokenTransport добавляет токен к каждому запросу и запоминает последний неуспешный ответ
type tokenTransport struct {
	base          http.RoundTripper
	authorization string

	mu         sync.Mutex
	failStatus int
	failBody   string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip не должен менять исходный запрос
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", t.authorization)

	// Используем DefaultTransport если base равен nil
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		if readErr != nil {
			body = nil
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))

		t.mu.Lock()
		t.failStatus = resp.StatusCode
		t.failBody = strings.TrimSpace(string(body))
		t.mu.Unlock()
	}

	return resp, nil
}

// failure возвращает статус и тело последнего неуспешного ответа
func (t *tokenTransport) failure() (int, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failStatus, t.failBody
}
