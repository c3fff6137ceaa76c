// Cliente mínimo para la REST API de Upstash Redis. Los comandos van
// como array JSON por POST y la respuesta llega en {"result": ...}.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// command ejecuta un comando Redis y devuelve el result crudo.
// Maneja 429 con Retry-After igual que hacemos con las otras APIs.
func (c *Client) command(ctx context.Context, args []any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		if ra := res.Header.Get("Retry-After"); ra != "" {
			if sec, _ := strconv.Atoi(ra); sec > 0 {
				select {
				case <-time.After(time.Duration(sec) * time.Second):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				// un reintento
				return c.command(ctx, args)
			}
		}
	}

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var rr restResponse
	if err := json.NewDecoder(res.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("upstash decode: %w", err)
	}
	if rr.Error != "" {
		return nil, fmt.Errorf("upstash: %s", rr.Error)
	}
	return rr.Result, nil
}

func (c *Client) LRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	raw, err := c.command(ctx, []any{"LRANGE", key, start, stop})
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	return out, nil
}

type ZMember struct {
	Member string
	Score  float64
}

// ZRevRangeWithScores: Upstash devuelve el WITHSCORES como array plano
// [member, score, member, score, ...] con scores en string.
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int) ([]ZMember, error) {
	raw, err := c.command(ctx, []any{"ZREVRANGE", key, start, stop, "WITHSCORES"})
	if err != nil {
		return nil, err
	}
	flat, err := decodeFlat(raw)
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	out := make([]ZMember, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		score, _ := strconv.ParseFloat(flat[i+1], 64)
		out = append(out, ZMember{Member: flat[i], Score: score})
	}
	return out, nil
}

// HGetAll: también llega plano [campo, valor, ...].
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	raw, err := c.command(ctx, []any{"HGETALL", key})
	if err != nil {
		return nil, err
	}
	flat, err := decodeFlat(raw)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	out := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out[flat[i]] = flat[i+1]
	}
	return out, nil
}

// decodeFlat tolera números sin comillas en el array.
func decodeFlat(raw json.RawMessage) ([]string, error) {
	var anyFlat []any
	if err := json.Unmarshal(raw, &anyFlat); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(anyFlat))
	for _, v := range anyFlat {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("elemento inesperado %T", v)
		}
	}
	return out, nil
}
