package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-sentiment/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwitterRepository_SearchPostsPaginates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "$ABC", r.URL.Query().Get("query"))

		resp := dto.TwitterSearchResponse{}
		switch r.URL.Query().Get("next_token") {
		case "":
			assert.Equal(t, "100", r.URL.Query().Get("max_results"))
			for i := 0; i < 100; i++ {
				resp.Data = append(resp.Data, dto.Tweet{ID: fmt.Sprint(i), Text: fmt.Sprintf("tweet %d", i)})
			}
			resp.Meta.NextToken = "page-2"
		case "page-2":
			assert.Equal(t, "50", r.URL.Query().Get("max_results"))
			resp.Data = []dto.Tweet{{ID: "a", Text: "last &amp; final"}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := newTestConfig(t)
	cfg.Twitter.BaseURL = srv.URL
	cfg.Twitter.BearerToken = "test-token"

	repo := NewTwitterRepository(cfg, testLogger())
	posts, err := repo.SearchPosts(context.Background(), "abc", 150)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, posts, 101)
	assert.Equal(t, "tweet 0", posts[0])
	assert.Equal(t, "last & final", posts[100])
}

func TestTwitterRepository_StopsAtCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := dto.TwitterSearchResponse{Meta: dto.TwitterMeta{NextToken: "more"}}
		for i := 0; i < 10; i++ {
			resp.Data = append(resp.Data, dto.Tweet{Text: "post"})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := newTestConfig(t)
	cfg.Twitter.BaseURL = srv.URL
	cfg.Twitter.BearerToken = "test-token"

	posts, err := NewTwitterRepository(cfg, testLogger()).SearchPosts(context.Background(), "abc", 3)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestTwitterRepository_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := newTestConfig(t)
	cfg.Twitter.BaseURL = srv.URL
	cfg.Twitter.BearerToken = "test-token"

	_, err := NewTwitterRepository(cfg, testLogger()).SearchPosts(context.Background(), "abc", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTwitterRepository_MissingToken(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Twitter.BearerToken = ""

	_, err := NewTwitterRepository(cfg, testLogger()).SearchPosts(context.Background(), "abc", 10)
	assert.Error(t, err)
}
