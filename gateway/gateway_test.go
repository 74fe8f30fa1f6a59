package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoFirstCandidateWins(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"source":"primary"}`))
	}))
	defer primary.Close()
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("secondary should not be hit")
	}))
	defer secondary.Close()

	c := New([]string{primary.URL, secondary.URL}, time.Second)
	res := c.Do(context.Background(), http.MethodGet, "/api/inventory/", nil, CallOpts{})
	require.True(t, res.OK)
	require.Equal(t, http.StatusOK, res.Status)
	require.JSONEq(t, `{"source":"primary"}`, string(res.Data))
}

func TestDoFallsThroughOnServerError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"source":"fallback"}`))
	}))
	defer good.Close()

	c := New([]string{bad.URL, good.URL}, time.Second)
	res := c.Do(context.Background(), http.MethodGet, "/x", nil, CallOpts{})
	require.True(t, res.OK)
	require.JSONEq(t, `{"source":"fallback"}`, string(res.Data))
}

func TestDoAllCandidatesUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	dead.Close() // 网络错误

	c := New([]string{dead.URL}, time.Second)
	res := c.Do(context.Background(), http.MethodGet, "/x", nil, CallOpts{})
	require.False(t, res.OK)
	require.Equal(t, 0, res.Status) // 没有任何应答才是 0
	require.Nil(t, res.Data)
	require.NotEmpty(t, res.Err)
}

func TestDoCarriesLastUpstreamStatus(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(http.NotFound))
	dead.Close()

	unauth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid token."}`, http.StatusUnauthorized)
	}))
	defer unauth.Close()

	// 上游有应答但拒绝：状态要透出来，不能和网络不通混为一谈
	c := New([]string{dead.URL, unauth.URL}, time.Second)
	res := c.Do(context.Background(), http.MethodGet, "/x", nil, CallOpts{})
	require.False(t, res.OK)
	require.Equal(t, http.StatusUnauthorized, res.Status)
	require.Nil(t, res.Data)
}

func TestDoAuthHeaders(t *testing.T) {
	var gotAuth, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)

	c.Do(context.Background(), http.MethodGet, "/x", nil, CallOpts{Token: "abc"})
	require.Equal(t, "Token abc", gotAuth)
	require.Empty(t, gotCookie)

	c.Do(context.Background(), http.MethodGet, "/x", nil, CallOpts{Cookie: "sessionid=s1"})
	require.Empty(t, gotAuth)
	require.Equal(t, "sessionid=s1", gotCookie)
}

func TestDoSendsJSONBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	res := c.Do(context.Background(), http.MethodPost, "/x", map[string]any{"a": float64(1)}, CallOpts{})
	require.True(t, res.OK)
	require.Equal(t, http.StatusCreated, res.Status)
	require.Equal(t, map[string]any{"a": float64(1)}, got)
}

func TestUpdateItemStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/borrow-requests/12/update_item_statuses/", r.URL.Path)

		var body struct {
			Items []ItemUpdate `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Items, 1)
		require.Equal(t, int64(5), body.Items[0].ID)

		w.Write([]byte(`{"updated_count":1,"skipped_ids":[9]}`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	out, res := c.UpdateItemStatuses(context.Background(), "12",
		[]ItemUpdate{{ID: 5, Status: "returned"}}, CallOpts{})
	require.True(t, res.OK)
	require.Equal(t, 1, out.UpdatedCount)
	require.Equal(t, []int64{9}, out.SkippedIDs)
}

func TestHistoryFallsBackToStatusFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/borrow-requests/history/" {
			http.NotFound(w, r)
			return
		}
		require.Equal(t, "returned", r.URL.Query().Get("status"))
		w.Write([]byte(`[{"id":3,"request_id":"AB12CDE","items":[{"id":7,"status":"returned"}]}]`))
	}))
	defer srv.Close()

	c := New([]string{srv.URL}, time.Second)
	list, res := c.History(context.Background(), CallOpts{})
	require.True(t, res.OK)
	require.Len(t, list, 1)
	require.Equal(t, int64(3), list[0].ID)
}
