/*
 * SPDX-FileCopyrightText: © Hypermode Inc. <hello@hypermode.com>
 * SPDX-License-Identifier: Apache-2.0
 */

package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-gql/bookshelf/graphql/api"
	"github.com/bookshelf-gql/bookshelf/graphql/resolve"
	"github.com/bookshelf-gql/bookshelf/store"
)

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newTestServer(t *testing.T, st *store.Store, maxBody int64) (Endpoint, *httptest.Server) {
	r, err := resolve.New(st, resolve.Options{})
	require.NoError(t, err)
	gql := NewServer(r, maxBody)
	ts := httptest.NewServer(gql.Handler())
	t.Cleanup(ts.Close)
	return gql, ts
}

func decode(t *testing.T, body io.Reader) *gqlResponse {
	res := &gqlResponse{}
	require.NoError(t, json.NewDecoder(body).Decode(res))
	return res
}

func post(t *testing.T, ts *httptest.Server, contentType, body string) *gqlResponse {
	resp, err := http.Post(ts.URL, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	return decode(t, resp.Body)
}

func TestPostJSON(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 0)

	res := post(t, ts, "application/json",
		`{"query": "query Get($id: Int) { book(id: $id) { name authorId } }",
		  "operationName": "Get",
		  "variables": {"id": 3}}`)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{"name": "The Lord of the Rings", "authorId": float64(2)},
	}, res.Data)

	res = post(t, ts, "application/json; charset=utf-8",
		`{"query": "mutation { addAuthor(name: \"Y\") { id name } }"}`)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]interface{}{"id": float64(9), "name": "Y"}, res.Data["addAuthor"])
}

func TestPostGraphQL(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 0)

	res := post(t, ts, "application/graphql", `{ authors { name } }`)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data["authors"], 3)
}

func TestGet(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 0)

	params := url.Values{}
	params.Set("query", `query ($id: Int) { author(id: $id) { name } }`)
	params.Set("variables", `{"id": 2}`)
	resp, err := http.Get(ts.URL + "?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()

	res := decode(t, resp.Body)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]interface{}{"name": "J. R. R. Tolkien"}, res.Data["author"])
}

func TestRequestErrors(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 64)

	tcs := []struct {
		name        string
		method      string
		contentType string
		body        string
		message     string
	}{
		{"bad content type", http.MethodPost, "text/plain", `{ books { id } }`,
			"Unrecognised Content-Type"},
		{"no content type", http.MethodPost, "", `{ books { id } }`,
			"unable to parse media type"},
		{"bad json", http.MethodPost, "application/json", `{"query": `,
			"Not a valid GraphQL request body"},
		{"bad method", http.MethodPut, "application/json", `{"query": "{ books { id } }"}`,
			"Unrecognised request method"},
		{"body too large", http.MethodPost, "application/graphql", strings.Repeat(" ", 128) + `{ books { id } }`,
			"request body too large"},
		{"empty query", http.MethodPost, "application/json", `{"query": ""}`,
			"no query string supplied in request"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.URL, strings.NewReader(tc.body))
			require.NoError(t, err)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			res := decode(t, resp.Body)
			require.Nil(t, res.Data)
			require.Len(t, res.Errors, 1)
			require.Contains(t, res.Errors[0].Message, tc.message)
		})
	}
}

func TestGzip(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 0)

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	_, err := zw.Write([]byte(`{"query": "{ books { id } }"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Accept-Encoding", "gzip")

	// A custom transport keeps the client from transparently inflating the body.
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	res := decode(t, zr)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data["books"], 8)

	req, err = http.NewRequest(http.MethodPost, ts.URL, strings.NewReader("not gzip"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	res = decode(t, resp2.Body)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "Unable to parse gzip")
}

func TestOptions(t *testing.T) {
	_, ts := newTestServer(t, store.New(), 0)

	req, err := http.NewRequest(http.MethodOptions, ts.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestSwapResolver(t *testing.T) {
	gql, ts := newTestServer(t, store.New(), 0)

	res := post(t, ts, "application/graphql", `{ books { id } }`)
	require.Len(t, res.Data["books"], 8)

	r, err := resolve.New(store.NewFrom(nil, []store.Book{{ID: 1, Name: "Only", AuthorID: 1}}),
		resolve.Options{})
	require.NoError(t, err)
	gql.Swap(r)

	res = post(t, ts, "application/graphql", `{ books { name } }`)
	require.Equal(t, []interface{}{map[string]interface{}{"name": "Only"}}, res.Data["books"])
}

func TestPanicsAreRecovered(t *testing.T) {
	gql := NewServer(nil, 0)
	ts := httptest.NewServer(gql.Handler())
	defer ts.Close()

	res := post(t, ts, "application/graphql", `{ books { id } }`)
	require.Len(t, res.Errors, 1)
	require.Equal(t, api.ErrPanic, res.Errors[0].Message)
}

func TestGetMutationRejected(t *testing.T) {
	st := store.New()
	_, ts := newTestServer(t, st, 0)

	get := func(params url.Values) *gqlResponse {
		resp, err := http.Get(ts.URL + "?" + params.Encode())
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decode(t, resp.Body)
	}

	params := url.Values{}
	params.Set("query", `mutation { addBook(name: "ViaGET", authorId: 1) { id } }`)
	res := get(params)
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "Can only perform a mutation operation from a POST request",
		res.Errors[0].Message)

	params = url.Values{}
	params.Set("query", `query Q { books { id } } mutation M { addAuthor(name: "ViaGET") { id } }`)
	params.Set("operationName", "M")
	res = get(params)
	require.Len(t, res.Errors, 1)

	numAuthors, numBooks := st.Stats()
	require.Equal(t, 3, numAuthors)
	require.Equal(t, 8, numBooks)

	// The query in the same document still runs over GET.
	params.Set("operationName", "Q")
	res = get(params)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data["books"], 8)

	// And the mutation runs over POST.
	res = post(t, ts, "application/json",
		`{"query": "mutation { addBook(name: \"ViaPOST\", authorId: 1) { id } }"}`)
	require.Empty(t, res.Errors)
	_, numBooks = st.Stats()
	require.Equal(t, 9, numBooks)
}
