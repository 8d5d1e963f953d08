package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/peek/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	status, err := fetch(context.Background(), ts.Client(), ts.URL+"/peek/alice")
	require.NoError(t, err)
	assert.Equal(t, "200 OK", status)

	status, err = fetch(context.Background(), ts.Client(), ts.URL+"/peek/missing")
	assert.Error(t, err)
	assert.Equal(t, "404 Not Found", status)
}

func TestPeekURL(t *testing.T) {
	testCases := []struct {
		desc string
		id   string
		kind string
		want string
	}{
		{
			desc: "Plain id",
			id:   "alice",
			want: "http://host/peek/alice",
		},
		{
			desc: "With fractal kind",
			id:   "alice",
			kind: "julia",
			want: "http://host/peek/alice?t=julia",
		},
		{
			desc: "Id with reserved characters stays one segment",
			id:   "a/b?c",
			want: "http://host/peek/a%2Fb%3Fc",
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, peekURL("http://host", tC.id, tC.kind))
		})
	}

	assert.Equal(t, "http://host/peek/a%2Fb/info", infoURL("http://host", "a/b"))
}

func TestFetch_EscapedID(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	}))
	defer ts.Close()

	_, err := fetch(context.Background(), ts.Client(), infoURL(ts.URL, "a/b?c"))
	require.NoError(t, err)
	assert.Equal(t, "/peek/a%2Fb%3Fc/info", gotPath)
}

func TestMakeCall_ServerDown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	assert.Error(t, MakeCall(context.Background(), http.DefaultClient, url))
}
