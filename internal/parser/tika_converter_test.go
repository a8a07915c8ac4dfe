package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTikaConvertToHTML(t *testing.T) {
	var gotAccept, gotResource, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		gotAccept = r.Header.Get("Accept")
		gotResource = r.Header.Get("X-Tika-Resource-Name")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("<html><body><p>converted</p></body></html>"))
	}))
	defer server.Close()

	converter := NewTikaConverter(server.URL)
	htmlOut, err := converter.ConvertToHTML(context.Background(), strings.NewReader("%PDF-1.4 fake"), "resume.pdf")

	require.NoError(t, err)
	assert.Contains(t, htmlOut, "converted")
	assert.Equal(t, "text/html", gotAccept)
	assert.Equal(t, "resume.pdf", gotResource)
	assert.Equal(t, "application/pdf", gotContentType)
}

func TestTikaConvertDocxContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", r.Header.Get("Content-Type"))
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := NewTikaConverter(server.URL).ConvertToHTML(context.Background(), strings.NewReader("docx bytes"), "cv.DOCX")
	require.NoError(t, err)
}

func TestTikaConvertServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tika exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewTikaConverter(server.URL).ConvertToHTML(context.Background(), strings.NewReader("data"), "resume.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
