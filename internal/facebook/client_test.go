package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{GraphVersion: "v23.0", PageID: "PAGE", AccessToken: "token"})
	client.SetBaseURL(srv.URL)
	return client, srv
}

func TestPublishTextSuccess(t *testing.T) {
	var gotPath, gotMessage, gotToken string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotMessage = r.PostFormValue("message")
		gotToken = r.PostFormValue("access_token")
		w.Write([]byte(`{"id":"123_456"}`))
	})

	result, err := client.PublishText(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.PostID != "123_456" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotPath != "/v23.0/PAGE/feed" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotMessage != "hello world" || gotToken != "token" {
		t.Fatalf("unexpected form values: message=%q token=%q", gotMessage, gotToken)
	}
}

func TestPublishTextPrefersPlatformErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	})

	result, err := client.PublishText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "Invalid OAuth access token" {
		t.Fatalf("unexpected error message: %q", result.Error)
	}
}

func TestPublishTextStatusFallbackMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	result, err := client.PublishText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.Error != "publish failed with status 500" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPublishTextTransportErrorClass(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(Config{PageID: "PAGE", AccessToken: "token"})
	client.SetBaseURL(srv.URL)
	srv.Close() // 端口已关闭，连接必然失败

	_, err := client.PublishText(context.Background(), "hello")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestPublishPhotoSendsMultipartFields(t *testing.T) {
	uploadDir := t.TempDir()
	imagePath := filepath.Join(uploadDir, "cover.png")
	if err := os.WriteFile(imagePath, []byte("fake png bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	var gotPath, gotMessage, gotToken, gotFilename, gotContentType string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotMessage = r.FormValue("message")
		gotToken = r.FormValue("access_token")
		if _, header, err := r.FormFile("source"); err == nil {
			gotFilename = header.Filename
			gotContentType = header.Header.Get("Content-Type")
		} else {
			t.Errorf("form file: %v", err)
		}
		w.Write([]byte(`{"id":"photo_1","post_id":"PAGE_1"}`))
	})

	result := client.PublishPhoto(context.Background(), "caption", imagePath)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.PostID != "photo_1" {
		t.Fatalf("unexpected post id: %q", result.PostID)
	}
	if gotPath != "/v23.0/PAGE/photos" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotMessage != "caption" || gotToken != "token" {
		t.Fatalf("unexpected form values: message=%q token=%q", gotMessage, gotToken)
	}
	if gotFilename != "cover.png" {
		t.Fatalf("unexpected filename: %q", gotFilename)
	}
	if gotContentType != "image/png" {
		t.Fatalf("unexpected part content type: %q", gotContentType)
	}
}

func TestPublishPhotoMissingFile(t *testing.T) {
	client := NewClient(Config{PageID: "PAGE", AccessToken: "token"})

	result := client.PublishPhoto(context.Background(), "caption", "/nonexistent/cover.png")
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "image file not found: /nonexistent/cover.png" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestDeletePostRequiresSuccessFlag(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Query().Get("access_token") != "token" {
			t.Errorf("missing access_token query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{}`))
	})

	result, err := client.DeletePost(context.Background(), "123_456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("200 without success flag must not count as deleted")
	}
	if result.Error != "delete failed with status 200" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestDeletePostSuccess(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"success":true}`))
	})

	result, err := client.DeletePost(context.Background(), "123_456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Message != "post deleted" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotPath != "/v23.0/123_456" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestDeletePostFallbackSendsTokenAsForm(t *testing.T) {
	var gotToken string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotToken = r.PostFormValue("access_token")
		w.Write([]byte(`{"success":true}`))
	})

	result := client.DeletePostFallback(context.Background(), "123_456")
	if !result.Success || result.Message != "post deleted via fallback" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotToken != "token" {
		t.Fatalf("token not sent as form field, got %q", gotToken)
	}
}

func TestDeletePostFallbackEmptyErrorWithoutPlatformMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false}`))
	})

	result := client.DeletePostFallback(context.Background(), "123_456")
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != "" {
		t.Fatalf("expected empty error so the caller keeps the original one, got %q", result.Error)
	}
}
