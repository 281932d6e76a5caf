package taxlookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

const testGSTIN = "29ABCDE1234F1Z5"

func TestVerifyValidNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/gstin/"+testGSTIN, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"businessName":"Acme Traders"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	verified, name, err := client.Verify(context.Background(), testGSTIN)
	require.NoError(t, err)
	require.True(t, verified)
	require.Equal(t, "Acme Traders", name)
}

func TestVerifyUnknownNumberIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	verified, name, err := client.Verify(context.Background(), testGSTIN)
	require.NoError(t, err)
	require.False(t, verified)
	require.Empty(t, name)
}

func TestVerifyMalformedNumberSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, _, err := client.Verify(context.Background(), "not-a-gstin")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.False(t, called)
}

func TestVerifyRegistryErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, _, err := client.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, shared.ErrCollaborator)
}

func TestVerifyRegistryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, _, err := client.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, shared.ErrCollaborator)
}

func TestVerifyGarbledResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, _, err := client.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, shared.ErrCollaborator)
}

func TestDisabledClient(t *testing.T) {
	_, _, err := Disabled{}.Verify(context.Background(), testGSTIN)
	require.ErrorIs(t, err, shared.ErrCollaborator)
	require.ErrorIs(t, err, ErrNotConfigured)
}
