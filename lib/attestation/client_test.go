package attestation

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func prepareAttestationServer(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, 2*time.Second, 1)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestIsApproved(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/approvals/0xaaa", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"approved":true}`)
	})
	mux.HandleFunc("/approvals/0xbbb", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"approved":false}`)
	})
	client := prepareAttestationServer(t, mux)

	approved, err := client.IsApproved("0xaaa")
	require.NoError(t, err)
	require.True(t, approved)

	approved, err = client.IsApproved("0xbbb")
	require.NoError(t, err)
	require.False(t, approved)

	// an unknown voter is not approved, but not an error either
	approved, err = client.IsApproved("0xccc")
	require.NoError(t, err)
	require.False(t, approved)
}

func TestIsApprovedServerError(t *testing.T) {
	client := prepareAttestationServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.IsApproved("0xaaa")
	require.Error(t, err)
}

func TestProjectNames(t *testing.T) {
	mux := http.NewServeMux()
	for _, p := range []struct{ id, name string }{
		{"p1", "Alpha Works"},
		{"p2", "Beta Labs"},
	} {
		p := p
		mux.HandleFunc("/projects/"+p.id, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"id":%q,"name":%q}`, p.id, p.name)
		})
	}
	client := prepareAttestationServer(t, mux)

	names, err := client.ProjectNames([]string{"p1", "p2", "missing"})
	require.NoError(t, err)
	require.Equal(t, "Alpha Works", names["p1"])
	require.Equal(t, "Beta Labs", names["p2"])
	_, found := names["missing"]
	require.False(t, found)
}
