package kafkaconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// fakeConnectServer stands in for the Kafka Connect REST API using
// gorilla/mux, the same router the rest of the retrieved corpus reaches
// for on Kafka-adjacent HTTP surfaces.
func fakeConnectServer(t *testing.T, received *map[string]string) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()

	router.HandleFunc("/connectors/{name}/config", func(w http.ResponseWriter, r *http.Request) {
		var cfg map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cfg))
		*received = cfg
		w.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPut)

	router.HandleFunc("/connectors/{name}/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"connector": map[string]string{"state": "RUNNING"},
		})
	}).Methods(http.MethodGet)

	return httptest.NewServer(router)
}

func TestDeployPutsConnectorConfig(t *testing.T) {
	t.Parallel()

	var received map[string]string
	server := fakeConnectServer(t, &received)
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	err := client.Deploy(context.Background(), "orders_src", map[string]string{
		"connector.class": "io.debezium.connector.postgresql.PostgresConnector",
	})
	require.NoError(t, err)
	require.Equal(t, "io.debezium.connector.postgresql.PostgresConnector", received["connector.class"])
}

func TestStatusReturnsConnectorState(t *testing.T) {
	t.Parallel()

	var received map[string]string
	server := fakeConnectServer(t, &received)
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	state, err := client.Status(context.Background(), "orders_src")
	require.NoError(t, err)
	require.Equal(t, "RUNNING", state)
}

func TestDeploySurfacesNonSuccessStatus(t *testing.T) {
	t.Parallel()

	router := mux.NewRouter()
	router.HandleFunc("/connectors/{name}/config", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}).Methods(http.MethodPut)
	server := httptest.NewServer(router)
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	err := client.Deploy(context.Background(), "orders_src", map[string]string{})
	require.Error(t, err)
}
