package adapters

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNuspec = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd">
  <metadata>
    <id>Contoso.Web</id>
    <version>2.1.0</version>
    <dependencies>
      <group targetFramework=".NETFramework4.6.1">
        <dependency id="Newtonsoft.Json" version="12.0.1" />
      </group>
      <group targetFramework=".NETStandard2.0">
        <dependency id="newtonsoft.json" version="12.0.1" />
        <dependency id="System.Memory" version="4.5.4" />
      </group>
    </dependencies>
  </metadata>
</package>`

func newNuGetFeed(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var indexHits atomic.Int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/v3/index.json", func(w http.ResponseWriter, _ *http.Request) {
		indexHits.Add(1)
		fmt.Fprintf(w, `{"version":"3.0.0","resources":[
			{"@id":"%s/search","@type":"SearchQueryService"},
			{"@id":"%s/flat","@type":"PackageBaseAddress/3.0.0"}]}`, server.URL, server.URL)
	})
	mux.HandleFunc("/flat/contoso.web/index.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"versions":["1.0.0","2.1.0","3.0.0-beta.1"]}`))
	})
	mux.HandleFunc("/flat/contoso.web/2.1.0/contoso.web.nuspec", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testNuspec))
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &indexHits
}

// -----------------------------------------------------------------------
// Versions
// -----------------------------------------------------------------------

func TestNuGetSourceAdapter_ListVersions(t *testing.T) {
	server, indexHits := newNuGetFeed(t)
	adapter := NewNuGetSourceAdapter("feed", server.URL+"/v3/index.json", "", "", 5, 1)

	versions, err := adapter.ListVersions(t.Context(), "Contoso.Web")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "2.1.0", "3.0.0-beta.1"}, versions)

	versions, err = adapter.ListVersions(t.Context(), "Contoso.Missing")
	require.NoError(t, err)
	assert.Nil(t, versions)

	assert.Equal(t, int32(1), indexHits.Load(), "service index is resolved once")
}

func TestNuGetSourceAdapter_DefaultsName(t *testing.T) {
	adapter := NewNuGetSourceAdapter("", "https://feed.example/v3/index.json", "", "", 0, 0)
	assert.Equal(t, "https://feed.example/v3/index.json", adapter.Name())
	assert.Equal(t, defaultNuGetTimeout, adapter.Timeout)
	assert.Equal(t, defaultNuGetRetries, adapter.Retries)
}

// -----------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------

func TestNuGetSourceAdapter_Dependencies(t *testing.T) {
	server, _ := newNuGetFeed(t)
	adapter := NewNuGetSourceAdapter("feed", server.URL+"/v3/index.json", "", "", 5, 1)

	deps, ok, err := adapter.Dependencies(t.Context(), "Contoso.Web", "2.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Newtonsoft.Json", "System.Memory"}, deps)

	deps, ok, err = adapter.Dependencies(t.Context(), "Contoso.Web", "9.9.9")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, deps)
}

func TestParseNuspecDependencies_Flat(t *testing.T) {
	deps, err := parseNuspecDependencies([]byte(`<package><metadata><id>A</id>
		<dependencies><dependency id="B" /><dependency id="C" /></dependencies></metadata></package>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, deps)
}

func TestParseNuspecDependencies_Invalid(t *testing.T) {
	_, err := parseNuspecDependencies([]byte("<package><metadata>"))
	require.Error(t, err)
	if diff := cmp.Diff(errbuilder.CodeInternal, errbuilder.CodeOf(err)); diff != "" {
		t.Fatalf("unexpected error code (-want +got):\n%s", diff)
	}
}

// -----------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------

func TestNuGetSourceAdapter_BasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{"resources":[{"@id":"http://unused/flat/","@type":"PackageBaseAddress/3.0.0"}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("private", server.URL, "", "secret", 5, 1)
	base, err := adapter.packageBase(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "http://unused/flat/", base)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestNuGetSourceAdapter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"resources":[{"@id":"http://unused/flat","@type":"PackageBaseAddress/3.0.0"}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("flaky", server.URL, "", "", 5, 3)
	adapter.RetryDelay = time.Millisecond
	base, err := adapter.packageBase(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "http://unused/flat/", base)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNuGetSourceAdapter_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("locked", server.URL, "", "", 5, 3)
	adapter.RetryDelay = time.Millisecond
	_, err := adapter.ListVersions(t.Context(), "Contoso.Web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nuget request failed")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNuGetSourceAdapter_MissingBaseAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resources":[{"@id":"http://unused/search","@type":"SearchQueryService"}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("partial", server.URL, "", "", 5, 1)
	_, err := adapter.ListVersions(t.Context(), "Contoso.Web")
	require.Error(t, err)
	if diff := cmp.Diff(errbuilder.CodeNotFound, errbuilder.CodeOf(err)); diff != "" {
		t.Fatalf("unexpected error code (-want +got):\n%s", diff)
	}
}

func TestNuGetSourceAdapter_FailingIndexDoesNotSerializeCallers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("down", server.URL, "", "", 5, 1)
	ids := []string{"Contoso.A", "Contoso.B", "Contoso.C", "Contoso.D", "Contoso.E"}
	errs := make([]error, len(ids))
	start := time.Now()
	var wg sync.WaitGroup
	for idx, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[idx] = adapter.ListVersions(t.Context(), id)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	for _, err := range errs {
		require.Error(t, err)
	}
	assert.Less(t, elapsed, time.Second, "lookups waited on each other")
	assert.LessOrEqual(t, calls.Load(), int32(2))

	before := calls.Load()
	_, err := adapter.ListVersions(t.Context(), "Contoso.F")
	require.Error(t, err)
	assert.Equal(t, before, calls.Load(), "failed index is reused within the backoff window")
}

func TestNuGetSourceAdapter_IndexRetriedAfterBackoff(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"resources":[{"@id":"http://unused/flat/","@type":"PackageBaseAddress/3.0.0"}]}`))
	}))
	t.Cleanup(server.Close)

	adapter := NewNuGetSourceAdapter("recovering", server.URL, "", "", 5, 1)
	adapter.IndexBackoff = 0
	_, err := adapter.packageBase(t.Context())
	require.Error(t, err)

	base, err := adapter.packageBase(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "http://unused/flat/", base)
	assert.Equal(t, int32(2), calls.Load())
}
