package adapters

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/shared"
)

const (
	defaultNuGetTimeout    = 30 * time.Second
	defaultNuGetRetries    = 3
	defaultNuGetRetryDelay = 200 * time.Millisecond
	maxNuGetRetryDelay     = 2 * time.Second
	defaultIndexBackoff    = 30 * time.Second
	packageBaseAddressType = "PackageBaseAddress/3.0.0"
)

// NuGetSourceAdapter reads a NuGet v3 feed through its flat container
// (PackageBaseAddress) resource.
type NuGetSourceAdapter struct {
	SourceName string
	IndexURL   string
	Username   string
	Password   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	// IndexBackoff is how long a failed service index lookup is reused
	// before the feed is asked again.
	IndexBackoff time.Duration

	client *http.Client
	index  singleflight.Group

	mu          sync.Mutex
	baseAddress string
	indexErr    error
	indexFailed time.Time
}

func NewNuGetSourceAdapter(name string, indexURL string, username string, password string, timeoutSec int, retries int) *NuGetSourceAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultNuGetTimeout
	}
	if retries <= 0 {
		retries = defaultNuGetRetries
	}
	if strings.TrimSpace(name) == "" {
		name = indexURL
	}
	return &NuGetSourceAdapter{
		SourceName:   name,
		IndexURL:     strings.TrimSpace(indexURL),
		Username:     username,
		Password:     password,
		Timeout:      timeout,
		Retries:      retries,
		RetryDelay:   defaultNuGetRetryDelay,
		IndexBackoff: defaultIndexBackoff,
		client:       &http.Client{Timeout: timeout},
	}
}

var _ ports.RegistrySource = (*NuGetSourceAdapter)(nil)

func (a *NuGetSourceAdapter) Name() string {
	return a.SourceName
}

type nugetServiceIndex struct {
	Resources []struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	} `json:"resources"`
}

type nugetVersionList struct {
	Versions []string `json:"versions"`
}

// ListVersions returns every version the feed lists for packageID. An
// unknown package yields nil and no error.
func (a *NuGetSourceAdapter) ListVersions(ctx context.Context, packageID string) ([]string, error) {
	base, err := a.packageBase(ctx)
	if err != nil {
		return nil, err
	}
	id := shared.NormalizePackageID(packageID)
	if id == "" {
		return nil, nil
	}
	body, found, err := a.get(ctx, fmt.Sprintf("%s%s/index.json", base, id))
	if err != nil || !found {
		return nil, err
	}
	var list nugetVersionList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("invalid nuget version list").
			WithCause(err)
	}
	return list.Versions, nil
}

type nuspecDependency struct {
	ID string `xml:"id,attr"`
}

type nuspecDocument struct {
	Metadata struct {
		ID           string `xml:"id"`
		Dependencies struct {
			Direct []nuspecDependency `xml:"dependency"`
			Groups []struct {
				TargetFramework string             `xml:"targetFramework,attr"`
				Dependencies    []nuspecDependency `xml:"dependency"`
			} `xml:"group"`
		} `xml:"dependencies"`
	} `xml:"metadata"`
}

// Dependencies reads the package's nuspec and returns the union of its
// dependency ids over every framework group. ok is false when the feed has
// no such package version.
func (a *NuGetSourceAdapter) Dependencies(ctx context.Context, packageID string, version string) ([]string, bool, error) {
	base, err := a.packageBase(ctx)
	if err != nil {
		return nil, false, err
	}
	id := shared.NormalizePackageID(packageID)
	ver := shared.NormalizeFeedVersion(version)
	body, found, err := a.get(ctx, fmt.Sprintf("%s%s/%s/%s.nuspec", base, id, ver, id))
	if err != nil || !found {
		return nil, false, err
	}
	deps, err := parseNuspecDependencies(body)
	if err != nil {
		return nil, false, err
	}
	return deps, true, nil
}

func parseNuspecDependencies(data []byte) ([]string, error) {
	var doc nuspecDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("invalid nuspec document").
			WithCause(err)
	}
	seen := map[string]struct{}{}
	deps := []string{}
	add := func(entries []nuspecDependency) {
		for _, entry := range entries {
			id := strings.TrimSpace(entry.ID)
			key := strings.ToLower(id)
			if id == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			deps = append(deps, id)
		}
	}
	add(doc.Metadata.Dependencies.Direct)
	for _, group := range doc.Metadata.Dependencies.Groups {
		add(group.Dependencies)
	}
	return deps, nil
}

// packageBase resolves the flat container address from the service index
// once per adapter. Concurrent callers share one in-flight fetch, and a
// failure is returned as is until IndexBackoff has passed.
func (a *NuGetSourceAdapter) packageBase(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.baseAddress != "" {
		base := a.baseAddress
		a.mu.Unlock()
		return base, nil
	}
	if a.indexErr != nil && time.Since(a.indexFailed) < a.IndexBackoff {
		err := a.indexErr
		a.mu.Unlock()
		return "", err
	}
	a.mu.Unlock()

	value, err, _ := a.index.Do("index", func() (any, error) {
		base, err := a.fetchPackageBase(ctx)
		a.mu.Lock()
		defer a.mu.Unlock()
		if err != nil {
			if ctx.Err() == nil {
				a.indexErr = err
				a.indexFailed = time.Now()
			}
			return "", err
		}
		a.baseAddress = base
		a.indexErr = nil
		return base, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (a *NuGetSourceAdapter) fetchPackageBase(ctx context.Context) (string, error) {
	if a.IndexURL == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("nuget source url is empty")
	}
	body, found, err := a.get(ctx, a.IndexURL)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("nuget service index not found").
			WithCause(shared.HTTPStatusError(http.StatusNotFound, a.IndexURL))
	}
	var index nugetServiceIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("invalid nuget service index").
			WithCause(err)
	}
	for _, resource := range index.Resources {
		if strings.HasPrefix(resource.Type, packageBaseAddressType) && strings.TrimSpace(resource.ID) != "" {
			base := strings.TrimSpace(resource.ID)
			if !strings.HasSuffix(base, "/") {
				base += "/"
			}
			log.Ctx(ctx).Debug().Str("source", a.SourceName).Str("base", base).Msg("nuget package base resolved")
			return base, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("nuget service index has no %s resource", packageBaseAddressType))
}

// get fetches url with retries. found is false on 404.
func (a *NuGetSourceAdapter) get(ctx context.Context, url string) ([]byte, bool, error) {
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		body, found, retry, err := a.getOnce(ctx, url)
		if err == nil {
			return body, found, nil
		}
		lastErr = err
		if !retry || attempt == a.Retries-1 {
			return nil, false, err
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(a.retryDelay(attempt)):
		}
	}
	if lastErr == nil {
		lastErr = errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("nuget request failed")
	}
	return nil, false, lastErr
}

func (a *NuGetSourceAdapter) getOnce(ctx context.Context, url string) ([]byte, bool, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create nuget request").
			WithCause(err)
	}
	a.applyBasicAuth(req)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, false, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("nuget request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read nuget response").
			WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, false, retry, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("nuget request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, url, strings.TrimSpace(string(body))))
	}
	return body, true, false, nil
}

func (a *NuGetSourceAdapter) applyBasicAuth(req *http.Request) {
	if strings.TrimSpace(a.Password) == "" {
		return
	}
	user := strings.TrimSpace(a.Username)
	if user == "" {
		user = "api"
	}
	req.SetBasicAuth(user, a.Password)
}

func (a *NuGetSourceAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxNuGetRetryDelay {
		delay = maxNuGetRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}
