package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	localstackImage = "localstack/localstack:4.4"
	localstackPort  = "4566/tcp"
	testRegion      = "us-east-1"
	testToken       = "integration-token"
)

// TestS3 represents a LocalStack S3 instance.
type TestS3 struct {
	Container testcontainers.Container
	Client    *s3.Client
	Endpoint  string
}

// SetupTestS3 starts a LocalStack container and returns an S3 client bound to it.
func SetupTestS3(t *testing.T) *TestS3 {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        localstackImage,
			ExposedPorts: []string{localstackPort},
			Env:          map[string]string{"SERVICES": "s3"},
			WaitingFor: wait.ForHTTP("/_localstack/health").
				WithPort(localstackPort).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start localstack container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, localstackPort, "http")
	if err != nil {
		t.Fatalf("failed to get localstack endpoint: %v", err)
	}

	client := s3.NewFromConfig(aws.Config{
		Region: testRegion,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
		}),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &TestS3{Container: container, Client: client, Endpoint: endpoint}
}

// PutObject creates bucket when missing and stores content under key.
func (s *TestS3) PutObject(t *testing.T, bucket, key, content string) {
	t.Helper()

	ctx := context.Background()

	if _, err := s.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		if !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			t.Fatalf("failed to create bucket: %v", err)
		}
	}

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("failed to put object: %v", err)
	}
}

// RemoteAPI is an in-memory stand-in for the remote product API.
type RemoteAPI struct {
	Server *httptest.Server

	mu        sync.Mutex
	products  map[string]map[string]any
	authCalls int
}

// SetupRemoteAPI starts the stand-in API. Products are keyed by UUID.
func SetupRemoteAPI(t *testing.T, products ...map[string]any) *RemoteAPI {
	t.Helper()

	api := &RemoteAPI{products: make(map[string]map[string]any)}
	for _, p := range products {
		api.products[p["uuid"].(string)] = p
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.authCalls++
		api.mu.Unlock()

		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": testToken})
	})
	mux.HandleFunc("GET /hb/", func(w http.ResponseWriter, r *http.Request) {
		if !api.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	})
	mux.HandleFunc("GET /products/", func(w http.ResponseWriter, r *http.Request) {
		if !api.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		api.mu.Lock()
		defer api.mu.Unlock()

		list := make([]map[string]any, 0, len(api.products))
		taken := 0
		for _, p := range api.products {
			if p["taken"] == true {
				taken++
				continue
			}
			list = append(list, p)
		}
		if len(api.products) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"total": map[string]int{
				"all":       len(api.products),
				"taken":     taken,
				"available": len(api.products) - taken,
			},
			"products": list,
		})
	})
	mux.HandleFunc("DELETE /products/{uuid}", func(w http.ResponseWriter, r *http.Request) {
		if !api.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		api.mu.Lock()
		defer api.mu.Unlock()

		id := r.PathValue("uuid")
		p, ok := api.products[id]
		switch {
		case !ok:
			w.WriteHeader(http.StatusNotFound)
		case p["taken"] == true:
			w.WriteHeader(http.StatusUnauthorized)
		default:
			delete(api.products, id)
			writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
		}
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Server.Close)

	return api
}

// AuthCalls returns how many times the auth endpoint was hit.
func (a *RemoteAPI) AuthCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authCalls
}

// HasProduct reports whether the product is still registered.
func (a *RemoteAPI) HasProduct(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.products[id]
	return ok
}

func (a *RemoteAPI) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
