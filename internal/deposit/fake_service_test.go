package deposit_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/temirov/release-scholar/internal/deposit"
	"github.com/temirov/release-scholar/internal/metadata"
)

const (
	fakeDepositionIDConstant = 4242
	fakeDOIConstant          = "10.5281/zenodo.4242"
	fakeTokenConstant        = "secret-token"
)

type recordedUpload struct {
	fileName      string
	content       []byte
	contentLength int64
	contentType   string
}

// fakeDepositService imitates the deposit REST API on an httptest server.
type fakeDepositService struct {
	server *httptest.Server

	mutex          sync.Mutex
	requests       []string
	authorizations []string
	uploads        []recordedUpload
	metadata       []metadata.ReleaseMetadata
	failOperation  string
}

func newFakeDepositService(testInstance *testing.T) *fakeDepositService {
	testInstance.Helper()
	service := &fakeDepositService{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /deposit/depositions", service.handleCreate)
	mux.HandleFunc("PUT /files/bucket/{name}", service.handleUpload)
	mux.HandleFunc("PUT /deposit/depositions/{id}", service.handleMetadata)
	mux.HandleFunc("POST /deposit/depositions/{id}/actions/publish", service.handlePublish)
	service.server = httptest.NewServer(mux)
	testInstance.Cleanup(service.server.Close)
	return service
}

func (service *fakeDepositService) client(testInstance *testing.T) *deposit.Client {
	testInstance.Helper()
	return deposit.NewClient(testInstance.Context(), service.server.URL, fakeTokenConstant)
}

func (service *fakeDepositService) record(request *http.Request, operation string) bool {
	service.mutex.Lock()
	defer service.mutex.Unlock()
	service.requests = append(service.requests, operation)
	service.authorizations = append(service.authorizations, request.Header.Get("Authorization"))
	return service.failOperation == operation
}

func (service *fakeDepositService) recordedRequests() []string {
	service.mutex.Lock()
	defer service.mutex.Unlock()
	return append([]string(nil), service.requests...)
}

func (service *fakeDepositService) handleCreate(writer http.ResponseWriter, request *http.Request) {
	if service.record(request, "create") {
		http.Error(writer, `{"message":"quota exceeded"}`, http.StatusForbidden)
		return
	}
	writer.WriteHeader(http.StatusCreated)
	writeJSON(writer, map[string]any{
		"id": fakeDepositionIDConstant,
		"links": map[string]string{
			"bucket": service.server.URL + "/files/bucket",
			"html":   service.server.URL + "/deposit/4242",
		},
	})
}

func (service *fakeDepositService) handleUpload(writer http.ResponseWriter, request *http.Request) {
	failed := service.record(request, "upload")
	content, _ := io.ReadAll(request.Body)
	if failed {
		http.Error(writer, "bucket locked", http.StatusBadRequest)
		return
	}
	service.mutex.Lock()
	service.uploads = append(service.uploads, recordedUpload{
		fileName:      request.PathValue("name"),
		content:       content,
		contentLength: request.ContentLength,
		contentType:   request.Header.Get("Content-Type"),
	})
	service.mutex.Unlock()
	writeJSON(writer, map[string]any{"key": request.PathValue("name"), "size": len(content), "checksum": "md5:00"})
}

func (service *fakeDepositService) handleMetadata(writer http.ResponseWriter, request *http.Request) {
	if service.record(request, "metadata") {
		http.Error(writer, `{"errors":[{"field":"metadata.creators"}]}`, http.StatusBadRequest)
		return
	}
	var document metadata.Document
	if decodeError := json.NewDecoder(request.Body).Decode(&document); decodeError != nil {
		http.Error(writer, decodeError.Error(), http.StatusBadRequest)
		return
	}
	service.mutex.Lock()
	service.metadata = append(service.metadata, document.Metadata)
	service.mutex.Unlock()
	writeJSON(writer, map[string]any{"id": fakeDepositionIDConstant, "links": map[string]string{}})
}

func (service *fakeDepositService) handlePublish(writer http.ResponseWriter, request *http.Request) {
	if service.record(request, "publish") {
		http.Error(writer, "validation failed", http.StatusBadRequest)
		return
	}
	writer.WriteHeader(http.StatusAccepted)
	writeJSON(writer, map[string]any{
		"id":      fakeDepositionIDConstant,
		"doi":     fakeDOIConstant,
		"doi_url": fmt.Sprintf("https://doi.org/%s", fakeDOIConstant),
		"links":   map[string]string{},
	})
}

func writeJSON(writer http.ResponseWriter, value any) {
	payload, _ := json.Marshal(value)
	_, _ = writer.Write(payload)
}
