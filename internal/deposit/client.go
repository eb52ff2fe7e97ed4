// Package deposit publishes release bundles to a Zenodo-compatible deposit
// service: it creates a deposition, uploads the archive into the deposition
// bucket, attaches the release metadata, and optionally publishes it.
package deposit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/temirov/release-scholar/internal/metadata"
)

// Deposit service endpoints.
const (
	ProductionBaseURL = "https://zenodo.org/api"
	SandboxBaseURL    = "https://sandbox.zenodo.org/api"
)

const (
	depositionsPathConstant        = "/deposit/depositions"
	depositionPathTemplateConstant = "/deposit/depositions/%d"
	publishPathTemplateConstant    = "/deposit/depositions/%d/actions/publish"
	webDepositionTemplateConstant  = "%s/deposit/%d"
	apiPathSuffixConstant          = "/api"
	contentTypeHeaderConstant      = "Content-Type"
	userAgentHeaderConstant        = "User-Agent"
	jsonContentTypeConstant        = "application/json"
	binaryContentTypeConstant      = "application/octet-stream"
	userAgentConstant              = "release-scholar"
	emptyJSONObjectConstant        = "{}"
	maximumErrorBodyBytesConstant  = 4096

	createDepositionOperationConstant = "create deposition"
	uploadFileOperationConstant       = "upload file"
	updateMetadataOperationConstant   = "update metadata"
	publishOperationConstant          = "publish deposition"

	apiErrorTemplateConstant      = "deposit API error %d during %s: %s"
	requestErrorTemplateConstant  = "%s: %w"
	responseErrorTemplateConstant = "%s: decode response: %w"
)

// Deposition is the subset of a deposition resource the publisher uses.
type Deposition struct {
	ID     int64           `json:"id"`
	DOI    string          `json:"doi,omitempty"`
	DOIURL string          `json:"doi_url,omitempty"`
	Links  DepositionLinks `json:"links"`
}

// DepositionLinks lists the resource links returned with a deposition.
type DepositionLinks struct {
	HTML    string `json:"html,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	Publish string `json:"publish,omitempty"`
	Self    string `json:"self,omitempty"`
}

// UploadedFile describes a file stored in a deposition bucket.
type UploadedFile struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// APIError reports a non-success response from the deposit service.
type APIError struct {
	StatusCode int
	Operation  string
	Body       string
}

// Error describes the failed operation and the response body.
func (apiError APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Operation, apiError.Body)
}

// Client talks to the deposit REST API with a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client for baseURL authenticating with token.
func NewClient(executionContext context.Context, baseURL string, token string) *Client {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		httpClient: oauth2.NewClient(executionContext, tokenSource),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root the client targets.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// WebURL returns the human-facing page of depositionID.
func (client *Client) WebURL(depositionID int64) string {
	return fmt.Sprintf(webDepositionTemplateConstant, strings.TrimSuffix(client.baseURL, apiPathSuffixConstant), depositionID)
}

// CreateDeposition creates an empty draft deposition.
func (client *Client) CreateDeposition(executionContext context.Context) (Deposition, error) {
	var deposition Deposition
	requestError := client.do(executionContext, createDepositionOperationConstant, http.MethodPost, client.baseURL+depositionsPathConstant,
		strings.NewReader(emptyJSONObjectConstant), jsonContentTypeConstant, &deposition)
	return deposition, requestError
}

// UploadFile streams size bytes of content into the deposition bucket under fileName.
func (client *Client) UploadFile(executionContext context.Context, bucketURL string, fileName string, content io.Reader, size int64) (UploadedFile, error) {
	targetURL := strings.TrimRight(bucketURL, "/") + "/" + url.PathEscape(fileName)
	request, requestError := client.newRequest(executionContext, uploadFileOperationConstant, http.MethodPut, targetURL, content, binaryContentTypeConstant)
	if requestError != nil {
		return UploadedFile{}, requestError
	}
	request.ContentLength = size

	var uploaded UploadedFile
	sendError := client.send(request, uploadFileOperationConstant, &uploaded)
	return uploaded, sendError
}

// UpdateMetadata replaces the metadata of depositionID.
func (client *Client) UpdateMetadata(executionContext context.Context, depositionID int64, releaseMetadata metadata.ReleaseMetadata) (Deposition, error) {
	payload, encodeError := json.Marshal(metadata.Document{Metadata: releaseMetadata})
	if encodeError != nil {
		return Deposition{}, fmt.Errorf(requestErrorTemplateConstant, updateMetadataOperationConstant, encodeError)
	}
	var deposition Deposition
	requestError := client.do(executionContext, updateMetadataOperationConstant, http.MethodPut, client.baseURL+fmt.Sprintf(depositionPathTemplateConstant, depositionID),
		bytes.NewReader(payload), jsonContentTypeConstant, &deposition)
	return deposition, requestError
}

// Publish publishes depositionID, minting its DOI. Publication is permanent.
func (client *Client) Publish(executionContext context.Context, depositionID int64) (Deposition, error) {
	var deposition Deposition
	requestError := client.do(executionContext, publishOperationConstant, http.MethodPost, client.baseURL+fmt.Sprintf(publishPathTemplateConstant, depositionID),
		nil, "", &deposition)
	return deposition, requestError
}

func (client *Client) do(executionContext context.Context, operation string, method string, targetURL string, body io.Reader, contentType string, target any) error {
	request, requestError := client.newRequest(executionContext, operation, method, targetURL, body, contentType)
	if requestError != nil {
		return requestError
	}
	return client.send(request, operation, target)
}

func (client *Client) newRequest(executionContext context.Context, operation string, method string, targetURL string, body io.Reader, contentType string) (*http.Request, error) {
	request, requestError := http.NewRequestWithContext(executionContext, method, targetURL, body)
	if requestError != nil {
		return nil, fmt.Errorf(requestErrorTemplateConstant, operation, requestError)
	}
	if len(contentType) > 0 {
		request.Header.Set(contentTypeHeaderConstant, contentType)
	}
	request.Header.Set(userAgentHeaderConstant, userAgentConstant)
	return request, nil
}

func (client *Client) send(request *http.Request, operation string, target any) error {
	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return fmt.Errorf(requestErrorTemplateConstant, operation, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		errorBody, _ := io.ReadAll(io.LimitReader(response.Body, maximumErrorBodyBytesConstant))
		return APIError{StatusCode: response.StatusCode, Operation: operation, Body: strings.TrimSpace(string(errorBody))}
	}

	if decodeError := json.NewDecoder(response.Body).Decode(target); decodeError != nil {
		return fmt.Errorf(responseErrorTemplateConstant, operation, decodeError)
	}
	return nil
}
