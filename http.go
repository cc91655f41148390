package terminology

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// TxServerURL is the base URL of the public FHIR terminology server.
const TxServerURL = "https://tx.fhir.org/r4"

const defaultHTTPTimeout = 30 * time.Second

// HTTPService is a Service backed by a remote FHIR terminology server.
// It issues $validate-code and $lookup as GET requests and parses the
// Parameters responses.
//
// Capability probes always answer true: a remote server potentially knows
// every code system, and the only way to find out is to ask it.
type HTTPService struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger

	mu          sync.RWMutex
	supplements map[string]string
}

// HTTPOption configures an HTTPService.
type HTTPOption func(*HTTPService)

// WithHTTPClient replaces the default retrying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPService) { s.client = c }
}

// WithHTTPTimeout sets the per-request timeout on the default client.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPService) { s.client.Timeout = d }
}

// WithHTTPLogger sets the logger used for request tracing.
func WithHTTPLogger(l zerolog.Logger) HTTPOption {
	return func(s *HTTPService) { s.logger = l }
}

// NewHTTPService creates a client for the terminology server at baseURL.
// A trailing slash is ignored. The default transport retries transient
// failures up to three times.
func NewHTTPService(baseURL string, opts ...HTTPOption) *HTTPService {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	retryClient.Logger = nil

	s := &HTTPService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      retryClient.StandardClient(),
		logger:      zerolog.Nop(),
		supplements: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTxService creates a client for the public tx.fhir.org R4 server.
func NewTxService(opts ...HTTPOption) *HTTPService {
	return NewHTTPService(TxServerURL, opts...)
}

// ValidateCodeInCodeSystem implements CodeValidator.
func (s *HTTPService) ValidateCodeInCodeSystem(system, code, display string) (*ValidateResult, error) {
	if base, ok := s.IsSupplement(system); ok {
		return nil, invalidRequestErr("CodeSystem '%s' is a supplement to '%s' and cannot be used as a Coding system", system, base)
	}

	reqURL := fmt.Sprintf("%s/CodeSystem/$validate-code?url=%s&code=%s",
		s.baseURL, url.QueryEscape(system), url.QueryEscape(code))
	if display != "" {
		reqURL += "&display=" + url.QueryEscape(display)
	}

	body, err := s.get(reqURL)
	if err != nil {
		return nil, err
	}
	return parseValidateCodeResponse(body)
}

// ValidateCodeInValueSet implements CodeValidator.
func (s *HTTPService) ValidateCodeInValueSet(valueSetURL, system, code, display string) (*ValidateResult, error) {
	reqURL := fmt.Sprintf("%s/ValueSet/$validate-code?url=%s&system=%s&code=%s",
		s.baseURL, url.QueryEscape(valueSetURL), url.QueryEscape(system), url.QueryEscape(code))
	if display != "" {
		reqURL += "&display=" + url.QueryEscape(display)
	}

	body, err := s.get(reqURL)
	if err != nil {
		return nil, err
	}
	return parseValidateCodeResponse(body)
}

// LookupCode implements CodeLookup.
func (s *HTTPService) LookupCode(system, code string) (*LookupResult, error) {
	reqURL := fmt.Sprintf("%s/CodeSystem/$lookup?system=%s&code=%s",
		s.baseURL, url.QueryEscape(system), url.QueryEscape(code))

	body, err := s.get(reqURL)
	if err != nil {
		return nil, err
	}
	return parseLookupResponse(body)
}

// SupportsCodeSystem implements CapabilityProber.
func (s *HTTPService) SupportsCodeSystem(string) bool { return true }

// SupportsValueSet implements CapabilityProber.
func (s *HTTPService) SupportsValueSet(string) bool { return true }

// IsSupplement implements SupplementRegistry.
func (s *HTTPService) IsSupplement(system string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	base, ok := s.supplements[system]
	return base, ok
}

// RegisterSupplement implements SupplementRegistry.
func (s *HTTPService) RegisterSupplement(system, baseURL string) {
	s.mu.Lock()
	s.supplements[system] = baseURL
	s.mu.Unlock()
}

// get performs a GET against reqURL and returns the response body, mapping
// transport failures to NetworkError and non-2xx statuses to ServerError.
func (s *HTTPService) get(reqURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, invalidRequestErr("building request: %v", err)
	}
	req.Header.Set("Accept", "application/fhir+json")

	s.logger.Debug().Str("url", reqURL).Msg("terminology request")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, networkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverErr("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkErr(err)
	}
	return body, nil
}

var _ Service = (*HTTPService)(nil)
