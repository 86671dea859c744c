// Package datahub emits metadata change proposals to a DataHub GMS server
// over its Rest.li ingestion endpoint.
package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zeebo/errs"

	"github.com/lakshay-nasa/city-scout/pkg/catalog"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// Error is the error class for catalog transport failures.
var Error = errs.Class("datahub")

const (
	ingestPath       = "/aspects?action=ingestProposal"
	configPath       = "/config"
	restliHeader     = "X-RestLi-Protocol-Version"
	restliVersion    = "2.0.0"
	aspectContent    = "application/json"
	maxErrorBodySize = 4 << 10
)

// Config holds the connection settings of the emitter.
type Config struct {
	Server string // e.g. http://localhost:8080
	Token  string // optional personal access token
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
	Client  *http.Client
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Emitter implements core.Emitter against the GMS REST API.
type Emitter struct {
	server string
	token  string
	client *http.Client
	logger *slog.Logger
}

// NewEmitter creates a new REST emitter.
func NewEmitter(config Config) (*Emitter, error) {
	server := strings.TrimRight(strings.TrimSpace(config.Server), "/")
	if server == "" {
		return nil, Error.New("server URL is required")
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		return nil, Error.New("server URL must start with http:// or https://: %q", server)
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Emitter{
		server: server,
		token:  config.Token,
		client: client,
		logger: logger,
	}, nil
}

// Server returns the base URL the emitter posts to.
func (e *Emitter) Server() string {
	return e.server
}

type genericAspect struct {
	Value       string `json:"value"`
	ContentType string `json:"contentType"`
}

type proposalBody struct {
	EntityType     string                  `json:"entityType"`
	EntityURN      string                  `json:"entityUrn"`
	ChangeType     string                  `json:"changeType"`
	AspectName     string                  `json:"aspectName"`
	Aspect         genericAspect           `json:"aspect"`
	SystemMetadata *catalog.SystemMetadata `json:"systemMetadata,omitempty"`
}

type ingestRequest struct {
	Proposal proposalBody `json:"proposal"`
}

// EncodeProposal renders the ingestProposal request body for a proposal.
// The aspect itself travels as a JSON string, as GMS expects.
func EncodeProposal(mcp catalog.MetadataChangeProposal) ([]byte, error) {
	if mcp.Aspect == nil {
		return nil, Error.New("proposal for %s has no aspect", mcp.EntityURN)
	}
	value, err := mcp.AspectJSON()
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("encode aspect %s: %w", mcp.AspectName, err))
	}

	body, err := json.Marshal(ingestRequest{Proposal: proposalBody{
		EntityType:     mcp.EntityType,
		EntityURN:      mcp.EntityURN,
		ChangeType:     mcp.ChangeType,
		AspectName:     mcp.AspectName,
		Aspect:         genericAspect{Value: string(value), ContentType: aspectContent},
		SystemMetadata: mcp.SystemMetadata,
	}})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return body, nil
}

// Emit sends one proposal. Any transport error or non-2xx response is returned.
func (e *Emitter) Emit(ctx context.Context, mcp catalog.MetadataChangeProposal) error {
	body, err := EncodeProposal(mcp)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.server+ingestPath, bytes.NewReader(body))
	if err != nil {
		return Error.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	e.setHeaders(req)

	e.logger.Debug("emitting proposal", "urn", mcp.EntityURN, "aspect", mcp.AspectName)

	resp, err := e.client.Do(req)
	if err != nil {
		return Error.Wrap(err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

// TestConnection verifies that the server is reachable and is a GMS instance.
func (e *Emitter) TestConnection(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.server+configPath, nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	e.setHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var cfg map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, Error.New("server at %s did not return a config document: %v", e.server, err)
	}
	if _, ok := cfg["noCode"]; !ok {
		if _, ok := cfg["versions"]; !ok {
			return nil, Error.New("server at %s does not look like DataHub GMS", e.server)
		}
	}
	return cfg, nil
}

func (e *Emitter) setHeaders(req *http.Request) {
	req.Header.Set(restliHeader, restliVersion)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return Error.Wrap(&StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)})
}

// errorMessage extracts the Rest.li error message when the body carries one.
func errorMessage(data []byte) string {
	var restli struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &restli); err == nil && restli.Message != "" {
		return restli.Message
	}
	return strings.TrimSpace(string(data))
}

var _ core.Emitter = (*Emitter)(nil)
