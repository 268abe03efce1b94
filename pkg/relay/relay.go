// Package relay posts canonical job records to the ingestion endpoint.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/careerdeck/jobfeed/pkg/domain"
	"github.com/careerdeck/jobfeed/pkg/fetch"
)

// Doer makes a single HTTP request
type Doer interface {
	Do(ctx context.Context, url string, req fetch.Request, timeout time.Duration) (*fetch.Response, error)
}

// HTTPRelay posts jobs as JSON to the ingestion endpoint, one request per job and no retries
type HTTPRelay struct {
	client   Doer
	endpoint string
	timeout  time.Duration
}

// New makes a relay for the endpoint
func New(client Doer, endpoint string, timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{client: client, endpoint: endpoint, timeout: timeout}
}

// Relay posts the job. The body is returned as text for any status.
// Non-2xx responses and transport failures return *RejectedError.
func (r *HTTPRelay) Relay(ctx context.Context, job domain.Job) (domain.RelayResult, error) {
	body, err := encode(job)
	if err != nil {
		return domain.RelayResult{}, &RejectedError{Link: job.Link, Err: fmt.Errorf("marshal job: %w", err)}
	}

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.client.Do(ctx, r.endpoint, fetch.Request{Method: http.MethodPost, Header: hdr, Body: body}, r.timeout)
	if err != nil {
		return domain.RelayResult{}, &RejectedError{Link: job.Link, Err: err}
	}

	res := domain.RelayResult{Accepted: resp.OK(), StatusCode: resp.StatusCode, Body: string(resp.Body)}
	if !res.Accepted {
		return res, &RejectedError{Link: job.Link, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}
	return res, nil
}

// encode marshals the job without html escaping, descriptions often carry & and <
func encode(job domain.Job) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(job); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DryRun logs jobs instead of posting them
type DryRun struct{}

// Relay logs the job and reports it as accepted
func (DryRun) Relay(_ context.Context, job domain.Job) (domain.RelayResult, error) {
	lgr.Printf("[INFO] dry run, job %q at %s from %s, company %q, location %q", job.Title, job.Link, job.Source, job.Company, job.Location)
	return domain.RelayResult{Accepted: true, StatusCode: http.StatusOK, Body: "dry run"}, nil
}
