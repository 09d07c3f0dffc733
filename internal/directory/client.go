package directory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// Client is an HTTP implementation of the Directory interface.
type Client struct {
	http *resty.Client
}

var _ Directory = (*Client)(nil)

// NewClient creates a directory client for the given base URL. The API key
// may be empty for unauthenticated local directories.
func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{http: c}
}

// get performs a GET and decodes the response into out, translating 404s
// into NotFoundError and everything else non-2xx into TransportError.
func (c *Client) get(ctx context.Context, path string, out any, kind, id string, query map[string]string) error {
	req := c.http.R().SetContext(ctx).SetResult(out)
	if query != nil {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return apperr.Transport("directory GET "+path, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return apperr.NotFound(kind, id)
	}
	if resp.IsError() {
		return apperr.Transport("directory GET "+path, fmt.Errorf("status %d", resp.StatusCode()))
	}
	return nil
}

// GetJob returns the job snapshot for id.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.get(ctx, "/jobs/"+id, &job, "job", id, nil); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetCandidate returns the candidate snapshot for id.
func (c *Client) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var cand models.Candidate
	if err := c.get(ctx, "/candidates/"+id, &cand, "candidate", id, nil); err != nil {
		return nil, err
	}
	return &cand, nil
}

// ListApplicants returns every candidate who applied to the given job.
func (c *Client) ListApplicants(ctx context.Context, jobID string) ([]models.Candidate, error) {
	var out []models.Candidate
	if err := c.get(ctx, "/jobs/"+jobID+"/applicants", &out, "job", jobID, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCandidates returns the full candidate roster.
func (c *Client) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	var out []models.Candidate
	if err := c.get(ctx, "/candidates", &out, "candidates", "", nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecruiters returns the recruiters associated with the given job.
func (c *Client) ListRecruiters(ctx context.Context, jobID string) ([]models.Recruiter, error) {
	var out []models.Recruiter
	if err := c.get(ctx, "/jobs/"+jobID+"/recruiters", &out, "job", jobID, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDomains returns the top level of the domain/talent-pool/skill
// hierarchy.
func (c *Client) ListDomains(ctx context.Context) ([]models.Domain, error) {
	var out []models.Domain
	if err := c.get(ctx, "/hierarchy/domains", &out, "domains", "", nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTalentPools returns the talent pools belonging to a domain.
func (c *Client) ListTalentPools(ctx context.Context, domainID string) ([]models.TalentPool, error) {
	var out []models.TalentPool
	if err := c.get(ctx, "/hierarchy/domains/"+domainID+"/talent-pools", &out, "domain", domainID, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSkills returns the skills of the given talent pools.
func (c *Client) ListSkills(ctx context.Context, talentPoolIDs []string) ([]models.Skill, error) {
	var out []models.Skill
	query := map[string]string{"talent_pools": strings.Join(talentPoolIDs, ",")}
	if err := c.get(ctx, "/hierarchy/skills", &out, "skills", "", query); err != nil {
		return nil, err
	}
	return out, nil
}
