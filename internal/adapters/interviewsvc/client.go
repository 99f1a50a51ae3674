// Package interviewsvc is the HTTP client of the remote Interview Service,
// the source of truth for attributes, interviews and bids.
//
// Every response is decoded into loosely typed wire structs, normalized,
// validated and only then converted to domain models. Failures are
// classified into the engine error kinds: 404 is NotFound, a message
// mentioning availability is AvailabilityNotConfigured, everything else is
// Remote.
package interviewsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Interview status query values.
const (
	QueryCurrent = "current"
	QueryHistory = "history"
)

// Client calls the Interview Service.
type Client struct {
	base     *url.URL
	token    string
	timeout  time.Duration
	http     *http.Client
	validate *validator.Validate
	logger   logger.Logger
	newKey   func() string
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	c := &Client{
		base:     u,
		timeout:  defaultTimeout,
		http:     &http.Client{},
		validate: validator.New(),
		logger:   logger.Nop(),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// VerifiedAttributes lists the freelancer's verified attributes.
func (c *Client) VerifiedAttributes(ctx context.Context, freelancerID string) ([]model.VerifiedAttribute, error) {
	const endpoint = "verified_attributes"
	var raw []wireAttribute
	p := "/freelancer/" + url.PathEscape(freelancerID) + "/verified-attributes"
	if err := c.do(ctx, endpoint, http.MethodGet, p, nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]model.VerifiedAttribute, 0, len(raw))
	for i := range raw {
		a, err := c.attribute(endpoint, &raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ApplyInterviewer submits an interviewer application for one attribute.
func (c *Client) ApplyInterviewer(ctx context.Context, freelancerID, attributeID string, charge float64) (model.VerifiedAttribute, error) {
	const endpoint = "apply_interviewer"
	body := map[string]any{"perInterviewCharge": charge}
	var raw wireAttribute
	p := "/freelancer/" + url.PathEscape(freelancerID) + "/attributes/" + url.PathEscape(attributeID) + "/apply-interviewer"
	if err := c.do(ctx, endpoint, http.MethodPost, p, nil, nil, body, &raw); err != nil {
		return model.VerifiedAttribute{}, err
	}
	return c.partialAttribute(endpoint, attributeID, &raw)
}

// SetInterviewerActive confirms the attribute's availability flag. Sending
// the target value keeps repeated calls idempotent.
func (c *Client) SetInterviewerActive(ctx context.Context, freelancerID, attributeID string, status model.ActiveStatus) (model.VerifiedAttribute, error) {
	const endpoint = "toggle_interviewer_active"
	body := map[string]any{"interviewerActiveStatus": status}
	var raw wireAttribute
	p := "/freelancer/" + url.PathEscape(freelancerID) + "/attributes/" + url.PathEscape(attributeID) + "/interviewer-active"
	if err := c.do(ctx, endpoint, http.MethodPut, p, nil, nil, body, &raw); err != nil {
		return model.VerifiedAttribute{}, err
	}
	return c.partialAttribute(endpoint, attributeID, &raw)
}

// BiddableInterviews lists interviews open for bidding by interviewerID.
func (c *Client) BiddableInterviews(ctx context.Context, interviewerID string, page, limit int) ([]model.Interview, error) {
	p := "/interviewer/" + url.PathEscape(interviewerID) + "/biddable-interviews"
	return c.interviews(ctx, "biddable_interviews", p, pageQuery(page, limit))
}

// BiddedInterviews lists interviews interviewerID has bid on, with bids.
func (c *Client) BiddedInterviews(ctx context.Context, interviewerID string, page, limit int) ([]model.Interview, error) {
	p := "/interviewer/" + url.PathEscape(interviewerID) + "/bidded-interviews"
	return c.interviews(ctx, "bidded_interviews", p, pageQuery(page, limit))
}

// PlaceBid submits bid on behalf of interviewerID. Each call carries a
// fresh Idempotency-Key.
func (c *Client) PlaceBid(ctx context.Context, interviewerID string, bid model.Bid) (model.Bid, error) {
	const endpoint = "place_bid"
	body := map[string]any{
		"interviewerId": interviewerID,
		"fee":           bid.Fee,
		"description":   bid.Description,
	}
	header := http.Header{}
	header.Set("Idempotency-Key", c.newKey())
	var raw wireBid
	p := "/interview/" + url.PathEscape(bid.InterviewID) + "/bids"
	if err := c.do(ctx, endpoint, http.MethodPost, p, nil, header, body, &raw); err != nil {
		return model.Bid{}, err
	}
	raw.normalize()
	if err := c.validate.Struct(&raw); err != nil {
		return model.Bid{}, c.invalid(endpoint, err)
	}
	out := raw.toModel()
	if out.InterviewID == "" {
		out.InterviewID = bid.InterviewID
	}
	if out.InterviewerID == "" {
		out.InterviewerID = interviewerID
	}
	if out.Fee == "" {
		out.Fee = bid.Fee
	}
	if out.Description == "" {
		out.Description = bid.Description
	}
	if out.Status == "" {
		out.Status = model.BidPending
	}
	return out, nil
}

// CurrentInterviews lists userID's current interviews in role.
func (c *Client) CurrentInterviews(ctx context.Context, role, userID string) ([]model.Interview, error) {
	grouped, err := c.byRole(ctx, "current_interviews", role, userID, QueryCurrent)
	if err != nil {
		return nil, err
	}
	var out []model.Interview
	for _, items := range grouped {
		out = append(out, items...)
	}
	return out, nil
}

// InterviewHistory returns userID's past interviews in role, keyed by
// category as the service groups them.
func (c *Client) InterviewHistory(ctx context.Context, role, userID string) (map[string][]model.Interview, error) {
	return c.byRole(ctx, "interview_history", role, userID, QueryHistory)
}

// SubmitFeedback records rating and feedback with the decided status.
func (c *Client) SubmitFeedback(ctx context.Context, interviewID string, rating int, feedback string, status model.InterviewStatus) (model.Interview, error) {
	const endpoint = "submit_feedback"
	body := map[string]any{
		"rating":          rating,
		"feedback":        feedback,
		"interviewStatus": status,
	}
	var raw wireInterview
	p := "/interview/" + url.PathEscape(interviewID) + "/feedback"
	if err := c.do(ctx, endpoint, http.MethodPut, p, nil, nil, body, &raw); err != nil {
		return model.Interview{}, err
	}
	if raw.ID == "" && raw.MongoID == "" {
		raw.ID = interviewID
	}
	return c.interview(endpoint, &raw)
}

func (c *Client) byRole(ctx context.Context, endpoint, role, userID, status string) (map[string][]model.Interview, error) {
	var data json.RawMessage
	p := "/interview/" + url.PathEscape(role) + "/" + url.PathEscape(userID)
	q := url.Values{"interviewStatus": {status}}
	if err := c.do(ctx, endpoint, http.MethodGet, p, q, nil, nil, &data); err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	grouped := map[string][]wireInterview{}
	switch {
	case len(data) == 0 || string(data) == "null":
	case data[0] == '[':
		var list []wireInterview
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, c.invalid(endpoint, err)
		}
		grouped[""] = list
	default:
		if err := json.Unmarshal(data, &grouped); err != nil {
			return nil, c.invalid(endpoint, err)
		}
	}
	out := make(map[string][]model.Interview, len(grouped))
	for key, items := range grouped {
		list := make([]model.Interview, 0, len(items))
		for i := range items {
			it, err := c.interview(endpoint, &items[i])
			if err != nil {
				return nil, err
			}
			list = append(list, it)
		}
		out[key] = list
	}
	return out, nil
}

func (c *Client) interviews(ctx context.Context, endpoint, p string, q url.Values) ([]model.Interview, error) {
	var raw []wireInterview
	if err := c.do(ctx, endpoint, http.MethodGet, p, q, nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]model.Interview, 0, len(raw))
	for i := range raw {
		it, err := c.interview(endpoint, &raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (c *Client) attribute(endpoint string, w *wireAttribute) (model.VerifiedAttribute, error) {
	w.normalize()
	if err := c.validate.Struct(w); err != nil {
		return model.VerifiedAttribute{}, c.invalid(endpoint, err)
	}
	if err := w.check(); err != nil {
		return model.VerifiedAttribute{}, c.invalid(endpoint, err)
	}
	return w.toModel(), nil
}

// partialAttribute accepts the acknowledgement shapes of the attribute
// mutations: a full attribute, or only the changed fields. Fields the
// service left out stay empty for the caller to resolve.
func (c *Client) partialAttribute(endpoint, attributeID string, w *wireAttribute) (model.VerifiedAttribute, error) {
	if w.ID != "" || w.MongoID != "" {
		return c.attribute(endpoint, w)
	}
	w.normalize()
	if err := c.validate.StructExcept(w, "Name"); err != nil {
		return model.VerifiedAttribute{}, c.invalid(endpoint, err)
	}
	return model.VerifiedAttribute{
		ID:                      attributeID,
		InterviewerStatus:       model.InterviewerStatus(w.InterviewerStatus),
		PerInterviewCharge:      w.PerInterviewCharge,
		InterviewerActiveStatus: model.ActiveStatus(w.InterviewerActiveStatus),
	}, nil
}

func (c *Client) interview(endpoint string, w *wireInterview) (model.Interview, error) {
	w.normalize()
	if err := c.validate.Struct(w); err != nil {
		return model.Interview{}, c.invalid(endpoint, err)
	}
	if err := w.check(); err != nil {
		return model.Interview{}, c.invalid(endpoint, err)
	}
	return w.toModel(), nil
}

func (c *Client) invalid(endpoint string, err error) error {
	metrics.RecordRemoteError(endpoint, "invalid_response")
	return errs.Wrap("interviewsvc."+endpoint, errs.ErrRemote, "unexpected response from interview service", err)
}

// do performs one call and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, endpoint, method, p string, q url.Values, header http.Header, body, out any) (err error) {
	op := "interviewsvc." + endpoint
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = errs.Label(err)
			metrics.RecordRemoteError(endpoint, outcome)
		}
		metrics.RecordRemoteCall(endpoint, outcome, float64(time.Since(start).Milliseconds()))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base.JoinPath(p)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, mErr := json.Marshal(body)
		if mErr != nil {
			return errs.Wrap(op, errs.ErrRemote, "encode request", mErr)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return errs.Wrap(op, errs.ErrRemote, "build request", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "interview service unreachable", logger.String("endpoint", endpoint), logger.Error(err))
		return errs.Wrap(op, errs.ErrRemote, "interview service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errs.Wrap(op, errs.ErrRemote, "read response", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if uErr := json.Unmarshal(raw, &env); uErr != nil && resp.StatusCode < http.StatusBadRequest {
			return errs.Wrap(op, errs.ErrRemote, "unexpected response from interview service", uErr)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(op, resp.StatusCode, env.Message)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errs.Wrap(op, errs.ErrRemote, "unexpected response from interview service", err)
	}
	return nil
}

// classify maps a failed response onto an error kind. Only client errors
// can mean missing availability.
func classify(op string, status int, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := fmt.Errorf("status %d", status)
	switch {
	case status == http.StatusNotFound:
		return errs.Wrap(op, errs.ErrNotFound, msg, cause)
	case status < http.StatusInternalServerError && strings.Contains(strings.ToLower(msg), "availability"):
		return errs.Wrap(op, errs.ErrAvailabilityNotConfigured, msg, cause)
	default:
		return errs.Wrap(op, errs.ErrRemote, msg, cause)
	}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
