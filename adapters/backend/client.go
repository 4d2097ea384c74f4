package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/config"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// Client talks to the marketplace backend: upload-slot issuance, the
// profile-completion commit and the profile re-fetch.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

var _ service.MarketplaceAPI = (*Client)(nil)

func NewClient(cfg config.Config, log logger.Logger) (*Client, error) {
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base_url is not configured")
	}
	return &Client{
		baseURL:    cfg.Backend.BaseURL,
		apiKey:     cfg.Backend.APIKey,
		httpClient: &http.Client{Timeout: cfg.Backend.Timeout},
		log:        log,
	}, nil
}

// Each purpose has its own slot endpoint; the request/response shape is the
// same for both.
var slotPaths = map[onboarding.Purpose]string{
	onboarding.PurposeProfile: "/v1/uploads/profile-photo",
	onboarding.PurposeIDCard:  "/v1/uploads/id-card",
}

type slotRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type slotResponse struct {
	FileKey   string `json:"fileKey"`
	FileURL   string `json:"fileUrl"`
	PublicURL string `json:"publicUrl"`
}

func (c *Client) RequestUploadSlot(ctx context.Context, purpose onboarding.Purpose, fileName, contentType string) (service.UploadSlot, error) {
	path, ok := slotPaths[purpose]
	if !ok {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: fmt.Errorf("unknown upload purpose %q", purpose)}
	}

	body, err := json.Marshal(slotRequest{Filename: fileName, ContentType: contentType})
	if err != nil {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Status: resp.StatusCode}
	}

	var slot slotResponse
	if err := json.NewDecoder(resp.Body).Decode(&slot); err != nil {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: err}
	}
	if slot.FileURL == "" {
		return service.UploadSlot{}, &onboarding.SlotError{Purpose: purpose, Cause: fmt.Errorf("slot response missing fileUrl")}
	}

	return service.UploadSlot{
		FileKey:   slot.FileKey,
		FileURL:   slot.FileURL,
		PublicURL: slot.PublicURL,
	}, nil
}

// CompleteProfile commits the aggregated payload as a multipart PUT. Media
// fields are only written when the corresponding upload happened.
func (c *Client) CompleteProfile(ctx context.Context, workerID uuid.UUID, in service.CompleteProfileInput) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	locationJSON, err := json.Marshal(in.Location)
	if err != nil {
		return &onboarding.SubmissionError{Cause: err}
	}
	skillsJSON, err := json.Marshal(in.Skills)
	if err != nil {
		return &onboarding.SubmissionError{Cause: err}
	}

	fields := map[string]string{
		"bio":      in.Bio,
		"phone":    in.Phone,
		"location": string(locationJSON),
		"skills":   string(skillsJSON),
	}
	if in.ProfileImageURL != "" {
		fields["profileImage"] = in.ProfileImageURL
	}
	if in.IDCardURL != "" {
		fields["idCard"] = in.IDCardURL
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return &onboarding.SubmissionError{Cause: err}
		}
	}
	if err := w.Close(); err != nil {
		return &onboarding.SubmissionError{Cause: err}
	}

	url := fmt.Sprintf("%s/v1/taskers/%s/profile", c.baseURL, workerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, &buf)
	if err != nil {
		return &onboarding.SubmissionError{Cause: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &onboarding.SubmissionError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &onboarding.SubmissionError{
			Message: readBackendMessage(resp.Body),
			Cause:   fmt.Errorf("profile completion returned status %d", resp.StatusCode),
		}
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context, workerID uuid.UUID) (*profile.TaskerProfile, error) {
	url := fmt.Sprintf("%s/v1/taskers/%s/profile", c.baseURL, workerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tasker profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tasker profile: status %d", resp.StatusCode)
	}

	var p profile.TaskerProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode tasker profile: %w", err)
	}
	return &p, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// readBackendMessage pulls the backend's own error message out of a rejection
// body when it sent one.
func readBackendMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Message
}
